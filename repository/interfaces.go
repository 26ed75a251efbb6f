package repository

import (
	"context"

	"grocerify/models"
)

// AccountStore defines operations on user accounts.
type AccountStore interface {
	EnsureDefaultAdmin(ctx context.Context) error
	Register(ctx context.Context, in RegisterInput) (*models.User, error)
	VerifyCredentials(ctx context.Context, username, password string) (*models.User, error)
	RecordLogin(ctx context.Context, username string) error
	GetByUsername(ctx context.Context, username string) (*models.User, error)
}

// InventoryStore defines operations on inventory items.
type InventoryStore interface {
	Create(ctx context.Context, in ItemInput) (*models.Item, error)
	Update(ctx context.Context, lookupID string, in ItemInput) (*models.Item, error)
	Delete(ctx context.Context, itemID string) error
	GetByID(ctx context.Context, itemID string) (*models.Item, error)
	List(ctx context.Context, p ListItemsParams) ([]models.Item, error)
}

var (
	_ AccountStore   = (*UserRepository)(nil)
	_ InventoryStore = (*ItemRepository)(nil)
)
