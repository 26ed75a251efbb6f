package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"grocerify/internal/db"
	"grocerify/models"
)

// ItemInput carries the raw form values for an item. Price and Quantity are
// parsed by the store at write time.
type ItemInput struct {
	ItemID   string
	Name     string
	Price    string
	Quantity string
	Category string
}

type parsedItem struct {
	name     string
	price    float64
	quantity int64
	category models.Category
}

func (in ItemInput) parse() (parsedItem, error) {
	for _, f := range []struct{ name, val string }{
		{"item_id", in.ItemID},
		{"name", in.Name},
		{"price", in.Price},
		{"quantity", in.Quantity},
		{"category", in.Category},
	} {
		if err := required(f.name, f.val); err != nil {
			return parsedItem{}, err
		}
	}
	cat := models.Category(strings.TrimSpace(in.Category))
	if !cat.Valid() {
		return parsedItem{}, &ValidationError{Field: "category", Reason: fmt.Sprintf("unknown category %q", in.Category)}
	}
	price, err := ParsePrice(in.Price)
	if err != nil {
		return parsedItem{}, err
	}
	qty, err := ParseQuantity(in.Quantity)
	if err != nil {
		return parsedItem{}, err
	}
	return parsedItem{name: strings.TrimSpace(in.Name), price: price, quantity: qty, category: cat}, nil
}

// ParsePrice parses a non-negative finite decimal.
func ParsePrice(s string) (float64, error) {
	s = strings.TrimSpace(s)
	// ParseFloat also takes hex floats such as 0x1p4; a price is decimal only.
	if digits := strings.TrimLeft(s, "+-"); len(digits) > 1 && digits[0] == '0' && (digits[1] == 'x' || digits[1] == 'X') {
		return 0, &InvalidFormatError{Field: "price", Value: s, Err: errors.New("not a decimal number")}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, &InvalidFormatError{Field: "price", Value: s, Err: err}
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, &InvalidFormatError{Field: "price", Value: s, Err: errors.New("not a finite number")}
	}
	if v < 0 {
		return 0, &InvalidFormatError{Field: "price", Value: s, Err: errors.New("must be >= 0")}
	}
	return v, nil
}

// ParseQuantity parses a non-negative base-10 integer.
func ParseQuantity(s string) (int64, error) {
	s = strings.TrimSpace(s)
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, &InvalidFormatError{Field: "quantity", Value: s, Err: err}
	}
	if v < 0 {
		return 0, &InvalidFormatError{Field: "quantity", Value: s, Err: errors.New("must be >= 0")}
	}
	return v, nil
}

// ItemOrder selects the row order of List.
type ItemOrder int

const (
	// OrderInserted is the table view order: oldest insert first.
	OrderInserted ItemOrder = iota
	// OrderNewestFirst sorts by date_added descending, as the export does.
	OrderNewestFirst
)

// ListItemsParams contains optional filters for List. The zero value lists
// the whole table in insertion order.
type ListItemsParams struct {
	Category     *models.Category
	NameContains string
	OrderBy      ItemOrder
}

// likeEscaper makes LIKE wildcards in user input match literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// ItemRepository is the inventory store backed by the inventory table.
type ItemRepository struct {
	db  *sql.DB
	now func() time.Time
}

func NewItemRepository(db *sql.DB) *ItemRepository {
	return &ItemRepository{db: db, now: time.Now}
}

const itemColumns = `item_id, name, price, quantity, category, date_added`

// Create validates and inserts a new item, stamping date_added with the
// current time.
func (r *ItemRepository) Create(ctx context.Context, in ItemInput) (*models.Item, error) {
	p, err := in.parse()
	if err != nil {
		return nil, err
	}
	// Stored at second precision; truncate so the returned record matches a re-read.
	added := r.now().Truncate(time.Second)
	id := strings.TrimSpace(in.ItemID)

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	_, err = r.db.ExecContext(ctx, `INSERT INTO inventory (`+itemColumns+`) VALUES (?,?,?,?,?,?)`,
		id, p.name, p.price, p.quantity, string(p.category), added.Format(db.TimeLayout))
	if err != nil {
		if constraintColumn(err) == "inventory.item_id" {
			return nil, ErrDuplicateItem
		}
		return nil, fmt.Errorf("insert item: %w", err)
	}
	return &models.Item{
		ItemID:    id,
		Name:      p.name,
		Price:     p.price,
		Quantity:  p.quantity,
		Category:  p.category,
		DateAdded: added,
	}, nil
}

// Update replaces name, price, quantity and category of the item found by
// lookupID. in.ItemID must equal lookupID; date_added is never touched.
func (r *ItemRepository) Update(ctx context.Context, lookupID string, in ItemInput) (*models.Item, error) {
	lookupID = strings.TrimSpace(lookupID)
	if strings.TrimSpace(in.ItemID) != lookupID {
		return nil, ErrImmutableKey
	}
	p, err := in.parse()
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `UPDATE inventory SET name = ?, price = ?, quantity = ?, category = ? WHERE item_id = ?`,
		p.name, p.price, p.quantity, string(p.category), lookupID)
	if err != nil {
		return nil, fmt.Errorf("update item: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, ErrNotFound
	}
	it, err := r.GetByID(ctx, lookupID)
	if err != nil {
		return nil, err
	}
	if it == nil {
		return nil, ErrNotFound
	}
	return it, nil
}

// Delete removes the item unconditionally.
func (r *ItemRepository) Delete(ctx context.Context, itemID string) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `DELETE FROM inventory WHERE item_id = ?`, strings.TrimSpace(itemID))
	if err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// GetByID returns the item or nil when absent.
func (r *ItemRepository) GetByID(ctx context.Context, itemID string) (*models.Item, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	row := r.db.QueryRowContext(ctx, `SELECT `+itemColumns+` FROM inventory WHERE item_id = ?`, strings.TrimSpace(itemID))
	it, err := scanItem(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &it, nil
}

// List returns every item matching p. There is no pagination.
func (r *ItemRepository) List(ctx context.Context, p ListItemsParams) ([]models.Item, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	where := make([]string, 0, 2)
	args := make([]any, 0, 2)
	if p.Category != nil {
		where = append(where, "category = ?")
		args = append(args, string(*p.Category))
	}
	if s := strings.TrimSpace(p.NameContains); s != "" {
		where = append(where, `name LIKE ? ESCAPE '\'`)
		args = append(args, "%"+likeEscaper.Replace(s)+"%")
	}

	query := `SELECT ` + itemColumns + ` FROM inventory`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	switch p.OrderBy {
	case OrderNewestFirst:
		query += " ORDER BY date_added DESC, rowid DESC"
	default:
		query += " ORDER BY rowid ASC"
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(s rowScanner) (models.Item, error) {
	var it models.Item
	var category, added string
	if err := s.Scan(&it.ItemID, &it.Name, &it.Price, &it.Quantity, &category, &added); err != nil {
		return models.Item{}, err
	}
	it.Category = models.Category(category)
	t, err := time.ParseInLocation(db.TimeLayout, added, time.Local)
	if err != nil {
		return models.Item{}, fmt.Errorf("item %s: bad date_added %q: %w", it.ItemID, added, err)
	}
	it.DateAdded = t
	return it, nil
}
