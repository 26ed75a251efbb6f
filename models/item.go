package models

import "time"

// Category is the fixed set of product groups an item can belong to.
type Category string

const (
	CategoryMeat       Category = "Meat"
	CategoryVegetables Category = "Vegetables"
	CategoryFruits     Category = "Fruits"
	CategoryDairy      Category = "Dairy Products"
	CategoryBeverages  Category = "Beverages"
)

// Categories lists every known category in display order.
var Categories = []Category{
	CategoryMeat,
	CategoryVegetables,
	CategoryFruits,
	CategoryDairy,
	CategoryBeverages,
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	for _, k := range Categories {
		if c == k {
			return true
		}
	}
	return false
}

// Item is a single inventory record. It maps to the `inventory` table.
// ItemID and DateAdded never change after creation.
type Item struct {
	ItemID    string    `db:"item_id" json:"item_id"`
	Name      string    `db:"name" json:"name"`
	Price     float64   `db:"price" json:"price"`
	Quantity  int64     `db:"quantity" json:"quantity"`
	Category  Category  `db:"category" json:"category"`
	DateAdded time.Time `db:"date_added" json:"date_added"`
}
