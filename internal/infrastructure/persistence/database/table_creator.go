// Package database provides schema bootstrap for the local authority mode
package database

import (
	"database/sql"
	"fmt"
)

// TableCreator handles the creation of the catalog schema backing the local
// pricing, coupon and stock authorities.
type TableCreator struct{}

// NewTableCreator creates a new TableCreator.
func NewTableCreator() *TableCreator {
	return &TableCreator{}
}

var tables = []string{
	`CREATE TABLE IF NOT EXISTS products (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		price REAL NOT NULL,
		original_price REAL NOT NULL DEFAULT 0,
		image TEXT NOT NULL DEFAULT '',
		category TEXT NOT NULL DEFAULT '',
		category_id TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT '',
		stock_quantity INTEGER NOT NULL DEFAULT 0,
		is_featured INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS coupons (
		code TEXT PRIMARY KEY,
		discount_type TEXT NOT NULL CHECK (discount_type IN ('flat', 'percent')),
		discount_value REAL NOT NULL,
		min_order_amount REAL NOT NULL DEFAULT 0,
		max_uses INTEGER NOT NULL DEFAULT 0,
		used_count INTEGER NOT NULL DEFAULT 0,
		active INTEGER NOT NULL DEFAULT 1,
		message TEXT NOT NULL DEFAULT ''
	)`,
}

var indexes = []string{
	`CREATE INDEX IF NOT EXISTS idx_products_category_id ON products(category_id)`,
	`CREATE INDEX IF NOT EXISTS idx_coupons_active ON coupons(active)`,
}

// CreateSchema executes all necessary queries to build the catalog tables and indexes.
func (tc *TableCreator) CreateSchema(db *sql.DB) error {
	for _, tableSQL := range tables {
		if _, err := db.Exec(tableSQL); err != nil {
			return fmt.Errorf("failed to create table for query [%s]: %w", tableSQL, err)
		}
	}

	for _, indexSQL := range indexes {
		if _, err := db.Exec(indexSQL); err != nil {
			return fmt.Errorf("failed to create index for query [%s]: %w", indexSQL, err)
		}
	}
	return nil
}

// starterProduct describes one row of the seed catalog.
type starterProduct struct {
	ID            string
	Name          string
	Price         float64
	OriginalPrice float64
	Category      string
	CategoryID    string
	Description   string
	Stock         int
	Featured      bool
}

// starterProducts is the seed catalog for a fresh self-hosted install. The
// stock gate reads these rows, so without them nothing could ever be added to
// a cart in local mode.
var starterProducts = []starterProduct{
	{ID: "crisps-sea-salt", Name: "Sea Salt Crisps", Price: 18, OriginalPrice: 18, Category: "Snacks", CategoryID: "snacks", Description: "Big sharing bag", Stock: 40},
	{ID: "nachos-cheese", Name: "Cheese Nachos Kit", Price: 32, OriginalPrice: 39, Category: "Snacks", CategoryID: "snacks", Description: "Chips, dip and jalapenos", Stock: 25, Featured: true},
	{ID: "cola-6pack", Name: "Cola 6-Pack", Price: 28, OriginalPrice: 28, Category: "Drinks", CategoryID: "drinks", Description: "Chilled cans", Stock: 60},
	{ID: "sparkling-water", Name: "Sparkling Water 1L", Price: 12, OriginalPrice: 12, Category: "Drinks", CategoryID: "drinks", Description: "", Stock: 80},
	{ID: "ice-bag-2kg", Name: "Ice Cubes 2kg", Price: 15, OriginalPrice: 15, Category: "Ice", CategoryID: "ice", Description: "Crushed party ice", Stock: 50},
	{ID: "brownie-box", Name: "Brownie Box", Price: 45, OriginalPrice: 52, Category: "Sweets", CategoryID: "sweets", Description: "Six fudge brownies", Stock: 15},
	{ID: "party-box-classic", Name: "Classic Party Box", Price: 159, OriginalPrice: 179, Category: "Party Boxes", CategoryID: "party-boxes", Description: "Snacks, drinks and ice for four", Stock: 10, Featured: true},
	{ID: "party-box-deluxe", Name: "Deluxe Party Box", Price: 249, OriginalPrice: 249, Category: "Party Boxes", CategoryID: "party-boxes", Description: "The full late-night spread", Stock: 6},
}

// SeedInitialContent adds the starter catalog and a welcome coupon so a fresh
// self-hosted install is usable out of the box. Idempotent: existing rows are
// left untouched.
func (tc *TableCreator) SeedInitialContent(db *sql.DB) error {
	for _, p := range starterProducts {
		_, err := db.Exec(
			`INSERT OR IGNORE INTO products (id, name, price, original_price, image, category, category_id, description, stock_quantity, is_featured)
			 VALUES (?, ?, ?, ?, '', ?, ?, ?, ?, ?)`,
			p.ID, p.Name, p.Price, p.OriginalPrice, p.Category, p.CategoryID, p.Description, p.Stock, p.Featured,
		)
		if err != nil {
			return fmt.Errorf("failed to seed product %s: %w", p.ID, err)
		}
	}

	_, err := db.Exec(
		`INSERT OR IGNORE INTO coupons (code, discount_type, discount_value, min_order_amount, max_uses, active, message)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		"WELCOME10", "percent", 10, 50, 0, 1, "Welcome! 10% off orders over 50.",
	)
	if err != nil {
		return fmt.Errorf("failed to insert default coupon: %w", err)
	}
	return nil
}
