package shop

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func price(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func seedCategories() []Category {
	return []Category{
		{ID: "new-arrivals", Name: "New Arrivals", Position: 0},
		{ID: "outerwear", Name: "Outerwear", Position: 1},
		{ID: "tops", Name: "Tops", Position: 2},
		{ID: "bottoms", Name: "Bottoms", Position: 3},
		{ID: "accessories", Name: "Accessories", Position: 4},
	}
}

func seedProducts() []Product {
	return []Product{
		{ID: "p-down-jacket", Name: "Oversized Down Jacket", Price: price("1200"), Image: "products/down-jacket.jpg", CategoryID: "outerwear", Position: 0},
		{ID: "p-cargo-pants", Name: "Technical Cargo Pants", Price: price("450"), Image: "products/cargo-pants.jpg", CategoryID: "bottoms", Position: 1},
		{ID: "p-structured-tshirt", Name: "Structured T-Shirt", Price: price("180"), Image: "products/structured-tshirt.jpg", CategoryID: "tops", Position: 2},
		{ID: "p-utility-vest", Name: "Utility Vest", Price: price("380"), Image: "products/utility-vest.jpg", CategoryID: "outerwear", Position: 3},
	}
}

// Seed upserts the demo catalog. It is idempotent, so the API can run it on
// every boot.
func Seed(ctx context.Context, conn *gorm.DB) error {
	categories := seedCategories()
	if err := conn.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(&categories).Error; err != nil {
		return err
	}

	products := seedProducts()
	return conn.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(&products).Error
}
