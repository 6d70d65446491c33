// Package models contains GORM-specific persistence models that map to database tables.
// These models are separate from domain entities to keep the domain layer pure and free
// from ORM concerns.
//
// Structure:
//   - base.go: BaseModel shared by every table
//   - catalog.go: categories, products, services
//   - sales.go: sell histories and bulk transactions
//   - finance.go: debits, debit items, expenses
package models
