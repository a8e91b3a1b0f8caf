// Package models contains GORM-specific persistence models that map to database tables.
// These models are separate from domain entities to keep the domain layer pure and free
// from ORM concerns.
//
// Structure:
// - base.go: BaseModel and AggregateModel
// - catalog.go: categories, teams, products, jersey customizations
// - identity.go: storefront users
// - cart.go: carts, cart items and their customizations
// - order.go: orders, order items and their customizations
// - payment.go: payments and payment logs
// - notification.go: email templates and email logs
package models
