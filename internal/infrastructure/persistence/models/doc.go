// Package models contains GORM-specific persistence models that map to database tables.
// These models are separate from domain entities to keep the domain layer free from
// ORM concerns.
//
// Each model embeds TenantAggregateModel and converts with ToDomain / FromDomain.
// Quantities and money are decimal(18,4) columns; calendar days are stored as
// timestamps at UTC midnight.
package models
