// Package db provides the embedded database schema and bootstrap seed files.
package db

import "embed"

// Schema contains the DDL statements for all application tables.
//
//go:embed migrations/001_schema.sql
var Schema string

// Seed holds the bootstrap seed records (users.json, products.json) that are
// loaded into an empty database at startup.
//
//go:embed seed/users.json seed/products.json
var Seed embed.FS
