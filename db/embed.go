// Package db embeds the schema applied at startup.
package db

import _ "embed"

// Schema holds the DDL for every storefront table.
//
//go:embed migrations/001_schema.sql
var Schema string
