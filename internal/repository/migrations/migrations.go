// Package migrations embeds the goose schema migrations for the vault database.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
