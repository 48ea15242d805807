// Package migrations embeds goose SQL migrations of the run-history store.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
