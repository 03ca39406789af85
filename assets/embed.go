// Package assets embeds the static puzzle catalog and SQL migrations.
package assets

import (
	"embed"
	"io/fs"
)

//go:embed game.json sql/*.sql
var FS embed.FS

// Catalog returns the raw embedded day/level catalog.
func Catalog() ([]byte, error) {
	return FS.ReadFile("game.json")
}

// Migrations returns the embedded migration files rooted at sql/.
func Migrations() (fs.FS, error) {
	return fs.Sub(FS, "sql")
}
