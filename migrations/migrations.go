// Package migrations embeds the SQL schema for the local cache and the
// remote profile store.
package migrations

import "embed"

//go:embed sqlite/*.sql postgres/*.sql
var FS embed.FS
