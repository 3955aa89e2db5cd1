// Package migrations embeds the goose SQL migrations for plan requests,
// itineraries, days and activities. The migrate command and the repository
// integration tests both apply them through this FS.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
