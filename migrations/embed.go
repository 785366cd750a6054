// Package migrations embeds the versioned SQL schema so binaries can migrate
// without shipping the directory alongside them.
package migrations

import "embed"

//go:embed *.sql
var Files embed.FS
