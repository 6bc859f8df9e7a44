// Package migrations holds the Postgres schema applied at order-service startup.
package migrations

import "embed"

//go:embed *.up.sql
var FS embed.FS
