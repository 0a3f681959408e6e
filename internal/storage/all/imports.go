// Package all wires all built-in storage backends into the storage factory.
//
// Importing it (as a blank import) registers:
//
//   - "postgres" (csvextract/internal/storage/postgres)
//   - "sqlite"   (csvextract/internal/storage/sqlite)
package all

import (
	_ "csvextract/internal/storage/postgres"
	_ "csvextract/internal/storage/sqlite"
)
