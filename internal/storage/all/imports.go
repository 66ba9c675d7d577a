// Package all wires every built-in storage backend into the storage factory.
// Importing it for side effects makes the "postgres", "sqlite" and "mssql"
// kinds available to storage.New and storage.Connect.
package all

import (
	_ "newsingest/internal/storage/mssql"
	_ "newsingest/internal/storage/postgres"
	_ "newsingest/internal/storage/sqlite"
)
