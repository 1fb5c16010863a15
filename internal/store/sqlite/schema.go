package sqlite

import "github.com/Kzeezee/Pomodoko/internal/store"

// migrationTableSchema tracks applied migration versions. It is owned by
// the migrator and created outside the migration table itself.
const migrationTableSchema = `
CREATE TABLE IF NOT EXISTS schema_migrations (
    version INTEGER PRIMARY KEY,
    description TEXT NOT NULL DEFAULT '',
    applied_at INTEGER NOT NULL
);
`

// migrations is the application's migration table. Append only.
var migrations = store.Migrations{
	{
		Version:     1,
		Description: "create_initial_tables",
		Kind:        store.KindUp,
		SQL:         `CREATE TABLE tasks (id INTEGER PRIMARY KEY, name TEXT, completed BOOLEAN);`,
	},
	{
		Version:     1,
		Description: "create_initial_tables",
		Kind:        store.KindDown,
		SQL:         `DROP TABLE tasks;`,
	},
}

// Migrations returns a copy of the application's migration table.
func Migrations() store.Migrations {
	return append(store.Migrations(nil), migrations...)
}
