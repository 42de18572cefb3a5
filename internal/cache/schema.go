package cache

import "fmt"

// Cache table names. Every table uses "cache_key" as its primary key.
const (
	NDLTable         = "ndl_cache"
	GoogleBooksTable = "googlebooks_cache"
	GSITable         = "gsi_cache"
)

// tableSchema renders the schema shared by all lookup cache tables.
func tableSchema(table string) string {
	return fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %[1]s (
	cache_key TEXT PRIMARY KEY NOT NULL,
	data TEXT NOT NULL,
	cached_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	expires_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_%[1]s_expires_at ON %[1]s(expires_at);
`, table)
}

// Sources maps the user-facing source name to its cache table.
var Sources = map[string]string{
	"ndl":         NDLTable,
	"googlebooks": GoogleBooksTable,
	"gsi":         GSITable,
}

// ValidCacheTableNames is the whitelist of table names that may be
// interpolated into SQL.
var ValidCacheTableNames = map[string]bool{
	NDLTable:         true,
	GoogleBooksTable: true,
	GSITable:         true,
}
