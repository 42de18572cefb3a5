package cache

import (
	"fmt"
	"log/slog"
	"strings"
)

// InvalidateCacheCmd represents the cache invalidate subcommand
type InvalidateCacheCmd struct {
	Source      string `arg:"" help:"Cache source to invalidate: ndl, googlebooks, gsi" required:""`
	ExpiredOnly bool   `help:"Only remove entries whose TTL has passed" name:"expired-only"`
}

func (i *InvalidateCacheCmd) Run() error {
	tableName, ok := Sources[i.Source]
	if !ok {
		return fmt.Errorf("invalid cache source '%s'; valid sources are: %s", i.Source, strings.Join(SourceNames(), ", "))
	}

	cacheInstance, err := GetGlobalCache()
	if err != nil {
		return fmt.Errorf("failed to open cache database: %w", err)
	}

	slog.Info("Invalidating cache", "source", i.Source, "database", cacheInstance.Path(), "expired_only", i.ExpiredOnly)

	purge := cacheInstance.InvalidateSource
	if i.ExpiredOnly {
		purge = cacheInstance.ClearExpired
	}
	rowsDeleted, err := purge(tableName)
	if err != nil {
		return fmt.Errorf("failed to invalidate cache: %w", err)
	}

	slog.Info("Cache invalidated", "source", i.Source, "rows_deleted", rowsDeleted)
	return nil
}
