// Package cache persists per-province daily result bundles. Entries are
// keyed by province and calendar date, so yesterday's entry simply stops
// matching; nothing is evicted.
package cache

import (
	"context"
	"strings"
	"time"
	"unicode"

	"github.com/rotisserie/eris"

	"github.com/siamtrail/airtrip-cli/internal/model"
)

// Store is the daily cache. Load returns (nil, nil) on a miss, including
// when the stored entry is unreadable; corrupt entries are dropped so the
// next save can replace them.
type Store interface {
	Load(ctx context.Context, province string, day time.Time) (*model.Bundle, error)
	Save(ctx context.Context, province string, day time.Time, bundle *model.Bundle) error
	Close() error
}

// Key derives the cache key for a province and date. The province part keeps
// only letters, digits, spaces and underscores in any script, then folds
// spaces to underscores, so keys stay safe as file names and DB keys.
func Key(province string, day time.Time) string {
	var b strings.Builder
	for _, r := range province {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' ' || r == '_' {
			b.WriteRune(r)
		}
	}
	sanitized := strings.ReplaceAll(b.String(), " ", "_")
	return sanitized + "_" + day.Format("2006-01-02")
}

// Options selects and configures a cache backend.
type Options struct {
	// Driver is one of "file", "sqlite", "postgres", "redis".
	Driver string
	// Dir is the cache directory for the file driver.
	Dir string
	// DSN is the database path (sqlite), connection string (postgres) or
	// address (redis) for the other drivers.
	DSN string
}

// New opens the configured cache backend.
func New(ctx context.Context, opts Options) (Store, error) {
	switch opts.Driver {
	case "", "file":
		return NewFile(opts.Dir)
	case "sqlite":
		return NewSQLite(ctx, opts.DSN)
	case "postgres":
		return NewPostgres(ctx, opts.DSN)
	case "redis":
		return NewRedis(ctx, opts.DSN)
	default:
		return nil, eris.Errorf("cache: unknown driver %q", opts.Driver)
	}
}
