package shift

import (
	"context"
	"time"
)

type ConfigRepository interface {
	// ActiveConfig returns the config with the greatest valid_from not
	// exceeding date, honoring valid_to when set. pgx.ErrNoRows when none.
	ActiveConfig(ctx context.Context, date time.Time) (PatternConfig, error)
	GetByID(ctx context.Context, id string) (PatternConfig, error)
	Create(ctx context.Context, config PatternConfig) (PatternConfig, error)
	List(ctx context.Context, limit int) ([]PatternConfig, error)
}
