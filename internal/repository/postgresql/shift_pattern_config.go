package postgresql

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gfinemax/worklog-mcr-sub000/internal/domain/shift"
	"github.com/gfinemax/worklog-mcr-sub000/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type shiftConfigRepositoryImpl struct {
	db *database.DB
}

func NewShiftConfigRepository(db *database.DB) shift.ConfigRepository {
	return &shiftConfigRepositoryImpl{db: db}
}

const shiftConfigColumns = `
	id, valid_from, valid_to, cycle_length, pattern_json, roster_json,
	COALESCE(roles_json, '[]'::jsonb), COALESCE(memo, ''), COALESCE(created_by, ''), created_at
`

// ActiveConfig implements shift.ConfigRepository. Most recent valid_from not
// exceeding the date wins; created_at breaks ties between same-day configs.
func (r *shiftConfigRepositoryImpl) ActiveConfig(ctx context.Context, date time.Time) (shift.PatternConfig, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + shiftConfigColumns + `
		FROM shift_pattern_configs
		WHERE valid_from <= $1
		  AND (valid_to IS NULL OR valid_to >= $1)
		ORDER BY valid_from DESC, created_at DESC
		LIMIT 1
	`

	return r.scanConfig(q.QueryRow(ctx, query, date))
}

// GetByID implements shift.ConfigRepository.
func (r *shiftConfigRepositoryImpl) GetByID(ctx context.Context, id string) (shift.PatternConfig, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + shiftConfigColumns + `
		FROM shift_pattern_configs
		WHERE id = $1
	`

	return r.scanConfig(q.QueryRow(ctx, query, id))
}

// Create implements shift.ConfigRepository. Configs are immutable once
// published; a newer valid_from supersedes, nothing is updated in place.
func (r *shiftConfigRepositoryImpl) Create(ctx context.Context, config shift.PatternConfig) (shift.PatternConfig, error) {
	q := GetQuerier(ctx, r.db)

	patternJSON, err := json.Marshal(config.Pattern)
	if err != nil {
		return shift.PatternConfig{}, fmt.Errorf("failed to marshal pattern_json: %w", err)
	}
	rosterJSON, err := json.Marshal(config.Roster)
	if err != nil {
		return shift.PatternConfig{}, fmt.Errorf("failed to marshal roster_json: %w", err)
	}
	rolesJSON, err := json.Marshal(config.Roles)
	if err != nil {
		return shift.PatternConfig{}, fmt.Errorf("failed to marshal roles_json: %w", err)
	}

	query := `
		INSERT INTO shift_pattern_configs (
			id, valid_from, valid_to, cycle_length, pattern_json, roster_json,
			roles_json, memo, created_by, created_at
		) VALUES (
			uuidv7(), $1, $2, $3, $4, $5, $6, $7, $8, NOW()
		) RETURNING id, created_at
	`

	err = q.QueryRow(ctx, query,
		config.ValidFrom, config.ValidTo, config.CycleLength,
		patternJSON, rosterJSON, rolesJSON, config.Memo, config.CreatedBy,
	).Scan(&config.ID, &config.CreatedAt)
	if err != nil {
		return shift.PatternConfig{}, err
	}

	return config, nil
}

// List implements shift.ConfigRepository.
func (r *shiftConfigRepositoryImpl) List(ctx context.Context, limit int) ([]shift.PatternConfig, error) {
	q := GetQuerier(ctx, r.db)

	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT ` + shiftConfigColumns + `
		FROM shift_pattern_configs
		ORDER BY valid_from DESC, created_at DESC
		LIMIT $1
	`

	rows, err := q.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query shift pattern configs: %w", err)
	}
	defer rows.Close()

	var configs []shift.PatternConfig
	for rows.Next() {
		config, err := r.scanConfig(rows)
		if err != nil {
			return nil, err
		}
		configs = append(configs, config)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating shift pattern configs: %w", err)
	}

	return configs, nil
}

func (r *shiftConfigRepositoryImpl) scanConfig(row pgx.Row) (shift.PatternConfig, error) {
	var config shift.PatternConfig
	var patternJSON, rosterJSON, rolesJSON []byte

	err := row.Scan(
		&config.ID, &config.ValidFrom, &config.ValidTo, &config.CycleLength,
		&patternJSON, &rosterJSON, &rolesJSON, &config.Memo, &config.CreatedBy,
		&config.CreatedAt,
	)
	if err != nil {
		return shift.PatternConfig{}, err
	}

	// Reject malformed JSON at the deserialization boundary instead of
	// letting a bad shape reach the role matching logic.
	if err := json.Unmarshal(patternJSON, &config.Pattern); err != nil {
		return shift.PatternConfig{}, fmt.Errorf("malformed pattern_json for config %s: %w", config.ID, err)
	}
	if err := json.Unmarshal(rosterJSON, &config.Roster); err != nil {
		return shift.PatternConfig{}, fmt.Errorf("malformed roster_json for config %s: %w", config.ID, err)
	}
	if err := json.Unmarshal(rolesJSON, &config.Roles); err != nil {
		return shift.PatternConfig{}, fmt.Errorf("malformed roles_json for config %s: %w", config.ID, err)
	}

	return config, nil
}
