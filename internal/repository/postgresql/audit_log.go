package postgresql

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/gfinemax/worklog-mcr-sub000/internal/domain/audit"
	"github.com/gfinemax/worklog-mcr-sub000/internal/pkg/database"
)

type auditRepositoryImpl struct {
	db *database.DB
}

func NewAuditRepository(db *database.DB) audit.Repository {
	return &auditRepositoryImpl{db: db}
}

// Append implements audit.Repository.
func (r *auditRepositoryImpl) Append(ctx context.Context, entry audit.Entry) error {
	q := GetQuerier(ctx, r.db)

	changesJSON, err := json.Marshal(entry.Changes)
	if err != nil {
		return fmt.Errorf("failed to marshal audit changes: %w", err)
	}

	query := `
		INSERT INTO audit_logs (
			id, user_id, action, target_type, target_id, changes, created_at
		) VALUES (
			uuidv7(), $1, $2, $3, $4, $5, NOW()
		)
	`

	_, err = q.Exec(ctx, query,
		entry.UserID, entry.Action, entry.TargetType, entry.TargetID, changesJSON,
	)
	if err != nil {
		return fmt.Errorf("failed to append audit log: %w", err)
	}
	return nil
}
