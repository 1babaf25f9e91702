package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/gfinemax/worklog-mcr-sub000/internal/domain/roster"
	"github.com/gfinemax/worklog-mcr-sub000/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type rosterRepositoryImpl struct {
	db *database.DB
}

func NewRosterRepository(db *database.DB) roster.Repository {
	return &rosterRepositoryImpl{db: db}
}

// GroupMembers implements roster.Repository.
func (r *rosterRepositoryImpl) GroupMembers(ctx context.Context, groupName string) ([]roster.GroupMember, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT u.id, u.name, COALESCE(u.role, ''), u.account_type, gm.display_order
		FROM group_members gm
		JOIN groups g ON g.id = gm.group_id
		JOIN users u ON u.id = gm.user_id
		WHERE g.name = $1 AND u.deleted_at IS NULL
		ORDER BY gm.display_order ASC, u.name ASC
	`

	rows, err := q.Query(ctx, query, groupName)
	if err != nil {
		return nil, fmt.Errorf("failed to query group members: %w", err)
	}
	defer rows.Close()

	var members []roster.GroupMember
	for rows.Next() {
		var m roster.GroupMember
		err := rows.Scan(&m.UserID, &m.Name, &m.Role, &m.AccountType, &m.DisplayOrder)
		if err != nil {
			return nil, fmt.Errorf("failed to scan group member: %w", err)
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating group members: %w", err)
	}

	if len(members) == 0 {
		// Distinguish an unknown group from an empty one.
		var exists bool
		err := q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM groups WHERE name = $1)`, groupName).Scan(&exists)
		if err != nil {
			return nil, fmt.Errorf("failed to check group existence: %w", err)
		}
		if !exists {
			return nil, roster.ErrGroupNotFound
		}
	}

	return members, nil
}

// GetUserByID implements roster.Repository.
func (r *rosterRepositoryImpl) GetUserByID(ctx context.Context, id string) (roster.User, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, name, COALESCE(role, ''), account_type, COALESCE(pin_hash, ''), created_at
		FROM users
		WHERE id = $1 AND deleted_at IS NULL
	`

	return scanUser(q.QueryRow(ctx, query, id))
}

// GetUserByName implements roster.Repository. Names are unique among live
// accounts, enforced by a partial unique index.
func (r *rosterRepositoryImpl) GetUserByName(ctx context.Context, name string) (roster.User, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, name, COALESCE(role, ''), account_type, COALESCE(pin_hash, ''), created_at
		FROM users
		WHERE name = $1 AND deleted_at IS NULL
	`

	return scanUser(q.QueryRow(ctx, query, name))
}

func scanUser(row pgx.Row) (roster.User, error) {
	var u roster.User
	err := row.Scan(&u.ID, &u.Name, &u.Role, &u.AccountType, &u.PinHash, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return roster.User{}, roster.ErrUserNotFound
	}
	if err != nil {
		return roster.User{}, err
	}
	return u, nil
}
