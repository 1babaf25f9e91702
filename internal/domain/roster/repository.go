package roster

import "context"

type Repository interface {
	// GroupMembers returns the live membership of a group ordered by
	// display_order. ErrGroupNotFound when the group does not exist.
	GroupMembers(ctx context.Context, groupName string) ([]GroupMember, error)
	GetUserByID(ctx context.Context, id string) (User, error)
	GetUserByName(ctx context.Context, name string) (User, error)
}
