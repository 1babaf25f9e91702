package audit

import "context"

type Repository interface {
	Append(ctx context.Context, entry Entry) error
}
