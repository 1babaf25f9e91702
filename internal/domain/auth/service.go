package auth

import (
	"context"

	"github.com/gfinemax/worklog-mcr-sub000/internal/domain/worklog"
	"github.com/gfinemax/worklog-mcr-sub000/internal/pkg/session"
)

type AuthService interface {
	// Login verifies the user's PIN, starts the on-duty session for the group
	// and issues an access/refresh token pair.
	Login(ctx context.Context, req LoginRequest) (TokenResponse, error)
	Logout(ctx context.Context, userID string) error

	// Refresh issues a new access token from a valid refresh token. The
	// on-duty session must still be open.
	Refresh(ctx context.Context, refreshToken string) (TokenResponse, error)

	// ConfirmPIN re-verifies an identity for signature and handover actions
	// on the shared console.
	ConfirmPIN(ctx context.Context, req ConfirmPINRequest) (worklog.Actor, error)

	// StageNextSession prepares the incoming team's session during handover
	// without ending the current one.
	StageNextSession(ctx context.Context) (session.Session, error)
	SessionState(ctx context.Context) SessionStateResponse
}
