package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gfinemax/worklog-mcr-sub000/internal/domain/audit"
	"github.com/gfinemax/worklog-mcr-sub000/internal/domain/auth"
	"github.com/gfinemax/worklog-mcr-sub000/internal/domain/roster"
	"github.com/gfinemax/worklog-mcr-sub000/internal/domain/shift"
	"github.com/gfinemax/worklog-mcr-sub000/internal/domain/worklog"
	"github.com/gfinemax/worklog-mcr-sub000/internal/pkg/jwt"
	"github.com/gfinemax/worklog-mcr-sub000/internal/pkg/session"
	"golang.org/x/crypto/bcrypt"
)

type authServiceImpl struct {
	rosterRepo roster.Repository
	auditRepo  audit.Repository
	shiftSvc   shift.ShiftService
	jwtSvc     jwt.Service
	sessions   *session.Store
	location   *time.Location
	now        func() time.Time
}

func NewAuthService(
	rosterRepo roster.Repository,
	auditRepo audit.Repository,
	shiftSvc shift.ShiftService,
	jwtSvc jwt.Service,
	sessions *session.Store,
	location *time.Location,
) auth.AuthService {
	return &authServiceImpl{
		rosterRepo: rosterRepo,
		auditRepo:  auditRepo,
		shiftSvc:   shiftSvc,
		jwtSvc:     jwtSvc,
		sessions:   sessions,
		location:   location,
		now:        time.Now,
	}
}

// Login implements auth.AuthService.
func (a *authServiceImpl) Login(ctx context.Context, req auth.LoginRequest) (auth.TokenResponse, error) {
	if err := req.Validate(); err != nil {
		return auth.TokenResponse{}, err
	}

	user, err := a.verifyPIN(ctx, req.Name, req.PIN)
	if err != nil {
		return auth.TokenResponse{}, err
	}

	members, err := a.sessionMembers(ctx, req.GroupName)
	if err != nil {
		return auth.TokenResponse{}, err
	}

	started := a.now().In(a.location)
	sess := a.sessions.Begin(req.GroupName, members, started)

	token, expiresAt, err := a.jwtSvc.GenerateAccessToken(user.ID, user.Name, user.AccountType)
	if err != nil {
		return auth.TokenResponse{}, err
	}
	refresh, refreshExpiresAt, err := a.jwtSvc.GenerateRefreshToken(user.ID)
	if err != nil {
		return auth.TokenResponse{}, err
	}

	if err := a.auditRepo.Append(ctx, audit.Entry{
		UserID:     user.ID,
		Action:     audit.ActionLogin,
		TargetType: audit.TargetAuth,
		TargetID:   sess.ID,
		Changes:    map[string]interface{}{"group_name": req.GroupName},
	}); err != nil {
		return auth.TokenResponse{}, err
	}

	return auth.TokenResponse{
		AccessToken:      token,
		ExpiresAt:        expiresAt,
		Session:          auth.NewSessionResponse(sess),
		RefreshToken:     refresh,
		RefreshExpiresAt: refreshExpiresAt,
	}, nil
}

// Refresh implements auth.AuthService. The refresh token stays valid until it
// expires, is revoked at logout, or the on-duty session ends.
func (a *authServiceImpl) Refresh(ctx context.Context, refreshToken string) (auth.TokenResponse, error) {
	if a.jwtSvc.IsTokenRevoked(refreshToken) {
		return auth.TokenResponse{}, auth.ErrInvalidRefreshToken
	}

	token, err := a.jwtSvc.JWTAuth().Decode(refreshToken)
	if err != nil {
		return auth.TokenResponse{}, auth.ErrInvalidRefreshToken
	}
	if typ, _ := token.Get("type"); typ != "refresh" {
		return auth.TokenResponse{}, auth.ErrInvalidRefreshToken
	}
	rawID, _ := token.Get("user_id")
	userID, _ := rawID.(string)
	if userID == "" {
		return auth.TokenResponse{}, auth.ErrInvalidRefreshToken
	}

	user, err := a.rosterRepo.GetUserByID(ctx, userID)
	if errors.Is(err, roster.ErrUserNotFound) {
		return auth.TokenResponse{}, auth.ErrInvalidRefreshToken
	}
	if err != nil {
		return auth.TokenResponse{}, err
	}

	current := a.sessions.Current()
	if current == nil {
		return auth.TokenResponse{}, auth.ErrNoActiveSession
	}

	access, expiresAt, err := a.jwtSvc.GenerateAccessToken(user.ID, user.Name, user.AccountType)
	if err != nil {
		return auth.TokenResponse{}, err
	}

	return auth.TokenResponse{
		AccessToken: access,
		ExpiresAt:   expiresAt,
		Session:     auth.NewSessionResponse(*current),
	}, nil
}

// Logout implements auth.AuthService.
func (a *authServiceImpl) Logout(ctx context.Context, userID string) error {
	current := a.sessions.Current()
	if current == nil {
		return auth.ErrNoActiveSession
	}
	a.sessions.Clear()

	return a.auditRepo.Append(ctx, audit.Entry{
		UserID:     userID,
		Action:     audit.ActionLogout,
		TargetType: audit.TargetAuth,
		TargetID:   current.ID,
		Changes:    map[string]interface{}{"group_name": current.GroupName},
	})
}

// ConfirmPIN implements auth.AuthService.
func (a *authServiceImpl) ConfirmPIN(ctx context.Context, req auth.ConfirmPINRequest) (worklog.Actor, error) {
	if err := req.Validate(); err != nil {
		return worklog.Actor{}, err
	}

	user, err := a.verifyPIN(ctx, req.Name, req.PIN)
	if err != nil {
		return worklog.Actor{}, err
	}

	return worklog.Actor{
		ID:          user.ID,
		Name:        user.Name,
		AccountType: user.AccountType,
	}, nil
}

// StageNextSession implements auth.AuthService.
func (a *authServiceImpl) StageNextSession(ctx context.Context) (session.Session, error) {
	current := a.sessions.Current()
	if current == nil {
		return session.Session{}, auth.ErrNoActiveSession
	}

	info := a.shiftSvc.LogicalShiftInfo(a.now())
	config, err := a.shiftSvc.ActiveConfig(ctx, info.Date)
	if err != nil {
		return session.Session{}, err
	}

	nextTeam := a.shiftSvc.NextTeam(current.GroupName, info.Type, config)
	if nextTeam == "" {
		return session.Session{}, auth.ErrNoNextTeam
	}

	members, err := a.sessionMembers(ctx, nextTeam)
	if err != nil {
		return session.Session{}, err
	}

	return a.sessions.SetNext(nextTeam, members, a.now().In(a.location)), nil
}

// SessionState implements auth.AuthService.
func (a *authServiceImpl) SessionState(_ context.Context) auth.SessionStateResponse {
	var state auth.SessionStateResponse
	if current := a.sessions.Current(); current != nil {
		resp := auth.NewSessionResponse(*current)
		state.Current = &resp
	}
	if next := a.sessions.Next(); next != nil {
		resp := auth.NewSessionResponse(*next)
		state.Next = &resp
	}
	return state
}

func (a *authServiceImpl) verifyPIN(ctx context.Context, name, pin string) (roster.User, error) {
	user, err := a.rosterRepo.GetUserByName(ctx, name)
	if errors.Is(err, roster.ErrUserNotFound) {
		// Same error as a wrong PIN so names cannot be probed
		return roster.User{}, auth.ErrInvalidCredentials
	}
	if err != nil {
		return roster.User{}, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PinHash), []byte(pin)) != nil {
		return roster.User{}, auth.ErrInvalidCredentials
	}
	return user, nil
}

func (a *authServiceImpl) sessionMembers(ctx context.Context, groupName string) ([]session.Member, error) {
	groupMembers, err := a.rosterRepo.GroupMembers(ctx, groupName)
	if err != nil {
		return nil, err
	}

	members := make([]session.Member, 0, len(groupMembers))
	for _, gm := range groupMembers {
		role, _, _ := strings.Cut(gm.Role, ",")
		members = append(members, session.Member{
			UserID: gm.UserID,
			Name:   gm.Name,
			Role:   strings.TrimSpace(role),
		})
	}
	return members, nil
}
