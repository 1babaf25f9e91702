package http

import (
	"errors"
	"net/http"

	"github.com/gfinemax/worklog-mcr-sub000/internal/domain/worklog"
	"github.com/go-chi/jwtauth/v5"
)

var errMissingClaims = errors.New("missing identity claims")

// actorFromContext rebuilds the authenticated actor from the verified JWT
// claims. Signature and handover endpoints do NOT use this identity; they
// re-confirm via PIN because the console is shared by the whole team.
func actorFromContext(r *http.Request) (worklog.Actor, error) {
	_, claims, err := jwtauth.FromContext(r.Context())
	if err != nil {
		return worklog.Actor{}, err
	}

	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return worklog.Actor{}, errMissingClaims
	}
	name, _ := claims["name"].(string)
	accountType, _ := claims["account_type"].(string)

	return worklog.Actor{
		ID:          userID,
		Name:        name,
		AccountType: accountType,
	}, nil
}
