package auth

import (
	"context"

	"github.com/jakechorley/coffee-rota/pkg/core/model"
	apperr "github.com/jakechorley/coffee-rota/pkg/errors"
)

// ProfileGetter loads a staff profile by user id
type ProfileGetter interface {
	GetProfile(ctx context.Context, id string) (model.Profile, error)
}

// Session is a signed-in user with their capability resolved from the profile role
type Session struct {
	UserID     string
	FullName   string
	Role       model.Role
	Capability model.Capability
}

// Actor returns the identity passed to workflow operations
func (s Session) Actor() model.Actor {
	return model.Actor{UserID: s.UserID, Capability: s.Capability}
}

// ResolveSession loads the profile behind verified claims.
// A token for a user without a profile is not a valid session.
func ResolveSession(ctx context.Context, profiles ProfileGetter, claims *Claims) (Session, error) {
	if claims == nil || claims.Subject == "" {
		return Session{}, apperr.New(apperr.CodeUnauthorized, "missing credentials")
	}

	profile, err := profiles.GetProfile(ctx, claims.Subject)
	if err != nil {
		if apperr.Is(err, apperr.CodeNotFound) {
			return Session{}, apperr.Wrap(apperr.CodeUnauthorized, err, "no profile for this account")
		}
		return Session{}, err
	}

	return Session{
		UserID:     profile.ID,
		FullName:   profile.FullName,
		Role:       profile.Role,
		Capability: profile.Role.Capability(),
	}, nil
}
