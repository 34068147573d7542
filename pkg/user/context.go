package user

import (
	"context"
	"errors"

	log "github.com/sirupsen/logrus"
)

type sessionUserKey struct{}

var ErrNoUser = errors.New("no logged-in user in request context")

// WithUser attaches the session user to a request context.
func WithUser(ctx context.Context, u User) context.Context {
	return context.WithValue(ctx, sessionUserKey{}, u)
}

// CurrentUser returns the user set by WithUser. A profile without an id counts as no user.
func CurrentUser(ctx context.Context) (User, error) {
	u, ok := ctx.Value(sessionUserKey{}).(User)
	if !ok || u.Id == "" {
		log.Trace("request context carries no session user")
		return User{}, ErrNoUser
	}
	return u, nil
}
