package auth

import (
	"context"
	"net/http"
)

// Identity is placed into request context by the auth middleware.
type Identity struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

type ctxKey struct{}

// FromContext returns the authenticated identity, or nil for guests.
func FromContext(ctx context.Context) *Identity {
	id, _ := ctx.Value(ctxKey{}).(*Identity)
	return id
}

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// identify resolves the request token to a still-existing user.
func (s *Service) identify(r *http.Request) (*Identity, error) {
	tok := s.bearerOrCookie(r)
	if tok == "" {
		return nil, ErrInvalidToken
	}
	id, username, err := s.Parse(tok)
	if err != nil {
		return nil, err
	}
	// Ensure user still exists
	if _, err := s.FindByID(r.Context(), id); err != nil {
		return nil, ErrInvalidToken
	}
	return &Identity{ID: id, Username: username}, nil
}

// Optional decorates requests with the identity if a valid JWT is present.
// It never 401s; used for routes where guests are allowed.
func (s *Service) Optional() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if me, err := s.identify(r); err == nil {
				r = r.WithContext(WithIdentity(r.Context(), me))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Require enforces a valid JWT and injects the identity into request context.
func (s *Service) Require() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if s.bearerOrCookie(r) == "" {
				http.Error(w, `{"error":"Unauthorized"}`, http.StatusUnauthorized)
				return
			}
			me, err := s.identify(r)
			if err != nil {
				http.Error(w, `{"error":"Invalid token"}`, http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), me)))
		})
	}
}
