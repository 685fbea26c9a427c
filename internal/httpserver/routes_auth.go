// internal/httpserver/routes_auth.go
//
// Account routes:
//   - POST /auth/signup, /auth/login, /auth/logout
//   - GET  /auth/me, /stats/me, /games/mine (require auth)
//
// Signing in claims any games played under the visitor's anonymous cookie.

package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/patternmind/internal/auth"
)

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// mountAuthRoutes registers authentication + gated routes (/auth/*, /stats/me, /games/mine).
func (s *Server) mountAuthRoutes() {
	s.r.Post("/auth/signup", s.handleSignup)
	s.r.Post("/auth/login", s.handleLogin)
	s.r.Post("/auth/logout", s.handleLogout)

	gated := s.r.With(s.auth.Require())

	// Current user
	gated.Get("/auth/me", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(auth.FromContext(r.Context()))
	})

	// Stats
	gated.Get("/stats/me", func(w http.ResponseWriter, r *http.Request) {
		me := auth.FromContext(r.Context())
		u, err := s.auth.FindByID(r.Context(), me.ID)
		if err != nil {
			writeErr(w, http.StatusInternalServerError, "not_found")
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":          u.ID,
			"gamesPlayed": u.GamesPlayed,
			"wins":        u.Wins,
			"streak":      u.Streak,
		})
	})

	// Recent games
	gated.Get("/games/mine", func(w http.ResponseWriter, r *http.Request) {
		me := auth.FromContext(r.Context())
		rows, err := s.db.QueryContext(r.Context(),
			`SELECT id, width, height, length, mode, status, guesses, started_at, COALESCE(finished_at,'')
			 FROM games WHERE user_id=? ORDER BY started_at DESC LIMIT 50`, me.ID)
		if err != nil {
			writeErr(w, http.StatusInternalServerError, "db_error")
			return
		}
		defer rows.Close()

		type gameRow struct {
			ID         string `json:"id"`
			Width      int    `json:"width"`
			Height     int    `json:"height"`
			Length     int    `json:"length"`
			Mode       string `json:"mode"`
			Status     string `json:"status"`
			Guesses    int    `json:"guesses"`
			StartedAt  string `json:"startedAt"`
			FinishedAt string `json:"finishedAt,omitempty"`
		}
		out := []gameRow{}
		for rows.Next() {
			var gr gameRow
			if err := rows.Scan(&gr.ID, &gr.Width, &gr.Height, &gr.Length, &gr.Mode,
				&gr.Status, &gr.Guesses, &gr.StartedAt, &gr.FinishedAt); err != nil {
				log.Warn().Err(err).Msg("scan game row")
				continue
			}
			out = append(out, gr)
		}
		_ = json.NewEncoder(w).Encode(out)
	})
}

// handleSignup creates a new user, signs a JWT, sets auth cookie, and claims anon history.
func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var body credentials
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid_json")
		return
	}
	u, err := s.auth.CreateUser(r.Context(), body.Username, body.Password)
	if err != nil {
		if errors.Is(err, auth.ErrUsernameTaken) {
			writeErr(w, http.StatusConflict, "Username taken")
			return
		}
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}
	if !s.signIn(w, r, u) {
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]any{"id": u.ID, "username": u.Username, "createdAt": u.CreatedAt})
}

// handleLogin authenticates user, sets cookie, and claims anon history.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body credentials
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid_json")
		return
	}
	u, err := s.auth.Authenticate(r.Context(), body.Username, body.Password)
	if err != nil {
		writeErr(w, http.StatusUnauthorized, "Invalid username or password")
		return
	}
	if !s.signIn(w, r, u) {
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]any{"id": u.ID, "username": u.Username})
}

// signIn sets the auth cookie and attaches any anonymous games to u.
func (s *Server) signIn(w http.ResponseWriter, r *http.Request, u *auth.User) bool {
	tok, exp, err := s.auth.Sign(u.ID, u.Username)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, "sign_failed")
		return false
	}
	s.auth.SetCookie(w, tok, exp)
	if err := s.auth.ClaimAnonGames(r.Context(), s.auth.EnsureAnonID(w, r), u.ID); err != nil {
		log.Warn().Err(err).Str("user", u.ID).Msg("claim anonymous games")
	}
	return true
}

// handleLogout clears the auth cookie.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.auth.ClearCookie(w)
	_ = json.NewEncoder(w).Encode(map[string]bool{"ok": true})
}
