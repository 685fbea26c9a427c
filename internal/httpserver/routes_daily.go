// internal/httpserver/routes_daily.go
//
// HTTP routes for the "Daily Challenge" mode.
// Exposes three endpoints under /daily:
//   - POST /daily/new         → start a daily game (creates or reuses session)
//   - POST /daily/guess       → submit a guess for today's daily game
//   - GET  /daily/leaderboard → fetch top 20 results for today (or a given date)
//
// Everyone plays the same target on the default board: the candidate at
// HMAC(salt, date) % len(candidates). Each player can finish once per day
// (enforced by DB + in-memory session); results are persisted on win.

package httpserver

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/patternmind/internal/auth"
	"github.com/robalobadob/patternmind/internal/daily"
	"github.com/robalobadob/patternmind/internal/game"
	"github.com/robalobadob/patternmind/internal/pattern"
)

// dailyServer wraps dependencies for /daily endpoints.
type dailyServer struct {
	srv      *Server
	store    *daily.Store
	salt     string
	sessions map[string]*dailySession // active sessions keyed by userID|date
	mu       sync.Mutex               // guards sessions
}

// dailySession ties a game session to the player and day it belongs to.
type dailySession struct {
	game         *game.Session
	userID       string
	date         string
	patternIndex int
	start        time.Time
}

// mountDaily registers all /daily routes.
func (s *Server) mountDaily(r chi.Router) {
	dd := &dailyServer{
		srv:      s,
		store:    daily.NewStore(s.db),
		salt:     s.cfg.DailySalt,
		sessions: make(map[string]*dailySession),
	}
	r.Route("/daily", func(r chi.Router) {
		r.Post("/new", dd.handleNew)
		r.Post("/guess", dd.handleGuess)
		r.Get("/leaderboard", dd.handleLeaderboard)
	})
}

// userID returns the authenticated user ID if logged in, otherwise the anonymous ID.
func (d *dailyServer) userID(w http.ResponseWriter, r *http.Request) string {
	if me := auth.FromContext(r.Context()); me != nil {
		return me.ID
	}
	return d.srv.auth.EnsureAnonID(w, r)
}

// -----------------------------------------------------------------------------
// /daily/new

// newRes is returned by /daily/new.
type newRes struct {
	GameID string `json:"gameId"`
	Date   string `json:"date"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Length int    `json:"length"`
	Played bool   `json:"played"`
}

// handleNew creates or reuses a daily session for the current date.
// - If the player already has a DB row for today → return Played=true.
// - Otherwise create/reuse an in-memory session and return GameID.
func (d *dailyServer) handleNew(w http.ResponseWriter, r *http.Request) {
	uid := d.userID(w, r)
	cfg := d.srv.cfg
	now := time.Now().UTC()
	date := daily.DateKey(now)
	res := newRes{Date: date, Width: cfg.GridWidth, Height: cfg.GridHeight, Length: cfg.PatternLength}

	if played, err := d.store.AlreadyPlayed(r.Context(), uid, date); err == nil && played {
		res.Played = true
		_ = json.NewEncoder(w).Encode(res)
		return
	}

	key := uid + "|" + date
	d.mu.Lock()
	if sess, ok := d.sessions[key]; ok {
		d.mu.Unlock()
		res.GameID = sess.game.ID
		_ = json.NewEncoder(w).Encode(res)
		return
	}
	d.mu.Unlock()

	cands, err := d.srv.cat.Candidates(r.Context(), cfg.GridWidth, cfg.GridHeight, cfg.PatternLength)
	if err != nil {
		status, code := catalogStatus(err)
		writeErr(w, status, code)
		return
	}
	idx := daily.PatternIndex(now, d.salt, len(cands))
	g, err := game.New(game.Options{
		Width: cfg.GridWidth, Height: cfg.GridHeight, Length: cfg.PatternLength,
		Mode:       game.ModePlay,
		MaxGuesses: cfg.MaxGuesses,
	}, cands, cands[idx])
	if err != nil {
		writeErr(w, http.StatusInternalServerError, "create_failed")
		return
	}

	d.mu.Lock()
	sess, ok := d.sessions[key]
	if !ok {
		sess = &dailySession{game: g, userID: uid, date: date, patternIndex: idx, start: time.Now()}
		d.sessions[key] = sess
	}
	d.mu.Unlock()

	res.GameID = sess.game.ID
	_ = json.NewEncoder(w).Encode(res)
}

// -----------------------------------------------------------------------------
// /daily/guess

// dailyGuessReq is the request payload for /daily/guess.
type dailyGuessReq struct {
	GameID string       `json:"gameId"`
	Path   pattern.Path `json:"path"`
}

// dailyGuessRes is the response payload for /daily/guess.
type dailyGuessRes struct {
	Differential int    `json:"differential"`
	Exact        int    `json:"exact"`
	State        string `json:"state"` // playing | won | lost | locked
	Guesses      int    `json:"guesses"`
}

// handleGuess validates and applies a guess for today's daily session,
// persisting the result once the pattern is found.
func (d *dailyServer) handleGuess(w http.ResponseWriter, r *http.Request) {
	uid := d.userID(w, r)

	var p dailyGuessReq
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeErr(w, http.StatusBadRequest, "bad_json")
		return
	}
	if p.GameID == "" || len(p.Path) == 0 {
		writeErr(w, http.StatusBadRequest, "invalid")
		return
	}

	date := daily.DateKey(time.Now())
	d.mu.Lock()
	sess, ok := d.sessions[uid+"|"+date]
	d.mu.Unlock()
	if !ok || sess.game.ID != p.GameID {
		writeErr(w, http.StatusConflict, "no_session")
		return
	}
	if sess.game.State() != game.StatePlaying {
		_ = json.NewEncoder(w).Encode(dailyGuessRes{State: "locked", Guesses: sess.game.Tries()})
		return
	}

	turn, err := sess.game.ApplyGuess(p.Path, d.srv.cat.Validator(sess.game.Width, sess.game.Height))
	if err != nil {
		status, code := guessStatus(err)
		writeErr(w, status, code)
		return
	}

	if turn.State == game.StateWon {
		elapsed := int(time.Since(sess.start).Milliseconds())
		if err := d.store.InsertResult(r.Context(), daily.Result{
			UserID: uid, Date: sess.date, PatternIndex: sess.patternIndex, Guesses: turn.Tries, ElapsedMs: elapsed,
		}); err != nil {
			log.Error().Err(err).Str("user", uid).Msg("insert daily result")
		}
	}
	_ = json.NewEncoder(w).Encode(dailyGuessRes{
		Differential: turn.Score.Differential,
		Exact:        turn.Score.Exact,
		State:        string(turn.State),
		Guesses:      turn.Tries,
	})
}

// -----------------------------------------------------------------------------
// /daily/leaderboard

// lbRes is returned by /daily/leaderboard.
type lbRes struct {
	Date string        `json:"date"`
	Top  []daily.LBRow `json:"top"`
}

// handleLeaderboard returns the leaderboard for the given date (default today).
func (d *dailyServer) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		date = daily.DateKey(time.Now())
	}
	rows, err := d.store.Leaderboard(r.Context(), date, 20)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, "server_error")
		return
	}
	_ = json.NewEncoder(w).Encode(lbRes{Date: date, Top: rows})
}
