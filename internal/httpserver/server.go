// internal/httpserver/server.go
//
// HTTP server wiring for the patternmind backend.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs, access log).
//   - Public endpoints: "/", "/health", "/render".
//   - Game endpoints (optional auth): /game/new, /game/guess, /game/hint, /game/{id}/progress.
//   - Solver endpoints (optional auth): /solver/new, /solver/feedback.
//   - Daily Challenge endpoints (optional auth): mounted under /daily.
//   - Auth + profile/stat endpoints: /auth/*, /stats/me, /games/mine.
//   - Database persistence for game outcomes and user stats.
//
// Notes:
//   - Candidate sets come from the shared catalog; sessions only narrow them.
//   - Pattern node ids in requests/responses are 0-based, row-major (y*width + x).

package httpserver

import (
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/patternmind/internal/auth"
	"github.com/robalobadob/patternmind/internal/catalog"
	"github.com/robalobadob/patternmind/internal/config"
	"github.com/robalobadob/patternmind/internal/game"
	"github.com/robalobadob/patternmind/internal/pattern"
	"github.com/robalobadob/patternmind/internal/render"
	"github.com/robalobadob/patternmind/internal/store"
)

// Server bundles router, session store, candidate catalog, auth and DB handle.
type Server struct {
	r     *chi.Mux
	cfg   config.Config
	store store.Store
	cat   *catalog.Catalog
	auth  *auth.Service
	db    *sql.DB
}

// New constructs a Server, installs middleware, and registers routes.
func New(cfg config.Config, st store.Store, cat *catalog.Catalog, db *sql.DB) *Server {
	s := &Server{
		r:     chi.NewRouter(),
		cfg:   cfg,
		store: st,
		cat:   cat,
		db:    db,
		auth: auth.NewService(db, auth.Config{
			Secret:      cfg.JWTSecret,
			ExpiresDays: cfg.JWTExpireDays,
			CookieName:  cfg.CookieName,
			Secure:      cfg.Production,
		}),
	}

	// --- middleware ---
	s.r.Use(chimw.RequestID)                 // add X-Request-ID
	s.r.Use(chimw.RealIP)                    // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(accessLog)                       // one zerolog line per request
	s.r.Use(chimw.Recoverer)                 // recover from panics
	s.r.Use(chimw.Timeout(30 * time.Second)) // bound handler time (first generation of a board can be slow)
	s.r.Use(jsonContentType)                 // default JSON responses
	s.r.Use(s.cors)                          // credentials-friendly CORS

	// --- diagnostics ---
	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"service":"patternmind","endpoints":["/health","POST /game/new","POST /game/guess","POST /solver/new","/daily/*","/auth/*"]}`))
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"ok":true}`))
	})
	s.r.Get("/render", s.handleRender)

	// Game + solver endpoints: OPTIONAL AUTH (guests can play)
	s.r.Group(func(r chi.Router) {
		r.Use(s.auth.Optional())
		r.Post("/game/new", s.handleNewGame)
		r.Post("/game/guess", s.handleGuess)
		r.Post("/game/hint", s.handleHint)
		r.Get("/game/{id}/progress", s.handleProgress)
		r.Post("/solver/new", s.handleNewSolver)
		r.Post("/solver/feedback", s.handleFeedback)
	})

	// Daily Challenge: OPTIONAL AUTH (guests can play; result persisted on win)
	s.mountDaily(s.r.With(s.auth.Optional()))

	// Auth + profile/stats
	s.mountAuthRoutes()

	// Debug: loaded candidate sets, automated play
	s.r.Get("/debug/catalog", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(s.cat.Stats())
	})
	s.r.Get("/debug/simulate", s.handleSimulate)

	// JSON 404 for easier debugging
	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"not_found","path":"`+r.URL.Path+`"}`, http.StatusNotFound)
	})
	return s
}

// Start begins serving HTTP on addr.
func (s *Server) Start(addr string) error { return http.ListenAndServe(addr, s.r) }

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// cors enables credentialed CORS for the configured client origin.
func (s *Server) cors(next http.Handler) http.Handler {
	origin := s.cfg.ClientOrigin
	if origin == "" {
		origin = "http://localhost:5173"
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Credentials", "true")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// accessLog writes a structured line per request.
func accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		log.Debug().
			Str("reqId", chimw.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("took", time.Since(start)).
			Msg("request")
	})
}

// ------------------------------ helpers ------------------------------------

// writeErr writes {"error": code} with status.
func writeErr(w http.ResponseWriter, status int, code string) {
	http.Error(w, `{"error":"`+code+`"}`, status)
}

// boardOrDefault fills zero dimensions from config.
func (s *Server) boardOrDefault(width, height, length int) (int, int, int) {
	if width == 0 {
		width = s.cfg.GridWidth
	}
	if height == 0 {
		height = s.cfg.GridHeight
	}
	if length == 0 {
		length = s.cfg.PatternLength
	}
	return width, height, length
}

// catalogStatus maps catalog errors to an HTTP status and error code.
func catalogStatus(err error) (int, string) {
	switch {
	case errors.Is(err, pattern.ErrInvalidParameter):
		return http.StatusBadRequest, "invalid_board"
	case errors.Is(err, catalog.ErrTooLarge):
		return http.StatusBadRequest, "board_too_large"
	case errors.Is(err, catalog.ErrEmpty):
		return http.StatusBadRequest, "no_patterns"
	}
	return http.StatusServiceUnavailable, "generation_failed"
}

// guessStatus maps session errors to an HTTP status and error code.
func guessStatus(err error) (int, string) {
	switch {
	case errors.Is(err, game.ErrFinished):
		return http.StatusConflict, "game_finished"
	case errors.Is(err, game.ErrWrongLength):
		return http.StatusBadRequest, "wrong_length"
	case errors.Is(err, game.ErrNotAPattern):
		return http.StatusBadRequest, "not_a_pattern"
	case errors.Is(err, game.ErrScoreRange):
		return http.StatusBadRequest, "score_out_of_range"
	case errors.Is(err, game.ErrInconsistentFeedback):
		return http.StatusConflict, "inconsistent_feedback"
	}
	return http.StatusBadRequest, "invalid"
}

func (s *Server) draw(width, height int, p pattern.Path) string {
	g, err := pattern.NewGrid(width, height)
	if err != nil {
		return ""
	}
	return render.Draw(g, p)
}

// ------------------------------ GAME ---------------------------------------

// newGameReq/Res payloads for POST /game/new.
type newGameReq struct {
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Length int    `json:"length"`
	Mode   string `json:"mode"` // "play" (default) | "cheat"
}
type newGameRes struct {
	GameID     string    `json:"gameId"`
	Width      int       `json:"width"`
	Height     int       `json:"height"`
	Length     int       `json:"length"`
	Mode       game.Mode `json:"mode"`
	Candidates int       `json:"candidates"`
	Board      string    `json:"board"`
}

// handleNewGame creates a new in-memory session and persists a DB "owner" row
// (either user_id or anonymous_id) for history/stats.
func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	var req newGameReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeErr(w, http.StatusBadRequest, "bad_json")
		return
	}
	mode, err := game.ParseMode(req.Mode)
	if err != nil {
		writeErr(w, http.StatusBadRequest, "unknown_mode")
		return
	}
	width, height, length := s.boardOrDefault(req.Width, req.Height, req.Length)
	cands, err := s.cat.Candidates(r.Context(), width, height, length)
	if err != nil {
		status, code := catalogStatus(err)
		writeErr(w, status, code)
		return
	}
	target, err := s.cat.Random(r.Context(), width, height, length)
	if err != nil {
		status, code := catalogStatus(err)
		writeErr(w, status, code)
		return
	}
	sess, err := game.New(game.Options{
		Width: width, Height: height, Length: length,
		Mode:       mode,
		MaxGuesses: s.cfg.MaxGuesses,
	}, cands, target)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, "create_failed")
		return
	}
	if err := s.store.Save(r.Context(), sess); err != nil {
		log.Error().Err(err).Msg("save game")
		writeErr(w, http.StatusInternalServerError, "save_failed")
		return
	}

	clause, owner := s.owner(w, r)
	if _, err := s.db.ExecContext(r.Context(),
		`INSERT INTO games (id, `+clause+`, width, height, length, mode, started_at, status, guesses)
		 VALUES (?,?,?,?,?,?,?,?,0)`,
		sess.ID, owner, width, height, length, string(mode), time.Now().UTC().Format(time.RFC3339), string(game.StatePlaying)); err != nil {
		log.Warn().Err(err).Str("gameId", sess.ID).Msg("insert game row")
	}

	g, _ := pattern.NewGrid(width, height)
	_ = json.NewEncoder(w).Encode(newGameRes{
		GameID:     sess.ID,
		Width:      width,
		Height:     height,
		Length:     length,
		Mode:       mode,
		Candidates: len(cands),
		Board:      render.Board(g),
	})
}

// guessReq/Res payloads for POST /game/guess.
type guessReq struct {
	GameID string       `json:"gameId"`
	Path   pattern.Path `json:"path"`
}
type guessRes struct {
	Differential int          `json:"differential"`
	Exact        int          `json:"exact"`
	State        game.State   `json:"state"` // "playing" | "won" | "lost"
	Remaining    int          `json:"remaining"`
	Tries        int          `json:"tries"`
	Answer       pattern.Path `json:"answer,omitempty"`
	Drawing      string       `json:"drawing,omitempty"`
}

// handleGuess applies a guess to an in-memory session, persists progress,
// and (if finished) updates user stats in a best-effort transaction.
func (s *Server) handleGuess(w http.ResponseWriter, r *http.Request) {
	var req guessReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "bad_json")
		return
	}
	sess, err := s.store.Get(r.Context(), req.GameID)
	if err != nil {
		writeErr(w, http.StatusNotFound, "not_found")
		return
	}
	turn, err := sess.ApplyGuess(req.Path, s.cat.Validator(sess.Width, sess.Height))
	if err != nil {
		status, code := guessStatus(err)
		writeErr(w, status, code)
		return
	}
	if err := s.store.Save(r.Context(), sess); err != nil {
		writeErr(w, http.StatusInternalServerError, "save_failed")
		return
	}
	s.recordTurn(w, r, sess.ID, turn.State)

	res := guessRes{
		Differential: turn.Score.Differential,
		Exact:        turn.Score.Exact,
		State:        turn.State,
		Remaining:    turn.Remaining,
		Tries:        turn.Tries,
	}
	if ans, ok := sess.Answer(); ok {
		res.Answer = ans
		res.Drawing = s.draw(sess.Width, sess.Height, ans)
	}
	_ = json.NewEncoder(w).Encode(res)
}

// recordTurn persists counters/history (best effort, non-fatal if it fails).
func (s *Server) recordTurn(w http.ResponseWriter, r *http.Request, gameID string, state game.State) {
	clause, owner := s.owner(w, r)
	tx, err := s.db.BeginTx(r.Context(), nil)
	if err != nil {
		log.Warn().Err(err).Msg("begin tx")
		return
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`UPDATE games SET guesses = guesses + 1 WHERE id=? AND `+clause+`=?`, gameID, owner); err != nil {
		log.Warn().Err(err).Msg("update guesses")
	}
	if state != game.StatePlaying {
		if _, err := tx.Exec(`UPDATE games SET status=?, finished_at=? WHERE id=? AND `+clause+`=?`,
			string(state), time.Now().UTC().Format(time.RFC3339), gameID, owner); err != nil {
			log.Warn().Err(err).Msg("finish game")
		}
		if me := auth.FromContext(r.Context()); me != nil {
			if err := auth.BumpStats(tx, me.ID, state == game.StateWon); err != nil {
				log.Warn().Err(err).Str("user", me.ID).Msg("bump stats")
			}
		}
	}
	if err := tx.Commit(); err != nil {
		log.Warn().Err(err).Msg("commit turn")
	}
}

// owner returns the games-table owner column and value for this request.
func (s *Server) owner(w http.ResponseWriter, r *http.Request) (string, string) {
	if me := auth.FromContext(r.Context()); me != nil {
		return "user_id", me.ID
	}
	return "anonymous_id", s.auth.EnsureAnonID(w, r)
}

type hintReq struct {
	GameID string `json:"gameId"`
}
type hintRes struct {
	Path    pattern.Path `json:"path"`
	Drawing string       `json:"drawing"`
	Tries   int          `json:"tries"`
	State   game.State   `json:"state"`
}

// handleHint returns a pattern consistent with all feedback so far.
// A hint costs one try, so it can end a game that has a guess limit.
func (s *Server) handleHint(w http.ResponseWriter, r *http.Request) {
	var req hintReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "bad_json")
		return
	}
	sess, err := s.store.Get(r.Context(), req.GameID)
	if err != nil {
		writeErr(w, http.StatusNotFound, "not_found")
		return
	}
	p, err := sess.Hint()
	if err != nil {
		status, code := guessStatus(err)
		writeErr(w, status, code)
		return
	}
	state := sess.State()
	if state != game.StatePlaying {
		s.recordTurn(w, r, sess.ID, state)
	}
	_ = json.NewEncoder(w).Encode(hintRes{
		Path:    p,
		Drawing: s.draw(sess.Width, sess.Height, p),
		Tries:   sess.Tries(),
		State:   state,
	})
}

type progressRes struct {
	game.Progress
	State   game.State   `json:"state"`
	Tries   int          `json:"tries"`
	History []game.Guess `json:"history"`
}

// handleProgress reports remaining candidates and the guess history.
func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request) {
	sess, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, http.StatusNotFound, "not_found")
		return
	}
	_ = json.NewEncoder(w).Encode(progressRes{
		Progress: sess.Progress(),
		State:    sess.State(),
		Tries:    sess.Tries(),
		History:  sess.History(),
	})
}

// ------------------------------ SOLVER -------------------------------------

type newSolverReq struct {
	Width  int `json:"width"`
	Height int `json:"height"`
	Length int `json:"length"`
}
type solverRes struct {
	SolverID   string       `json:"solverId"`
	Suggestion pattern.Path `json:"suggestion"`
	Drawing    string       `json:"drawing"`
	Remaining  int          `json:"remaining"`
	Rounds     int          `json:"rounds"`
	Solved     bool         `json:"solved"`
}

// handleNewSolver starts an assisted solve and returns the first suggestion.
func (s *Server) handleNewSolver(w http.ResponseWriter, r *http.Request) {
	var req newSolverReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeErr(w, http.StatusBadRequest, "bad_json")
		return
	}
	width, height, length := s.boardOrDefault(req.Width, req.Height, req.Length)
	cands, err := s.cat.Candidates(r.Context(), width, height, length)
	if err != nil {
		status, code := catalogStatus(err)
		writeErr(w, status, code)
		return
	}
	sv, err := game.NewSolver(width, height, cands, nil)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, "create_failed")
		return
	}
	if err := s.store.SaveSolver(r.Context(), sv); err != nil {
		writeErr(w, http.StatusInternalServerError, "save_failed")
		return
	}
	s.writeSolver(w, sv)
}

type feedbackReq struct {
	SolverID     string       `json:"solverId"`
	Path         pattern.Path `json:"path"`
	Differential int          `json:"differential"`
	Exact        int          `json:"exact"`
}

// handleFeedback narrows a solver by the score its last suggestion received.
func (s *Server) handleFeedback(w http.ResponseWriter, r *http.Request) {
	var req feedbackReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "bad_json")
		return
	}
	sv, err := s.store.GetSolver(r.Context(), req.SolverID)
	if err != nil {
		writeErr(w, http.StatusNotFound, "not_found")
		return
	}
	if _, err := sv.Feedback(req.Path, game.Score{Differential: req.Differential, Exact: req.Exact}); err != nil {
		status, code := guessStatus(err)
		writeErr(w, status, code)
		return
	}
	s.writeSolver(w, sv)
}

func (s *Server) writeSolver(w http.ResponseWriter, sv *game.Solver) {
	p := sv.Suggest()
	_ = json.NewEncoder(w).Encode(solverRes{
		SolverID:   sv.ID,
		Suggestion: p,
		Drawing:    s.draw(sv.Width, sv.Height, p),
		Remaining:  sv.Progress().Remaining,
		Rounds:     sv.Rounds(),
		Solved:     sv.Solved(),
	})
}

// ------------------------------ RENDER / DEBUG ------------------------------

// handleRender draws ?path=0,4,8 on a ?width=&height= board (defaults from config).
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	width, _ := strconv.Atoi(q.Get("width"))
	height, _ := strconv.Atoi(q.Get("height"))
	width, height, _ = s.boardOrDefault(width, height, 0)
	if width > s.cfg.MaxNodes || height > s.cfg.MaxNodes {
		writeErr(w, http.StatusBadRequest, "invalid_board")
		return
	}
	g, err := pattern.NewGrid(width, height)
	if err != nil || g.NodeCount() > s.cfg.MaxNodes {
		writeErr(w, http.StatusBadRequest, "invalid_board")
		return
	}
	var p pattern.Path
	if raw := strings.TrimSpace(q.Get("path")); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			id, err := strconv.Atoi(strings.TrimSpace(part))
			if err != nil || !g.Contains(id) {
				writeErr(w, http.StatusBadRequest, "invalid_path")
				return
			}
			p = append(p, id)
		}
	}
	_ = json.NewEncoder(w).Encode(map[string]string{"drawing": render.Draw(g, p)})
}

const maxSimulatedGames = 200

// handleSimulate plays ?games=N automated games on the default board.
func (s *Server) handleSimulate(w http.ResponseWriter, r *http.Request) {
	n, err := strconv.Atoi(r.URL.Query().Get("games"))
	if err != nil || n <= 0 {
		n = 20
	}
	if n > maxSimulatedGames {
		n = maxSimulatedGames
	}
	width, height, length := s.boardOrDefault(0, 0, 0)
	cands, err := s.cat.Candidates(r.Context(), width, height, length)
	if err != nil {
		status, code := catalogStatus(err)
		writeErr(w, status, code)
		return
	}
	start := time.Now()
	sum := game.Simulate(cands, n, game.CryptoRand{})
	log.Info().Int("games", n).Float64("mean", sum.Mean).Dur("took", time.Since(start)).Msg("simulated games")
	_ = json.NewEncoder(w).Encode(sum)
}
