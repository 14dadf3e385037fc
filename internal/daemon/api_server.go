package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"ghplayer/internal/api"
	"ghplayer/internal/config"
	"ghplayer/internal/library"
	"ghplayer/internal/logging"
	"ghplayer/internal/session"
	"ghplayer/internal/worker"
)

const (
	maxRequestBody = 1 << 20
	eventPollLimit = 25 * time.Second
)

type apiServer struct {
	bind   string
	logger *slog.Logger
	daemon *Daemon

	listener net.Listener
	server   *http.Server
}

func newAPIServer(cfg *config.Config, d *Daemon, logger *slog.Logger) (*apiServer, error) {
	if cfg == nil || d == nil {
		return nil, nil
	}
	bind := strings.TrimSpace(cfg.Paths.APIBind)
	if bind == "" {
		return nil, nil
	}

	mux := http.NewServeMux()
	srv := &apiServer{
		bind:   bind,
		logger: logger,
		daemon: d,
	}

	token := cfg.Paths.APIToken
	mux.HandleFunc("/api/status", authMiddleware(token, srv.handleStatus))
	mux.HandleFunc("/api/library/root", authMiddleware(token, srv.handleRoot))
	mux.HandleFunc("/api/library/children", authMiddleware(token, srv.handleChildren))
	mux.HandleFunc("/api/library/item", authMiddleware(token, srv.handleItem))
	mux.HandleFunc("/api/queue", authMiddleware(token, srv.handleQueue))
	mux.HandleFunc("/api/artwork", authMiddleware(token, srv.handleArtwork))
	mux.HandleFunc("/api/session/login-state", authMiddleware(token, srv.handleLoginState))
	mux.HandleFunc("/api/session/now-playing", authMiddleware(token, srv.handleNowPlaying))
	mux.HandleFunc("/api/session/events", authMiddleware(token, srv.handleEvents))
	metrics := promhttp.HandlerFor(d.registry, promhttp.HandlerOpts{Registry: d.registry})
	mux.HandleFunc("/metrics", authMiddleware(token, metrics.ServeHTTP))

	srv.server = &http.Server{
		Handler:           srv.withRequestID(mux),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return srv, nil
}

func (s *apiServer) start(ctx context.Context) error {
	if s == nil {
		return nil
	}
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log().Error("api server error", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	s.log().Info("api server listening", logging.String("address", listener.Addr().String()))
	return nil
}

func (s *apiServer) stop() {
	if s == nil {
		return
	}
	if s.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}
	if s.listener != nil {
		_ = s.listener.Close()
		s.listener = nil
	}
}

func (s *apiServer) address() string {
	if s == nil {
		return ""
	}
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.bind
}

// withRequestID tags each request with an id, honouring one supplied by the
// caller, and echoes it in the response.
func (s *apiServer) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get("X-Request-ID"))
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		ctx := logging.WithRequestID(r.Context(), id)
		logging.WithContext(ctx, s.log()).Debug("api request",
			logging.String("method", r.Method),
			logging.String("path", r.URL.Path),
		)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// scope overlays the per-request logged-in header on the host's extras.
func (s *apiServer) scope(r *http.Request) *session.Scope {
	override := session.Extras{}
	if value := strings.TrimSpace(r.Header.Get(api.HeaderLoggedIn)); value != "" {
		if loggedIn, err := strconv.ParseBool(value); err == nil {
			override = override.WithLoggedIn(loggedIn)
		}
	}
	return s.daemon.host.Scope(override)
}

func (s *apiServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	status := s.daemon.Status(r.Context())
	payload := api.StatusResponse{
		Running:         status.Running,
		PID:             status.PID,
		LockFilePath:    status.LockFilePath,
		CredentialsPath: status.CredentialsPath,
		BackendURL:      status.BackendURL,
		Auth:            api.FromSnapshot(status.Auth),
		Worker: api.WorkerStatus{
			Running: status.WorkerRunning,
			Depth:   status.WorkerDepth,
			Active:  status.WorkerActive,
		},
		Artwork: api.FromCacheStats(status.Artwork),
		Session: api.SessionStatus{
			LoggedIn:    status.Auth.LoggedIn,
			HasPlaylist: status.HasPlaylist,
			PositionMs:  status.PositionMs,
		},
	}
	if !status.StartedAt.IsZero() {
		payload.StartedAt = status.StartedAt.UTC().Format(time.RFC3339)
	}
	if status.NowPlaying != nil {
		item := api.FromMediaItem(*status.NowPlaying)
		payload.Session.NowPlaying = &item
	}
	s.writeJSON(w, http.StatusOK, payload)
}

func (s *apiServer) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	node := s.daemon.navigator.Root(r.Context(), s.scope(r))
	s.writeJSON(w, http.StatusOK, api.NodeResponse{Node: api.FromContentNode(node)})
}

func (s *apiServer) handleChildren(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	query := r.URL.Query()
	parent := strings.TrimSpace(query.Get("parent"))
	if parent == "" {
		s.writeError(w, http.StatusBadRequest, "parent is required")
		return
	}
	page, _ := strconv.Atoi(query.Get("page"))
	pageSize, _ := strconv.Atoi(query.Get("page_size"))

	nodes, err := s.daemon.navigator.Children(r.Context(), s.scope(r), parent, page, pageSize).Wait(r.Context())
	if err != nil {
		s.writeLibraryError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, api.ChildrenResponse{Parent: parent, Items: api.FromContentNodes(nodes)})
}

func (s *apiServer) handleItem(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	id := strings.TrimSpace(r.URL.Query().Get("id"))
	if id == "" {
		s.writeError(w, http.StatusBadRequest, "id is required")
		return
	}
	node, err := s.daemon.navigator.Item(r.Context(), s.scope(r), id)
	if err != nil {
		s.writeLibraryError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, api.NodeResponse{Node: api.FromContentNode(node)})
}

func (s *apiServer) handleQueue(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req api.QueueRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	if len(req.Items) == 0 {
		s.writeError(w, http.StatusBadRequest, "items are required")
		return
	}
	queue, err := s.daemon.queue.Build(r.Context(), s.scope(r), req.ToSelection()).Wait(r.Context())
	if err != nil {
		s.writeLibraryError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, api.FromQueue(queue))
}

func (s *apiServer) handleArtwork(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	ref := strings.TrimSpace(r.URL.Query().Get("ref"))
	if ref == "" {
		s.writeError(w, http.StatusBadRequest, "ref is required")
		return
	}
	data, ok := s.daemon.artwork.Cached(ref)
	if !ok || len(data) == 0 {
		s.writeError(w, http.StatusNotFound, "artwork not cached")
		return
	}
	w.Header().Set("Content-Type", http.DetectContentType(data))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("Cache-Control", "max-age=3600")
	w.Header().Set("X-Artwork-Ref", ref)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		logging.WithContext(r.Context(), s.log()).Debug("artwork write failed", logging.Error(err))
	}
}

func (s *apiServer) handleLoginState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req api.LoginStateRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	s.daemon.host.SetLoginState(req.LoggedIn)
	w.WriteHeader(http.StatusNoContent)
}

func (s *apiServer) handleNowPlaying(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req api.NowPlayingRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	if req.Item == nil {
		s.daemon.host.ClearNowPlaying()
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if strings.TrimSpace(req.Item.ID) == "" {
		s.writeError(w, http.StatusBadRequest, "item id is required")
		return
	}
	s.daemon.host.SetNowPlaying(req.Item.ToMediaItem(), req.PositionMs)
	w.WriteHeader(http.StatusNoContent)
}

func (s *apiServer) handleEvents(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	query := r.URL.Query()
	since, _ := strconv.ParseUint(query.Get("since"), 10, 64)
	limit, _ := strconv.Atoi(query.Get("limit"))
	wait := query.Get("wait") == "1" || strings.EqualFold(query.Get("wait"), "true")

	ctx := r.Context()
	if wait {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, eventPollLimit)
		defer cancel()
	}
	events, next, err := s.daemon.host.Events().Fetch(ctx, since, limit, wait)
	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, api.EventsResponse{Events: api.FromEvents(events), Next: next})
}

func (s *apiServer) decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody))
	if err := decoder.Decode(dst); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}

func (s *apiServer) writeLibraryError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, library.ErrNotFound):
		s.writeError(w, http.StatusNotFound, "item not found")
	case errors.Is(err, library.ErrNotSupported):
		s.writeError(w, http.StatusBadRequest, "not supported")
	case errors.Is(err, worker.ErrStopped):
		s.writeError(w, http.StatusServiceUnavailable, "library worker stopped")
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		s.writeError(w, http.StatusGatewayTimeout, "request cancelled")
	default:
		logging.ErrorWithContext(logging.WithContext(r.Context(), s.log()), "library request failed", "api_request_failed",
			logging.Error(err),
			logging.String("path", r.URL.Path),
		)
		s.writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func (s *apiServer) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log().Error("failed to encode response", logging.Error(err))
	}
}

func (s *apiServer) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}

func (s *apiServer) log() *slog.Logger {
	if s.logger != nil {
		return logging.NewComponentLogger(s.logger, "api-server")
	}
	return logging.NewNop()
}
