package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"chatshot/internal/api"
	"chatshot/internal/config"
	"chatshot/internal/logging"
	"chatshot/internal/services"
)

const (
	requestIDHeader = "X-Request-ID"
	uploadField     = "image"
	// multipartOverhead is allowed on top of the image limit for form framing.
	multipartOverhead = 1 << 20
	maxRequestIDLen   = 128
)

type apiServer struct {
	bind           string
	logger         *slog.Logger
	daemon         *Daemon
	maxUpload      int64
	requestTimeout time.Duration

	listener net.Listener
	server   *http.Server
}

func newAPIServer(cfg *config.Config, d *Daemon, logger *slog.Logger) *apiServer {
	requestTimeout := time.Duration(cfg.Server.RequestTimeoutSeconds) * time.Second
	srv := &apiServer{
		bind:           strings.TrimSpace(cfg.Server.Bind),
		logger:         logging.NewComponentLogger(logger, "api-server"),
		daemon:         d,
		maxUpload:      cfg.MaxUploadBytes(),
		requestTimeout: requestTimeout,
	}

	token := cfg.Server.APIToken
	mux := http.NewServeMux()
	mux.HandleFunc("/api/classify", authMiddleware(token, srv.handleClassify))
	mux.HandleFunc("/api/status", authMiddleware(token, srv.handleStatus))
	mux.HandleFunc("/healthz", srv.handleHealth)

	srv.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      requestTimeout + 10*time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return srv
}

func (s *apiServer) start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("api server error", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	s.logger.Info("api server listening", logging.String("address", listener.Addr().String()))
	return nil
}

func (s *apiServer) stop() {
	if s.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}
	if s.listener != nil {
		_ = s.listener.Close()
	}
}

func (s *apiServer) addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

func (s *apiServer) handleClassify(w http.ResponseWriter, r *http.Request) {
	requestID := requestIDFrom(r)
	w.Header().Set(requestIDHeader, requestID)
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, requestID, "method not allowed")
		return
	}

	ctx := services.WithRequestID(r.Context(), requestID)
	logger := logging.WithContext(ctx, s.logger)

	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload+multipartOverhead)
	data, err := readUpload(r)
	if err != nil {
		status := http.StatusBadRequest
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			status = http.StatusRequestEntityTooLarge
		}
		logger.Warn("upload rejected",
			logging.String(logging.FieldEventType, "upload_rejected"),
			logging.Int("status", status),
			logging.Error(err),
		)
		s.writeError(w, status, requestID, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(ctx, s.requestTimeout)
	defer cancel()

	result, err := s.daemon.pipeline.Classify(ctx, data)
	resp := api.FromResult(result, err)
	resp.RequestID = requestID
	status := services.HTTPStatus(err)
	logger.Info("classify request served",
		logging.Int("status", status),
		logging.String("label", resp.Label),
		logging.Bool("classified", resp.Classified),
		logging.Int64("processing_ms", resp.ProcessingMS),
	)
	s.writeJSON(w, status, resp)
}

func (s *apiServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "", "method not allowed")
		return
	}
	includeLLM := parseBool(r.URL.Query().Get("llm"))
	results := s.daemon.status(r.Context(), includeLLM)
	s.writeJSON(w, http.StatusOK, api.FromPreflight(s.daemon.pipeline.Mode(), results))
}

func (s *apiServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		s.writeError(w, http.StatusMethodNotAllowed, "", "method not allowed")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// readUpload returns the image from a multipart "image" field or the raw body.
func readUpload(r *http.Request) ([]byte, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		return io.ReadAll(r.Body)
	}
	file, _, err := r.FormFile(uploadField)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, fmt.Errorf("multipart field %q is required", uploadField)
		}
		return nil, fmt.Errorf("read multipart upload: %w", err)
	}
	defer file.Close()
	return io.ReadAll(file)
}

func requestIDFrom(r *http.Request) string {
	id := strings.TrimSpace(r.Header.Get(requestIDHeader))
	if id == "" || len(id) > maxRequestIDLen {
		return uuid.NewString()
	}
	return id
}

func parseBool(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes":
		return true
	}
	return false
}

func (s *apiServer) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("failed to encode response", logging.Error(err))
	}
}

func (s *apiServer) writeError(w http.ResponseWriter, status int, requestID, message string) {
	s.writeJSON(w, status, api.ErrorResponse{RequestID: requestID, Error: message})
}
