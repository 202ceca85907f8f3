package server

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/iAm-AliHaider/real-estate-investment-calculator/internal/auth"
	"github.com/iAm-AliHaider/real-estate-investment-calculator/internal/calculator"
	"github.com/iAm-AliHaider/real-estate-investment-calculator/internal/currency"
	"github.com/iAm-AliHaider/real-estate-investment-calculator/internal/form"
	"github.com/iAm-AliHaider/real-estate-investment-calculator/internal/scenario"
	"github.com/iAm-AliHaider/real-estate-investment-calculator/internal/share"
	"github.com/iAm-AliHaider/real-estate-investment-calculator/internal/storage"
	"github.com/iAm-AliHaider/real-estate-investment-calculator/pkg/constants"
	"go.uber.org/zap"
)

//go:embed static/*
var staticFiles embed.FS

type handler struct {
	logger         *zap.Logger
	maxRequestSize int64
	version        string
	variant        form.Variant
	auth           auth.Authenticator
	store          *storage.Opener

	mu         sync.Mutex
	workspaces map[string]*userWorkspace
}

// Option customizes the handler built by NewHandler.
type Option func(*handler)

// WithAuthenticator sets the backend that gates the evaluation and dashboard routes.
func WithAuthenticator(a auth.Authenticator) Option {
	return func(h *handler) { h.auth = a }
}

// WithStorage sets where each user's saved scenarios are persisted.
func WithStorage(o *storage.Opener) Option {
	return func(h *handler) { h.store = o }
}

// WithVariant sets the formula shape of the evaluation workspaces.
func WithVariant(v form.Variant) Option {
	return func(h *handler) {
		if v != "" {
			h.variant = v
		}
	}
}

// NewHandler constructs the HTTP handler that serves the web UI and calculator API.
func NewHandler(logger *zap.Logger, maxRequestSize int64, version string, opts ...Option) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	if maxRequestSize <= 0 {
		maxRequestSize = constants.DefaultMaxRequestSizeBytes
	}

	trimmedVersion := strings.TrimSpace(version)
	if trimmedVersion == "" {
		trimmedVersion = "dev"
	}

	h := &handler{
		logger:         logger,
		maxRequestSize: maxRequestSize,
		version:        trimmedVersion,
		variant:        form.VariantFull,
		workspaces:     make(map[string]*userWorkspace),
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.auth == nil {
		h.auth = auth.NewService(logger, auth.Config{})
	}
	if h.store == nil {
		store, err := storage.NewOpener(storage.Config{})
		if err != nil {
			panic(fmt.Sprintf("failed to prepare in-memory storage: %v", err))
		}
		h.store = store
	}

	r := mux.NewRouter()
	r.Use(h.logRequests)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/version", h.handleVersion).Methods(http.MethodGet)
	api.HandleFunc("/presets", h.handlePresets).Methods(http.MethodGet)
	api.HandleFunc("/metrics", h.handleMetrics).Methods(http.MethodGet)
	api.HandleFunc("/currencies", h.handleCurrencies).Methods(http.MethodGet)
	api.HandleFunc("/calculate", h.handleCalculate).Methods(http.MethodPost)
	api.HandleFunc("/share", h.handleShare).Methods(http.MethodPost)
	api.HandleFunc("/auth/login", h.handleLogin).Methods(http.MethodPost)
	api.HandleFunc("/auth/register", h.handleRegister).Methods(http.MethodPost)
	api.HandleFunc("/auth/logout", h.handleLogout).Methods(http.MethodPost)

	gated := auth.Middleware(h.auth, logger)

	evaluation := api.PathPrefix("/evaluation").Subrouter()
	evaluation.Use(gated)
	evaluation.HandleFunc("", h.handleState).Methods(http.MethodGet)
	evaluation.HandleFunc("/fields", h.handleSetFields).Methods(http.MethodPatch)
	evaluation.HandleFunc("/preset", h.handleApplyPreset).Methods(http.MethodPost)
	evaluation.HandleFunc("/calculate", h.handleSubmit).Methods(http.MethodPost)
	evaluation.HandleFunc("/reset", h.handleReset).Methods(http.MethodPost)
	evaluation.HandleFunc("/scenarios", h.handleListScenarios).Methods(http.MethodGet)
	evaluation.HandleFunc("/scenarios", h.handleCreateScenario).Methods(http.MethodPost)
	evaluation.HandleFunc("/scenarios/{id}", h.handleGetScenario).Methods(http.MethodGet)
	evaluation.HandleFunc("/scenarios/{id}", h.handleUpdateScenario).Methods(http.MethodPut)
	evaluation.HandleFunc("/scenarios/{id}", h.handleDeleteScenario).Methods(http.MethodDelete)
	evaluation.HandleFunc("/comparison", h.handleAddComparison).Methods(http.MethodPost)
	evaluation.HandleFunc("/comparison/toggle", h.handleToggleComparison).Methods(http.MethodPost)
	evaluation.HandleFunc("/comparison/export", h.handleExportComparison).Methods(http.MethodGet)
	evaluation.HandleFunc("/share", h.handleWorkspaceShare).Methods(http.MethodPost)
	evaluation.HandleFunc("/schedule", h.handleSchedule).Methods(http.MethodGet)

	dashboard := api.PathPrefix("/dashboard").Subrouter()
	dashboard.Use(gated)
	dashboard.HandleFunc("", h.handleDashboard).Methods(http.MethodGet)

	// Static assets (web UI)
	sub, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic(fmt.Sprintf("failed to prepare embedded static files: %v", err))
	}
	r.PathPrefix("/").Handler(http.FileServer(http.FS(sub)))

	return r
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(status int) {
	s.status = status
	s.ResponseWriter.WriteHeader(status)
}

func (h *handler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		h.logger.Debug("request served",
			zap.String("op", "server.logRequests"),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

func (h *handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{
		"version": h.version,
	})
}

type presetsResponse struct {
	Variant form.Variant             `json:"variant"`
	Fields  []string                 `json:"fields"`
	Presets []scenario.NamedScenario `json:"presets"`
}

func (h *handler) handlePresets(w http.ResponseWriter, r *http.Request) {
	variant, err := h.requestVariant(r.URL.Query().Get("variant"))
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), "server.handlePresets")
		return
	}
	h.writeJSON(w, http.StatusOK, presetsResponse{
		Variant: variant,
		Fields:  variant.Keys(),
		Presets: scenario.PresetsFor(variant),
	})
}

func (h *handler) handleMetrics(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"metrics": calculator.Metrics,
		"summary": calculator.SummaryMetrics,
	})
}

func (h *handler) handleCurrencies(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"base":       currency.Base().Code,
		"currencies": currency.List(),
	})
}

type calculateRequest struct {
	Variant string      `json:"variant"`
	Fields  form.Fields `json:"fields"`
}

type calculateResponse struct {
	Result      *calculator.Result `json:"result,omitempty"`
	Valid       bool               `json:"valid"`
	Message     string             `json:"message,omitempty"`
	FieldErrors map[string]string  `json:"fieldErrors,omitempty"`
}

func (h *handler) handleCalculate(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleCalculate"

	var req calculateRequest
	if !h.decodeJSON(w, r, &req, op) {
		return
	}
	variant, err := h.requestVariant(req.Variant)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return
	}

	result, validation := form.Evaluate(req.Fields, variant)
	if !validation.Valid {
		h.writeJSON(w, http.StatusBadRequest, calculateResponse{
			Valid:       false,
			Message:     validation.Message,
			FieldErrors: validation.FieldErrors,
		})
		return
	}
	if !result.Finite() {
		h.respondErrorWithOp(w, http.StatusInternalServerError, form.ErrCalculation.Error(), op)
		return
	}
	h.writeJSON(w, http.StatusOK, calculateResponse{Result: &result, Valid: true})
}

type shareRequest struct {
	PageURL string      `json:"pageUrl"`
	Variant string      `json:"variant"`
	Fields  form.Fields `json:"fields"`
}

func (h *handler) handleShare(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleShare"

	var req shareRequest
	if !h.decodeJSON(w, r, &req, op) {
		return
	}
	variant, err := h.requestVariant(req.Variant)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{
		"link": share.BuildLink(pageURL(r, req.PageURL), req.Fields, variant),
	})
}

type credentials struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleLogin"

	var req credentials
	if !h.decodeJSON(w, r, &req, op) {
		return
	}
	session, err := h.auth.Login(req.Email, req.Password)
	if err != nil {
		h.respondErrorWithOp(w, authStatus(err), err.Error(), op)
		return
	}
	h.writeJSON(w, http.StatusOK, session)
}

func (h *handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleRegister"

	var req credentials
	if !h.decodeJSON(w, r, &req, op) {
		return
	}
	session, err := h.auth.Register(req.Username, req.Email, req.Password)
	if err != nil {
		h.respondErrorWithOp(w, authStatus(err), err.Error(), op)
		return
	}
	h.writeJSON(w, http.StatusCreated, session)
}

func (h *handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	token, ok := auth.BearerToken(r)
	if !ok {
		h.respondErrorWithOp(w, http.StatusUnauthorized, "missing bearer token", "server.handleLogout")
		return
	}
	if err := h.auth.Logout(token); err != nil {
		h.respondErrorWithOp(w, authStatus(err), err.Error(), "server.handleLogout")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func authStatus(err error) int {
	switch {
	case errors.Is(err, auth.ErrMissingCredentials):
		return http.StatusBadRequest
	case errors.Is(err, auth.ErrUserExists):
		return http.StatusConflict
	case errors.Is(err, auth.ErrInvalidCredentials), errors.Is(err, auth.ErrInvalidToken):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

func (h *handler) requestVariant(value string) (form.Variant, error) {
	if strings.TrimSpace(value) == "" {
		return h.variant, nil
	}
	return form.ParseVariant(value)
}

// pageURL picks the link base: the explicit value, else the Referer, else the
// evaluation page on the request host.
func pageURL(r *http.Request, explicit string) string {
	if s := strings.TrimSpace(explicit); s != "" {
		return s
	}
	if ref := r.Referer(); ref != "" {
		return ref
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + r.Host + "/evaluation"
}

// decodeJSON reads a size-limited JSON body. It writes the error response and
// returns false on failure. An empty body decodes to the zero value.
func (h *handler) decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}, op string) bool {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxRequestSize)
	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil || errors.Is(err, io.EOF) {
		return true
	}
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		h.respondErrorWithOp(w, http.StatusRequestEntityTooLarge,
			fmt.Sprintf("request exceeds limit of %d bytes", h.maxRequestSize), op)
		return false
	}
	h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to decode request: %v", err), op)
	return false
}

func (h *handler) respondErrorWithOp(w http.ResponseWriter, status int, msg string, op string) {
	if h.logger != nil {
		level := h.logger.Warn
		if status >= http.StatusInternalServerError {
			level = h.logger.Error
		}
		level("request failed",
			zap.String("op", op),
			zap.Int("status", status),
			zap.String("error", msg),
		)
	}

	h.writeJSON(w, status, map[string]string{"error": msg})
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil && h.logger != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}
