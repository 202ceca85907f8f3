package server

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/gorilla/mux"
	"github.com/iAm-AliHaider/real-estate-investment-calculator/internal/auth"
	"github.com/iAm-AliHaider/real-estate-investment-calculator/internal/calculator"
	"github.com/iAm-AliHaider/real-estate-investment-calculator/internal/comparison"
	"github.com/iAm-AliHaider/real-estate-investment-calculator/internal/currency"
	"github.com/iAm-AliHaider/real-estate-investment-calculator/internal/form"
	"github.com/iAm-AliHaider/real-estate-investment-calculator/internal/scenario"
	"github.com/iAm-AliHaider/real-estate-investment-calculator/internal/storage"
	"github.com/iAm-AliHaider/real-estate-investment-calculator/internal/workspace"
	"github.com/iAm-AliHaider/real-estate-investment-calculator/pkg/constants"
	"github.com/iAm-AliHaider/real-estate-investment-calculator/pkg/loans"
	"github.com/iAm-AliHaider/real-estate-investment-calculator/pkg/validation"
	"go.uber.org/zap"
)

// userWorkspace serializes access to one user's workspace.
type userWorkspace struct {
	mu sync.Mutex
	ws *workspace.Workspace
}

func (h *handler) workspaceFor(session auth.Session) (*userWorkspace, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	email := session.User.Email
	if uw, ok := h.workspaces[email]; ok {
		return uw, nil
	}

	logger := h.logger.With(zap.String("user", email))
	store, err := storage.Open[scenario.NamedScenario](h.store, constants.ScenarioStorageKey+"/"+email)
	if err != nil {
		return nil, fmt.Errorf("failed to open scenario storage: %w", err)
	}
	registry := scenario.NewRegistry(logger, store, scenario.PresetsFor(h.variant))
	uw := &userWorkspace{ws: workspace.New(logger, registry, h.variant)}
	h.workspaces[email] = uw

	logger.Info("workspace created",
		zap.String("op", "server.workspaceFor"),
		zap.String("variant", string(h.variant)),
	)
	return uw, nil
}

// withWorkspace runs fn with the caller's workspace locked.
func (h *handler) withWorkspace(w http.ResponseWriter, r *http.Request, op string, fn func(ws *workspace.Workspace)) {
	session, ok := auth.FromContext(r.Context())
	if !ok {
		h.respondErrorWithOp(w, http.StatusUnauthorized, "missing session", op)
		return
	}
	uw, err := h.workspaceFor(session)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusInternalServerError, err.Error(), op)
		return
	}
	uw.mu.Lock()
	defer uw.mu.Unlock()
	fn(uw.ws)
}

type stateResponse struct {
	workspace.State
	Validation form.Validation `json:"validation"`
	ShareLink  string          `json:"shareLink"`
}

func (h *handler) writeState(w http.ResponseWriter, r *http.Request, status int, ws *workspace.Workspace) {
	h.writeJSON(w, status, stateResponse{
		State:      ws.State(),
		Validation: ws.Validate(),
		ShareLink:  ws.ShareLink(pageURL(r, "")),
	})
}

func (h *handler) handleState(w http.ResponseWriter, r *http.Request) {
	h.withWorkspace(w, r, "server.handleState", func(ws *workspace.Workspace) {
		if ws.LoadQuery(r.URL.Query()) {
			h.logger.Debug("applied shared fields",
				zap.String("op", "server.handleState"),
			)
		}
		h.writeState(w, r, http.StatusOK, ws)
	})
}

// handleSetFields applies a field map. A single field derives the financing
// complement like a form edit; several fields are applied verbatim.
func (h *handler) handleSetFields(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleSetFields"

	var req struct {
		Fields form.Fields `json:"fields"`
	}
	if !h.decodeJSON(w, r, &req, op) {
		return
	}

	h.withWorkspace(w, r, op, func(ws *workspace.Workspace) {
		for key := range req.Fields {
			if !ws.Variant().HasKey(key) {
				h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("%v: %s", form.ErrUnknownField, key), op)
				return
			}
		}
		if len(req.Fields) == 1 {
			for key, value := range req.Fields {
				if err := ws.SetField(key, value); err != nil {
					h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
					return
				}
			}
		} else {
			ws.SetFields(req.Fields)
		}
		h.writeState(w, r, http.StatusOK, ws)
	})
}

func (h *handler) handleApplyPreset(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleApplyPreset"

	var req struct {
		Name string `json:"name"`
	}
	if !h.decodeJSON(w, r, &req, op) {
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		h.respondErrorWithOp(w, http.StatusBadRequest, "preset name is required", op)
		return
	}

	h.withWorkspace(w, r, op, func(ws *workspace.Workspace) {
		ws.ApplyPreset(req.Name)
		h.writeState(w, r, http.StatusOK, ws)
	})
}

func (h *handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleSubmit"

	h.withWorkspace(w, r, op, func(ws *workspace.Workspace) {
		result, err := ws.Submit()
		if err != nil {
			var validationErr *form.ValidationError
			if errors.As(err, &validationErr) {
				h.writeJSON(w, http.StatusBadRequest, calculateResponse{
					Valid:       false,
					Message:     form.SummaryMessage,
					FieldErrors: validationErr.FieldErrors,
				})
				return
			}
			h.respondErrorWithOp(w, http.StatusInternalServerError, err.Error(), op)
			return
		}
		h.writeJSON(w, http.StatusOK, calculateResponse{Result: &result, Valid: true})
	})
}

func (h *handler) handleReset(w http.ResponseWriter, r *http.Request) {
	h.withWorkspace(w, r, "server.handleReset", func(ws *workspace.Workspace) {
		ws.Reset()
		h.writeState(w, r, http.StatusOK, ws)
	})
}

func (h *handler) handleListScenarios(w http.ResponseWriter, r *http.Request) {
	h.withWorkspace(w, r, "server.handleListScenarios", func(ws *workspace.Workspace) {
		h.writeJSON(w, http.StatusOK, map[string]interface{}{
			"active":  ws.Active(),
			"presets": ws.Registry().Presets(),
			"custom":  ws.Registry().Custom(),
		})
	})
}

type scenarioRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func scenarioStatus(err error) int {
	switch {
	case errors.Is(err, scenario.ErrEmptyName):
		return http.StatusBadRequest
	case errors.Is(err, scenario.ErrDuplicateName):
		return http.StatusConflict
	case errors.Is(err, scenario.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func (h *handler) handleCreateScenario(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleCreateScenario"

	var req scenarioRequest
	if !h.decodeJSON(w, r, &req, op) {
		return
	}
	h.withWorkspace(w, r, op, func(ws *workspace.Workspace) {
		created, err := ws.CreateScenario(req.Name, req.Description)
		if err != nil {
			h.respondErrorWithOp(w, scenarioStatus(err), err.Error(), op)
			return
		}
		h.writeJSON(w, http.StatusCreated, created)
	})
}

func (h *handler) handleGetScenario(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleGetScenario"

	id := mux.Vars(r)["id"]
	h.withWorkspace(w, r, op, func(ws *workspace.Workspace) {
		s, err := ws.Registry().Get(id)
		if err != nil {
			h.respondErrorWithOp(w, scenarioStatus(err), err.Error(), op)
			return
		}
		h.writeJSON(w, http.StatusOK, s)
	})
}

func (h *handler) handleUpdateScenario(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleUpdateScenario"

	var req scenarioRequest
	if !h.decodeJSON(w, r, &req, op) {
		return
	}
	id := mux.Vars(r)["id"]
	h.withWorkspace(w, r, op, func(ws *workspace.Workspace) {
		updated, err := ws.UpdateScenario(id, req.Name, req.Description)
		if err != nil {
			h.respondErrorWithOp(w, scenarioStatus(err), err.Error(), op)
			return
		}
		h.writeJSON(w, http.StatusOK, updated)
	})
}

func (h *handler) handleDeleteScenario(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleDeleteScenario"

	id := mux.Vars(r)["id"]
	h.withWorkspace(w, r, op, func(ws *workspace.Workspace) {
		if err := ws.DeleteScenario(id); err != nil {
			h.respondErrorWithOp(w, scenarioStatus(err), err.Error(), op)
			return
		}
		h.writeState(w, r, http.StatusOK, ws)
	})
}

func (h *handler) handleAddComparison(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleAddComparison"

	h.withWorkspace(w, r, op, func(ws *workspace.Workspace) {
		entry, err := ws.AddToComparison()
		if err != nil {
			status := http.StatusInternalServerError
			if errors.Is(err, workspace.ErrNoResult) {
				status = http.StatusConflict
			}
			h.respondErrorWithOp(w, status, err.Error(), op)
			return
		}
		h.writeJSON(w, http.StatusOK, entry)
	})
}

func (h *handler) handleToggleComparison(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleToggleComparison"

	var req struct {
		Label string `json:"label"`
	}
	if !h.decodeJSON(w, r, &req, op) {
		return
	}
	h.withWorkspace(w, r, op, func(ws *workspace.Workspace) {
		selected, err := ws.ToggleComparison(req.Label)
		if err != nil {
			h.respondErrorWithOp(w, http.StatusNotFound, err.Error(), op)
			return
		}
		h.writeJSON(w, http.StatusOK, map[string]interface{}{
			"label":    req.Label,
			"selected": selected,
		})
	})
}

type exportFormat struct {
	contentType string
	extension   string
	write       func(e *comparison.Engine, buf *bytes.Buffer, c currency.Currency) error
}

var exportFormats = map[string]exportFormat{
	constants.ExportFormatCSV: {"text/csv; charset=utf-8", "csv", func(e *comparison.Engine, buf *bytes.Buffer, c currency.Currency) error {
		return e.WriteCSV(buf, c)
	}},
	constants.ExportFormatPDF: {"application/pdf", "pdf", func(e *comparison.Engine, buf *bytes.Buffer, c currency.Currency) error {
		return e.WritePDF(buf, c)
	}},
	constants.ExportFormatHTML: {"text/html; charset=utf-8", "html", func(e *comparison.Engine, buf *bytes.Buffer, c currency.Currency) error {
		return e.RenderHTML(buf, c)
	}},
}

func (h *handler) handleExportComparison(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleExportComparison"

	name, err := validation.NormalizeExportFormat(r.URL.Query().Get("format"))
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return
	}
	format := exportFormats[name]
	c, err := currency.Lookup(r.URL.Query().Get("currency"))
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return
	}

	h.withWorkspace(w, r, op, func(ws *workspace.Workspace) {
		var buf bytes.Buffer
		if err := format.write(ws.Comparison(), &buf, c); err != nil {
			status := http.StatusInternalServerError
			if errors.Is(err, comparison.ErrNothingSelected) {
				status = http.StatusBadRequest
			}
			h.respondErrorWithOp(w, status, err.Error(), op)
			return
		}
		w.Header().Set("Content-Type", format.contentType)
		w.Header().Set("Content-Disposition",
			fmt.Sprintf(`attachment; filename="scenario-comparison-%s.%s"`, strings.ToLower(c.Code), format.extension))
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write(buf.Bytes()); err != nil {
			h.logger.Warn("failed to write export",
				zap.String("op", op),
				zap.Error(err),
			)
		}
	})
}

func (h *handler) handleWorkspaceShare(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleWorkspaceShare"

	var req struct {
		PageURL string `json:"pageUrl"`
	}
	if !h.decodeJSON(w, r, &req, op) {
		return
	}
	h.withWorkspace(w, r, op, func(ws *workspace.Workspace) {
		h.writeJSON(w, http.StatusOK, map[string]string{
			"link": ws.ShareLink(pageURL(r, req.PageURL)),
		})
	})
}

type scheduleResponse struct {
	LoanAmount         float64         `json:"loanAmount"`
	AnnualInterestRate float64         `json:"annualInterestRate"`
	TermMonths         int             `json:"termMonths"`
	Summary            loans.Summary   `json:"summary"`
	Payments           []loans.Payment `json:"payments"`
}

// handleSchedule returns the repayment plan of the loan share of the current fields.
func (h *handler) handleSchedule(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleSchedule"

	h.withWorkspace(w, r, op, func(ws *workspace.Workspace) {
		result, validation := form.Evaluate(ws.Fields(), ws.Variant())
		if !validation.Valid {
			h.writeJSON(w, http.StatusBadRequest, calculateResponse{
				Valid:       false,
				Message:     form.SummaryMessage,
				FieldErrors: validation.FieldErrors,
			})
			return
		}

		input, assumptions := form.Inputs(ws.Fields(), ws.Variant())
		term := loans.TermMonths(input.Duration)
		payments, err := loans.NewAmortizationScheduleGenerator(h.logger).GenerateSchedule(result.LoanAmount, assumptions.AnnualInterestRate, term)
		if err != nil {
			h.respondErrorWithOp(w, http.StatusUnprocessableEntity, err.Error(), op)
			return
		}
		if payments == nil {
			payments = []loans.Payment{}
		}

		h.writeJSON(w, http.StatusOK, scheduleResponse{
			LoanAmount:         result.LoanAmount,
			AnnualInterestRate: assumptions.AnnualInterestRate,
			TermMonths:         term,
			Summary:            loans.Summarize(payments),
			Payments:           payments,
		})
	})
}

type dashboardEntry struct {
	Label    string             `json:"label"`
	Selected bool               `json:"selected"`
	Metrics  map[string]float64 `json:"metrics"`
}

func (h *handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	session, _ := auth.FromContext(r.Context())
	h.withWorkspace(w, r, "server.handleDashboard", func(ws *workspace.Workspace) {
		engine := ws.Comparison()
		entries := make([]dashboardEntry, 0, engine.Len())
		for _, entry := range engine.Entries() {
			metrics := make(map[string]float64, len(calculator.SummaryMetrics))
			for _, key := range calculator.SummaryMetrics {
				if v, ok := entry.Result.Value(key); ok {
					metrics[key] = v
				}
			}
			entries = append(entries, dashboardEntry{
				Label:    entry.Label,
				Selected: engine.IsSelected(entry.Label),
				Metrics:  metrics,
			})
		}
		h.writeJSON(w, http.StatusOK, map[string]interface{}{
			"user":           session.User,
			"activeScenario": ws.Active(),
			"savedScenarios": len(ws.Registry().Custom()),
			"comparison":     entries,
		})
	})
}
