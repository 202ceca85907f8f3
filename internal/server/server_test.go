package server

import (
	"bytes"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/iAm-AliHaider/real-estate-investment-calculator/internal/auth"
	"github.com/iAm-AliHaider/real-estate-investment-calculator/internal/form"
	"github.com/iAm-AliHaider/real-estate-investment-calculator/internal/scenario"
	"github.com/iAm-AliHaider/real-estate-investment-calculator/pkg/constants"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func newTestHandler(t *testing.T, opts ...Option) http.Handler {
	t.Helper()
	authenticator := auth.NewService(zap.NewNop(), auth.Config{Secret: "test-secret", BcryptCost: bcrypt.MinCost})
	opts = append([]Option{WithAuthenticator(authenticator)}, opts...)
	return NewHandler(zap.NewNop(), constants.DefaultMaxRequestSizeBytes, "test", opts...)
}

func serve(handler http.Handler, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

func login(t *testing.T, handler http.Handler, email string) string {
	t.Helper()
	rr := serve(handler, http.MethodPost, "/api/auth/login", "", credentials{Email: email, Password: "secret"})
	if rr.Code != http.StatusOK {
		t.Fatalf("login failed with status %d: %s", rr.Code, rr.Body.String())
	}
	var session auth.Session
	if err := json.Unmarshal(rr.Body.Bytes(), &session); err != nil {
		t.Fatalf("failed to decode session: %v", err)
	}
	if session.Token == "" {
		t.Fatal("expected a token")
	}
	return session.Token
}

func decodeState(t *testing.T, rr *httptest.ResponseRecorder) stateResponse {
	t.Helper()
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var state stateResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &state); err != nil {
		t.Fatalf("failed to decode state: %v", err)
	}
	return state
}

func TestHandleVersion(t *testing.T) {
	handler := NewHandler(zap.NewNop(), constants.DefaultMaxRequestSizeBytes, "  v1.2.3  ")

	rr := serve(handler, http.MethodGet, "/api/version", "", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	var resp map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp["version"] != "v1.2.3" {
		t.Errorf("expected trimmed version, got %q", resp["version"])
	}
}

func TestHandleVersionDefaultsToDev(t *testing.T) {
	handler := NewHandler(nil, 0, "")

	rr := serve(handler, http.MethodGet, "/api/version", "", nil)
	if !strings.Contains(rr.Body.String(), `"dev"`) {
		t.Errorf("expected dev version, got %s", rr.Body.String())
	}
}

func TestHandlePresets(t *testing.T) {
	handler := newTestHandler(t)

	tests := []struct {
		name       string
		query      string
		wantStatus int
		wantCount  int
		wantFirst  string
	}{
		{name: "default variant", wantStatus: http.StatusOK, wantCount: 4, wantFirst: scenario.PresetConservative},
		{name: "simplified", query: "?variant=simplified", wantStatus: http.StatusOK, wantCount: 6, wantFirst: scenario.CaseWorst},
		{name: "unknown variant", query: "?variant=hybrid", wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := serve(handler, http.MethodGet, "/api/presets"+tt.query, "", nil)
			if rr.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d: %s", tt.wantStatus, rr.Code, rr.Body.String())
			}
			if tt.wantStatus != http.StatusOK {
				return
			}
			var resp presetsResponse
			if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if len(resp.Presets) != tt.wantCount || resp.Presets[0].Name != tt.wantFirst {
				t.Errorf("unexpected presets: %+v", resp.Presets)
			}
			if len(resp.Fields) != len(resp.Variant.Keys()) {
				t.Errorf("fields %v do not match variant %s", resp.Fields, resp.Variant)
			}
		})
	}
}

func TestHandleMetricsAndCurrencies(t *testing.T) {
	handler := newTestHandler(t)

	rr := serve(handler, http.MethodGet, "/api/metrics", "", nil)
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), `"netProfit"`) {
		t.Errorf("unexpected metrics response %d: %s", rr.Code, rr.Body.String())
	}

	rr = serve(handler, http.MethodGet, "/api/currencies", "", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	var resp struct {
		Base       string `json:"base"`
		Currencies []struct {
			Code string `json:"code"`
		} `json:"currencies"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Base != "SAR" || len(resp.Currencies) != 5 {
		t.Errorf("unexpected currencies: %+v", resp)
	}
}

func TestHandleCalculate(t *testing.T) {
	handler := newTestHandler(t)

	t.Run("valid fields", func(t *testing.T) {
		rr := serve(handler, http.MethodPost, "/api/calculate", "", calculateRequest{Fields: form.DefaultFields()})
		if rr.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
		}
		var resp calculateResponse
		if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if !resp.Valid || resp.Result == nil {
			t.Fatalf("expected a valid result, got %+v", resp)
		}
		if resp.Result.TotalRevenue != 7560000 {
			t.Errorf("TotalRevenue = %v, want 7560000", resp.Result.TotalRevenue)
		}
	})

	t.Run("invalid fields", func(t *testing.T) {
		fields := form.DefaultFields()
		fields[form.FieldNumberOfUnits] = "0"
		rr := serve(handler, http.MethodPost, "/api/calculate", "", calculateRequest{Fields: fields})
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("expected status 400, got %d", rr.Code)
		}
		var resp calculateResponse
		if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if resp.Valid || resp.Result != nil || resp.FieldErrors[form.FieldNumberOfUnits] == "" {
			t.Errorf("expected numberOfUnits error, got %+v", resp)
		}
		if resp.Message != form.SummaryMessage {
			t.Errorf("Message = %q", resp.Message)
		}
	})

	t.Run("long duration and high rate", func(t *testing.T) {
		fields := form.DefaultFields()
		fields[form.FieldDuration] = "120000"
		fields[form.FieldAnnualInterestRate] = "5000"
		rr := serve(handler, http.MethodPost, "/api/calculate", "", calculateRequest{Fields: fields})
		if rr.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
		}
		var resp calculateResponse
		if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if resp.Result == nil || resp.Result.EstimatedInterest <= 0 {
			t.Errorf("expected positive estimated interest, got %+v", resp.Result)
		}
	})

	t.Run("malformed body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/calculate", strings.NewReader("{not json"))
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("expected status 400, got %d", rr.Code)
		}
	})
}

func TestHandleCalculateRejectsOversizeBody(t *testing.T) {
	handler := NewHandler(zap.NewNop(), 64, "test")

	fields := form.DefaultFields()
	fields[form.FieldOperationalCost] = strings.Repeat("9", 128)
	rr := serve(handler, http.MethodPost, "/api/calculate", "", calculateRequest{Fields: fields})
	if rr.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected status 413, got %d: %s", rr.Code, rr.Body.String())
	}
}

func TestHandleShare(t *testing.T) {
	handler := newTestHandler(t)

	rr := serve(handler, http.MethodPost, "/api/share", "", shareRequest{
		PageURL: "https://calc.example/evaluation?old=1",
		Fields:  form.Fields{form.FieldNumberOfUnits: "12", form.FieldDuration: "18"},
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var resp map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	want := "https://calc.example/evaluation?numberOfUnits=12&duration=18"
	if resp["link"] != want {
		t.Errorf("link = %q, want %q", resp["link"], want)
	}
}

func TestAuthEndpoints(t *testing.T) {
	handler := newTestHandler(t)

	rr := serve(handler, http.MethodPost, "/api/auth/login", "", credentials{Email: "a@b.c"})
	if rr.Code != http.StatusBadRequest {
		t.Errorf("missing password: expected 400, got %d", rr.Code)
	}

	rr = serve(handler, http.MethodPost, "/api/auth/register", "", credentials{Username: "ana", Email: "ana@example.com", Password: "pw"})
	if rr.Code != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	rr = serve(handler, http.MethodPost, "/api/auth/register", "", credentials{Username: "ana", Email: "ana@example.com", Password: "pw"})
	if rr.Code != http.StatusConflict {
		t.Errorf("duplicate register: expected 409, got %d", rr.Code)
	}
	rr = serve(handler, http.MethodPost, "/api/auth/login", "", credentials{Email: "ana@example.com", Password: "wrong"})
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("wrong password: expected 401, got %d", rr.Code)
	}

	token := login(t, handler, "someone@example.com")
	if rr := serve(handler, http.MethodGet, "/api/dashboard", token, nil); rr.Code != http.StatusOK {
		t.Fatalf("dashboard before logout: expected 200, got %d", rr.Code)
	}
	if rr := serve(handler, http.MethodPost, "/api/auth/logout", token, nil); rr.Code != http.StatusNoContent {
		t.Fatalf("logout: expected 204, got %d", rr.Code)
	}
	if rr := serve(handler, http.MethodGet, "/api/dashboard", token, nil); rr.Code != http.StatusUnauthorized {
		t.Errorf("dashboard after logout: expected 401, got %d", rr.Code)
	}
	if rr := serve(handler, http.MethodPost, "/api/auth/logout", "", nil); rr.Code != http.StatusUnauthorized {
		t.Errorf("logout without token: expected 401, got %d", rr.Code)
	}
}

func TestGatedRoutesRequireToken(t *testing.T) {
	handler := newTestHandler(t)

	paths := []string{"/api/evaluation", "/api/evaluation/scenarios", "/api/dashboard"}
	for _, path := range paths {
		t.Run(path, func(t *testing.T) {
			rr := serve(handler, http.MethodGet, path, "", nil)
			if rr.Code != http.StatusUnauthorized {
				t.Fatalf("expected status 401, got %d", rr.Code)
			}
			if rr.Header().Get("WWW-Authenticate") == "" {
				t.Error("expected WWW-Authenticate header")
			}
		})
	}

	rr := serve(handler, http.MethodGet, "/api/evaluation", "not-a-token", nil)
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("bad token: expected 401, got %d", rr.Code)
	}
}

func TestEvaluationState(t *testing.T) {
	handler := newTestHandler(t)
	token := login(t, handler, "state@example.com")

	state := decodeState(t, serve(handler, http.MethodGet, "/api/evaluation", token, nil))
	if state.Active != scenario.PresetBalanced || state.Variant != form.VariantFull {
		t.Errorf("unexpected initial state: %+v", state.State)
	}
	if !state.Validation.Valid || state.Result != nil {
		t.Errorf("expected valid fields and no result, got %+v", state)
	}
	if !strings.HasPrefix(state.ShareLink, "http://example.com/evaluation?numberOfUnits=20") {
		t.Errorf("unexpected share link %q", state.ShareLink)
	}

	state = decodeState(t, serve(handler, http.MethodGet, "/api/evaluation?numberOfUnits=12&costPerUnit=300000", token, nil))
	if state.Active != scenario.PresetCustom {
		t.Errorf("Active = %q, want Custom", state.Active)
	}
	if state.Fields[form.FieldNumberOfUnits] != "12" || state.Fields[form.FieldCostPerUnit] != "300000" {
		t.Errorf("shared fields not applied: %v", state.Fields)
	}
}

func TestEvaluationFieldsAndPreset(t *testing.T) {
	handler := newTestHandler(t)
	token := login(t, handler, "fields@example.com")

	state := decodeState(t, serve(handler, http.MethodPatch, "/api/evaluation/fields", token,
		map[string]form.Fields{"fields": {form.FieldLoanToValue: "0.7"}}))
	if state.Fields[form.FieldEquityContribution] != "0.30" {
		t.Errorf("equity complement = %q, want 0.30", state.Fields[form.FieldEquityContribution])
	}

	state = decodeState(t, serve(handler, http.MethodPatch, "/api/evaluation/fields", token,
		map[string]form.Fields{"fields": {form.FieldLoanToValue: "0.9", form.FieldEquityContribution: "0.9"}}))
	if state.Validation.Valid || state.Validation.FieldErrors[form.FieldLoanToValue] == "" {
		t.Errorf("expected financing error, got %+v", state.Validation)
	}

	rr := serve(handler, http.MethodPost, "/api/evaluation/calculate", token, nil)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("calculate with invalid fields: expected 400, got %d", rr.Code)
	}

	rr = serve(handler, http.MethodPatch, "/api/evaluation/fields", token,
		map[string]form.Fields{"fields": {"floors": "3"}})
	if rr.Code != http.StatusBadRequest {
		t.Errorf("unknown field: expected 400, got %d", rr.Code)
	}

	state = decodeState(t, serve(handler, http.MethodPost, "/api/evaluation/preset", token,
		map[string]string{"name": scenario.PresetAggressive}))
	if state.Active != scenario.PresetAggressive || state.Fields[form.FieldNumberOfUnits] != "30" {
		t.Errorf("preset not applied: %+v", state.State)
	}

	rr = serve(handler, http.MethodPost, "/api/evaluation/preset", token, map[string]string{"name": " "})
	if rr.Code != http.StatusBadRequest {
		t.Errorf("blank preset: expected 400, got %d", rr.Code)
	}

	state = decodeState(t, serve(handler, http.MethodPost, "/api/evaluation/reset", token, nil))
	if state.Active != scenario.PresetBalanced || state.Fields[form.FieldNumberOfUnits] != "20" {
		t.Errorf("reset did not restore Balanced: %+v", state.State)
	}
}

func TestEvaluationSchedule(t *testing.T) {
	handler := newTestHandler(t)
	token := login(t, handler, "schedule@example.com")

	rr := serve(handler, http.MethodGet, "/api/evaluation/schedule", token, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var resp scheduleResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode schedule: %v", err)
	}
	if math.Abs(resp.LoanAmount-5430000) > 0.01 || resp.TermMonths != 24 || resp.AnnualInterestRate != 8 {
		t.Errorf("unexpected loan terms: %+v", resp)
	}
	if len(resp.Payments) != 24 {
		t.Fatalf("expected 24 payments, got %d", len(resp.Payments))
	}
	if math.Abs(resp.Summary.TotalPrincipal-5430000) > 0.01 || resp.Summary.TotalInterest <= 0 {
		t.Errorf("unexpected summary: %+v", resp.Summary)
	}

	tests := []struct {
		name         string
		fields       form.Fields
		wantStatus   int
		wantPayments int
	}{
		{"invalid fields", form.Fields{form.FieldDuration: "0"}, http.StatusBadRequest, 0},
		{"term beyond limit", form.Fields{form.FieldDuration: "120000"}, http.StatusUnprocessableEntity, 0},
		{"all equity", form.Fields{form.FieldDuration: "24", form.FieldLoanToValue: "0", form.FieldEquityContribution: "1"}, http.StatusOK, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decodeState(t, serve(handler, http.MethodPatch, "/api/evaluation/fields", token,
				map[string]form.Fields{"fields": tt.fields}))

			rr := serve(handler, http.MethodGet, "/api/evaluation/schedule", token, nil)
			if rr.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d: %s", tt.wantStatus, rr.Code, rr.Body.String())
			}
			if tt.wantStatus != http.StatusOK {
				return
			}
			var resp scheduleResponse
			if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
				t.Fatalf("failed to decode schedule: %v", err)
			}
			if len(resp.Payments) != tt.wantPayments {
				t.Errorf("expected %d payments, got %d", tt.wantPayments, len(resp.Payments))
			}
		})
	}
}

func TestEvaluationComparisonAndExport(t *testing.T) {
	handler := newTestHandler(t)
	token := login(t, handler, "compare@example.com")

	rr := serve(handler, http.MethodPost, "/api/evaluation/comparison", token, nil)
	if rr.Code != http.StatusConflict {
		t.Fatalf("compare without result: expected 409, got %d", rr.Code)
	}

	rr = serve(handler, http.MethodPost, "/api/evaluation/calculate", token, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("calculate: expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	rr = serve(handler, http.MethodPost, "/api/evaluation/comparison", token, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("compare: expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	tests := []struct {
		format      string
		contentType string
		prefix      string
	}{
		{format: "csv", contentType: "text/csv", prefix: "Metric,Balanced"},
		{format: "pdf", contentType: "application/pdf", prefix: "%PDF-"},
		{format: "html", contentType: "text/html", prefix: "<h2>Scenario Comparison (USD)</h2>"},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			rr := serve(handler, http.MethodGet, "/api/evaluation/comparison/export?format="+tt.format+"&currency=usd", token, nil)
			if rr.Code != http.StatusOK {
				t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
			}
			if !strings.HasPrefix(rr.Header().Get("Content-Type"), tt.contentType) {
				t.Errorf("Content-Type = %q", rr.Header().Get("Content-Type"))
			}
			if !strings.Contains(rr.Header().Get("Content-Disposition"), "scenario-comparison-usd."+tt.format) {
				t.Errorf("Content-Disposition = %q", rr.Header().Get("Content-Disposition"))
			}
			if !strings.HasPrefix(rr.Body.String(), tt.prefix) {
				t.Errorf("body does not start with %q: %.60s", tt.prefix, rr.Body.String())
			}
		})
	}

	rr = serve(handler, http.MethodGet, "/api/evaluation/comparison/export?format=xml", token, nil)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("unknown format: expected 400, got %d", rr.Code)
	}
	rr = serve(handler, http.MethodGet, "/api/evaluation/comparison/export?currency=JPY", token, nil)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("unknown currency: expected 400, got %d", rr.Code)
	}

	rr = serve(handler, http.MethodPost, "/api/evaluation/comparison/toggle", token, map[string]string{"label": "Nope"})
	if rr.Code != http.StatusNotFound {
		t.Errorf("toggle unknown label: expected 404, got %d", rr.Code)
	}
	rr = serve(handler, http.MethodPost, "/api/evaluation/comparison/toggle", token, map[string]string{"label": "Balanced"})
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), `"selected":false`) {
		t.Fatalf("toggle: unexpected response %d: %s", rr.Code, rr.Body.String())
	}

	rr = serve(handler, http.MethodGet, "/api/evaluation/comparison/export?format=csv", token, nil)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("export with nothing selected: expected 400, got %d", rr.Code)
	}

	rr = serve(handler, http.MethodGet, "/api/dashboard", token, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("dashboard: expected 200, got %d", rr.Code)
	}
	var dashboard struct {
		User       auth.User        `json:"user"`
		Active     string           `json:"activeScenario"`
		Saved      int              `json:"savedScenarios"`
		Comparison []dashboardEntry `json:"comparison"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &dashboard); err != nil {
		t.Fatalf("failed to decode dashboard: %v", err)
	}
	if dashboard.User.Email != "compare@example.com" || dashboard.Active != scenario.PresetBalanced {
		t.Errorf("unexpected dashboard: %+v", dashboard)
	}
	if len(dashboard.Comparison) != 1 || dashboard.Comparison[0].Selected {
		t.Fatalf("unexpected comparison entries: %+v", dashboard.Comparison)
	}
	if _, ok := dashboard.Comparison[0].Metrics["netProfit"]; !ok {
		t.Errorf("expected netProfit in dashboard metrics, got %v", dashboard.Comparison[0].Metrics)
	}
}

func TestEvaluationScenarioLifecycle(t *testing.T) {
	handler := newTestHandler(t)
	token := login(t, handler, "crud@example.com")

	rr := serve(handler, http.MethodPost, "/api/evaluation/scenarios", token, scenarioRequest{Name: "Tower"})
	if rr.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	var created scenario.NamedScenario
	if err := json.Unmarshal(rr.Body.Bytes(), &created); err != nil {
		t.Fatalf("failed to decode scenario: %v", err)
	}
	if created.ID == "" || created.Description != constants.DefaultScenarioDescription {
		t.Errorf("unexpected created scenario: %+v", created)
	}

	conflicts := []scenarioRequest{{Name: "tower"}, {Name: "Balanced"}}
	for _, req := range conflicts {
		if rr := serve(handler, http.MethodPost, "/api/evaluation/scenarios", token, req); rr.Code != http.StatusConflict {
			t.Errorf("create %q: expected 409, got %d", req.Name, rr.Code)
		}
	}
	if rr := serve(handler, http.MethodPost, "/api/evaluation/scenarios", token, scenarioRequest{}); rr.Code != http.StatusBadRequest {
		t.Errorf("create blank: expected 400, got %d", rr.Code)
	}

	rr = serve(handler, http.MethodPut, "/api/evaluation/scenarios/"+created.ID, token, scenarioRequest{Name: "Tower B", Description: "second phase"})
	if rr.Code != http.StatusOK {
		t.Fatalf("update: expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if rr := serve(handler, http.MethodPut, "/api/evaluation/scenarios/missing", token, scenarioRequest{Name: "X"}); rr.Code != http.StatusNotFound {
		t.Errorf("update missing: expected 404, got %d", rr.Code)
	}

	rr = serve(handler, http.MethodGet, "/api/evaluation/scenarios/"+created.ID, token, nil)
	var fetched scenario.NamedScenario
	if err := json.Unmarshal(rr.Body.Bytes(), &fetched); err != nil || rr.Code != http.StatusOK {
		t.Fatalf("get: status %d, error %v", rr.Code, err)
	}
	if fetched.Name != "Tower B" || fetched.Description != "second phase" {
		t.Errorf("unexpected fetched scenario: %+v", fetched)
	}
	if rr := serve(handler, http.MethodGet, "/api/evaluation/scenarios/missing", token, nil); rr.Code != http.StatusNotFound {
		t.Errorf("get missing: expected 404, got %d", rr.Code)
	}

	rr = serve(handler, http.MethodGet, "/api/evaluation/scenarios", token, nil)
	var list struct {
		Active string                   `json:"active"`
		Custom []scenario.NamedScenario `json:"custom"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &list); err != nil {
		t.Fatalf("failed to decode list: %v", err)
	}
	if list.Active != "Tower B" || len(list.Custom) != 1 || list.Custom[0].Description != "second phase" {
		t.Errorf("unexpected scenario list: %+v", list)
	}

	state := decodeState(t, serve(handler, http.MethodDelete, "/api/evaluation/scenarios/"+created.ID, token, nil))
	if state.Active != scenario.PresetBalanced {
		t.Errorf("Active after delete = %q, want Balanced", state.Active)
	}
	if rr := serve(handler, http.MethodDelete, "/api/evaluation/scenarios/"+created.ID, token, nil); rr.Code != http.StatusNotFound {
		t.Errorf("delete twice: expected 404, got %d", rr.Code)
	}
}

func TestWorkspacesAreIsolatedPerUser(t *testing.T) {
	handler := newTestHandler(t)
	first := login(t, handler, "first@example.com")
	second := login(t, handler, "second@example.com")

	decodeState(t, serve(handler, http.MethodPost, "/api/evaluation/preset", first, map[string]string{"name": "Conservative"}))

	state := decodeState(t, serve(handler, http.MethodGet, "/api/evaluation", second, nil))
	if state.Active != scenario.PresetBalanced {
		t.Errorf("second user sees %q, want Balanced", state.Active)
	}
}

func TestWorkspaceShare(t *testing.T) {
	handler := newTestHandler(t, WithVariant(form.VariantSimplified))
	token := login(t, handler, "share@example.com")

	rr := serve(handler, http.MethodPost, "/api/evaluation/share", token, map[string]string{"pageUrl": "https://calc.example/evaluation"})
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	var resp map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !strings.HasPrefix(resp["link"], "https://calc.example/evaluation?numberOfUnits=") {
		t.Errorf("unexpected link %q", resp["link"])
	}
	if strings.Contains(resp["link"], form.FieldLandCostPerSqm) {
		t.Errorf("simplified link carries land fields: %q", resp["link"])
	}
}

func TestStaticIndex(t *testing.T) {
	handler := newTestHandler(t)

	rr := serve(handler, http.MethodGet, "/", "", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "Real Estate Investment Calculator") {
		t.Error("expected index page")
	}
}
