// Package workspace ties the form, the scenario registry and the comparison
// engine together into one user's calculator session.
package workspace

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/iAm-AliHaider/real-estate-investment-calculator/internal/calculator"
	"github.com/iAm-AliHaider/real-estate-investment-calculator/internal/comparison"
	"github.com/iAm-AliHaider/real-estate-investment-calculator/internal/form"
	"github.com/iAm-AliHaider/real-estate-investment-calculator/internal/scenario"
	"github.com/iAm-AliHaider/real-estate-investment-calculator/internal/share"
	"github.com/iAm-AliHaider/real-estate-investment-calculator/pkg/constants"
	"go.uber.org/zap"
)

// ErrNoResult is returned when an action needs a calculated result and there is none.
var ErrNoResult = errors.New("no calculation result available")

// Workspace is one session of the calculator. It is not safe for concurrent use.
type Workspace struct {
	logger     *zap.Logger
	registry   *scenario.Registry
	form       *form.Controller
	comparison *comparison.Engine
	active     string
}

// State is a snapshot of a workspace for display.
type State struct {
	Variant    form.Variant       `json:"variant"`
	Active     string             `json:"activeScenario"`
	Fields     form.Fields        `json:"fields"`
	Result     *calculator.Result `json:"result,omitempty"`
	Comparison []ComparisonState  `json:"comparison"`
}

// ComparisonState is a comparison entry with its selection flag.
type ComparisonState struct {
	comparison.Entry
	Selected bool `json:"selected"`
}

// New creates a workspace on the default preset of variant.
func New(logger *zap.Logger, registry *scenario.Registry, variant form.Variant) *Workspace {
	if logger == nil {
		logger = zap.NewNop()
	}
	if variant == "" {
		variant = form.VariantFull
	}
	if registry == nil {
		registry = scenario.NewRegistry(logger, nil, scenario.PresetsFor(variant))
	}

	w := &Workspace{
		logger:     logger,
		registry:   registry,
		form:       form.NewController(logger, variant, defaultFields(variant)),
		comparison: comparison.NewEngine(),
	}
	w.ApplyPreset(DefaultPreset(variant))
	return w
}

// DefaultPreset names the preset a workspace starts on and falls back to.
func DefaultPreset(variant form.Variant) string {
	if variant == form.VariantSimplified {
		return scenario.CaseRealistic
	}
	return constants.BalancedPreset
}

func defaultFields(variant form.Variant) form.Fields {
	fields := form.Fields{}
	for _, key := range variant.Keys() {
		fields[key] = form.DefaultFields()[key]
	}
	return fields
}

// Variant returns the formula shape of the workspace.
func (w *Workspace) Variant() form.Variant {
	return w.form.Variant()
}

// Registry returns the scenario registry backing the workspace.
func (w *Workspace) Registry() *scenario.Registry {
	return w.registry
}

// Comparison returns the comparison engine of the workspace.
func (w *Workspace) Comparison() *comparison.Engine {
	return w.comparison
}

// Active returns the label of the active scenario.
func (w *Workspace) Active() string {
	return w.active
}

// Fields returns a copy of the current field values.
func (w *Workspace) Fields() form.Fields {
	return w.form.Fields()
}

// Result returns the latest calculation, if any.
func (w *Workspace) Result() (calculator.Result, bool) {
	return w.form.Result()
}

// Validate checks the current fields.
func (w *Workspace) Validate() form.Validation {
	return w.form.Validate()
}

// State returns a snapshot of the workspace.
func (w *Workspace) State() State {
	s := State{
		Variant:    w.Variant(),
		Active:     w.active,
		Fields:     w.Fields(),
		Comparison: []ComparisonState{},
	}
	if r, ok := w.Result(); ok {
		s.Result = &r
	}
	for _, entry := range w.comparison.Entries() {
		s.Comparison = append(s.Comparison, ComparisonState{
			Entry:    entry,
			Selected: w.comparison.IsSelected(entry.Label),
		})
	}
	return s
}

// ApplyPreset makes name the active scenario and loads its values. An unknown
// name, or a preset without values, only changes the label.
func (w *Workspace) ApplyPreset(name string) form.Fields {
	w.active = name
	if s, ok := w.registry.Lookup(name); ok && len(s.Fields) > 0 {
		w.form.SetFields(s.Fields)
	} else {
		w.logger.Debug("scenario has no values, keeping fields",
			zap.String("op", "workspace.ApplyPreset"),
			zap.String("scenario", name),
		)
	}
	return w.form.Fields()
}

// SetField updates one field of the form.
func (w *Workspace) SetField(key, value string) error {
	return w.form.SetField(key, value)
}

// SetFields overlays several fields without deriving financing ratios.
func (w *Workspace) SetFields(fields form.Fields) {
	w.form.SetFields(fields)
}

// Submit validates and calculates the current fields.
func (w *Workspace) Submit() (calculator.Result, error) {
	return w.form.Submit()
}

// Reset returns to the default preset and clears the result.
func (w *Workspace) Reset() {
	w.form.Reset(defaultFields(w.Variant()))
	w.ApplyPreset(DefaultPreset(w.Variant()))
}

// CreateScenario saves the current fields as a new scenario and makes it active.
func (w *Workspace) CreateScenario(name, description string) (scenario.NamedScenario, error) {
	s, err := w.registry.Create(name, description, w.form.Fields())
	if err != nil {
		return scenario.NamedScenario{}, err
	}
	w.active = s.Name
	return s, nil
}

// UpdateScenario renames a saved scenario, stores the current fields in it and
// makes it the active scenario.
func (w *Workspace) UpdateScenario(id, name, description string) (scenario.NamedScenario, error) {
	s, err := w.registry.Update(id, name, description, w.form.Fields())
	if err != nil {
		return scenario.NamedScenario{}, err
	}
	w.active = s.Name
	return s, nil
}

// DeleteScenario removes a saved scenario. Deleting the active scenario
// switches to the default preset.
func (w *Workspace) DeleteScenario(id string) error {
	removed, err := w.registry.Delete(id)
	if err != nil {
		return err
	}
	if removed.Name == w.active {
		w.ApplyPreset(DefaultPreset(w.Variant()))
	}
	return nil
}

// AddToComparison captures the current result under the active label.
func (w *Workspace) AddToComparison() (comparison.Entry, error) {
	result, ok := w.form.Result()
	if !ok {
		return comparison.Entry{}, ErrNoResult
	}
	entry, err := w.comparison.Add(w.active, result)
	if err != nil {
		return comparison.Entry{}, fmt.Errorf("failed to add %q to comparison: %w", w.active, err)
	}
	w.logger.Debug("result added to comparison",
		zap.String("op", "workspace.AddToComparison"),
		zap.String("label", entry.Label),
		zap.Int("entries", w.comparison.Len()),
	)
	return entry, nil
}

// ToggleComparison flips the selection of a comparison entry.
func (w *Workspace) ToggleComparison(label string) (bool, error) {
	return w.comparison.Toggle(label)
}

// LoadQuery applies fields from a shared link. It only acts when the query
// carries numberOfUnits, and then marks the scenario as custom.
func (w *Workspace) LoadQuery(values url.Values) bool {
	fields, ok := share.ParseQuery(values, w.Variant())
	if !ok {
		return false
	}
	w.form.SetFields(fields)
	w.active = constants.CustomScenarioLabel
	return true
}

// ShareLink returns pageURL carrying the current fields.
func (w *Workspace) ShareLink(pageURL string) string {
	return share.BuildLink(pageURL, w.form.Fields(), w.Variant())
}
