// Package scenario manages the built-in presets and the user's saved scenarios.
package scenario

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/iAm-AliHaider/real-estate-investment-calculator/internal/form"
	"github.com/iAm-AliHaider/real-estate-investment-calculator/internal/storage"
	"github.com/iAm-AliHaider/real-estate-investment-calculator/pkg/constants"
	"go.uber.org/zap"
)

var (
	// ErrEmptyName is returned when a scenario name is blank.
	ErrEmptyName = errors.New("scenario name is required")
	// ErrDuplicateName is returned when a name is already used by a preset or another scenario.
	ErrDuplicateName = errors.New("scenario name already exists")
	// ErrNotFound is returned for an unknown scenario id.
	ErrNotFound = errors.New("scenario not found")
)

// NamedScenario is a label plus a snapshot of field values.
type NamedScenario struct {
	ID          string      `json:"id,omitempty"`
	Name        string      `json:"name"`
	Description string      `json:"description,omitempty"`
	Fields      form.Fields `json:"values,omitempty"`
	Preset      bool        `json:"preset,omitempty"`
}

func (s NamedScenario) clone() NamedScenario {
	s.Fields = s.Fields.Clone()
	return s
}

// Registry holds the immutable presets and the persisted user scenarios.
type Registry struct {
	logger  *zap.Logger
	store   storage.Collection[NamedScenario]
	presets []NamedScenario

	mu     sync.RWMutex
	custom []NamedScenario
}

// NewRegistry loads user scenarios from store. A load failure is logged and
// treated as no saved scenarios. A nil store keeps scenarios in memory.
func NewRegistry(logger *zap.Logger, store storage.Collection[NamedScenario], presets []NamedScenario) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	if store == nil {
		store = storage.NewMemory[NamedScenario]()
	}

	r := &Registry{
		logger:  logger,
		store:   store,
		presets: make([]NamedScenario, 0, len(presets)),
	}
	for _, p := range presets {
		p = p.clone()
		p.Preset = true
		r.presets = append(r.presets, p)
	}

	loaded, err := store.Load()
	if err != nil {
		logger.Warn("failed to load saved scenarios, starting empty",
			zap.String("op", "scenario.NewRegistry"),
			zap.Error(err),
		)
		loaded = nil
	}
	for _, s := range loaded {
		if strings.TrimSpace(s.ID) == "" || strings.TrimSpace(s.Name) == "" {
			logger.Warn("skipping malformed saved scenario",
				zap.String("op", "scenario.NewRegistry"),
				zap.String("id", s.ID),
				zap.String("name", s.Name),
			)
			continue
		}
		s.Preset = false
		r.custom = append(r.custom, s)
	}

	logger.Debug("scenario registry ready",
		zap.String("op", "scenario.NewRegistry"),
		zap.Int("presets", len(r.presets)),
		zap.Int("custom", len(r.custom)),
	)
	return r
}

// Presets returns copies of the built-in scenarios.
func (r *Registry) Presets() []NamedScenario {
	out := make([]NamedScenario, len(r.presets))
	for i, p := range r.presets {
		out[i] = p.clone()
	}
	return out
}

// Custom returns copies of the user scenarios in creation order.
func (r *Registry) Custom() []NamedScenario {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]NamedScenario, len(r.custom))
	for i, s := range r.custom {
		out[i] = s.clone()
	}
	return out
}

// All returns presets followed by user scenarios.
func (r *Registry) All() []NamedScenario {
	return append(r.Presets(), r.Custom()...)
}

// Lookup finds a scenario by name, checking presets before user scenarios.
func (r *Registry) Lookup(name string) (NamedScenario, bool) {
	for _, p := range r.presets {
		if p.Name == name {
			return p.clone(), true
		}
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, s := range r.custom {
		if s.Name == name {
			return s.clone(), true
		}
	}
	return NamedScenario{}, false
}

// Get finds a user scenario by id.
func (r *Registry) Get(id string) (NamedScenario, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i := r.indexOf(id)
	if i < 0 {
		return NamedScenario{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return r.custom[i].clone(), nil
}

// Create saves a new user scenario with a generated id.
func (r *Registry) Create(name, description string, fields form.Fields) (NamedScenario, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return NamedScenario{}, ErrEmptyName
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.nameTaken(name, "") {
		return NamedScenario{}, fmt.Errorf("%w: %s", ErrDuplicateName, name)
	}

	s := NamedScenario{
		ID:          uuid.NewString(),
		Name:        name,
		Description: describe(description),
		Fields:      fields.Clone(),
	}
	next := append(r.snapshot(), s)
	if err := r.commit(next); err != nil {
		return NamedScenario{}, err
	}

	r.logger.Info("scenario created",
		zap.String("op", "scenario.Create"),
		zap.String("id", s.ID),
		zap.String("name", s.Name),
	)
	return s.clone(), nil
}

// Update replaces the name, description and values of a user scenario.
// Nil fields keep the stored values.
func (r *Registry) Update(id, name, description string, fields form.Fields) (NamedScenario, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return NamedScenario{}, ErrEmptyName
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return NamedScenario{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if r.nameTaken(name, id) {
		return NamedScenario{}, fmt.Errorf("%w: %s", ErrDuplicateName, name)
	}

	next := r.snapshot()
	updated := next[i]
	updated.Name = name
	updated.Description = describe(description)
	if fields != nil {
		updated.Fields = fields.Clone()
	}
	next[i] = updated
	if err := r.commit(next); err != nil {
		return NamedScenario{}, err
	}

	r.logger.Info("scenario updated",
		zap.String("op", "scenario.Update"),
		zap.String("id", id),
		zap.String("name", name),
	)
	return updated.clone(), nil
}

// Delete removes a user scenario and returns it.
func (r *Registry) Delete(id string) (NamedScenario, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return NamedScenario{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	removed := r.custom[i]

	next := r.snapshot()
	next = append(next[:i], next[i+1:]...)
	if err := r.commit(next); err != nil {
		return NamedScenario{}, err
	}

	r.logger.Info("scenario deleted",
		zap.String("op", "scenario.Delete"),
		zap.String("id", id),
		zap.String("name", removed.Name),
	)
	return removed, nil
}

// commit persists next and only then replaces the in-memory list.
func (r *Registry) commit(next []NamedScenario) error {
	if err := r.store.Save(next); err != nil {
		r.logger.Error("failed to save scenarios",
			zap.String("op", "scenario.commit"),
			zap.Error(err),
		)
		return fmt.Errorf("failed to save scenarios: %w", err)
	}
	r.custom = next
	return nil
}

func (r *Registry) snapshot() []NamedScenario {
	out := make([]NamedScenario, len(r.custom))
	copy(out, r.custom)
	return out
}

func (r *Registry) indexOf(id string) int {
	for i, s := range r.custom {
		if s.ID == id {
			return i
		}
	}
	return -1
}

func (r *Registry) nameTaken(name, exceptID string) bool {
	for _, p := range r.presets {
		if strings.EqualFold(p.Name, name) {
			return true
		}
	}
	for _, s := range r.custom {
		if s.ID != exceptID && strings.EqualFold(s.Name, name) {
			return true
		}
	}
	return false
}

func describe(description string) string {
	description = strings.TrimSpace(description)
	if description == "" {
		return constants.DefaultScenarioDescription
	}
	return description
}
