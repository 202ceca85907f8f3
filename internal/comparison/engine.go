// Package comparison collects calculation results side by side and exports
// the selected ones as CSV, PDF or HTML tables.
package comparison

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/iAm-AliHaider/real-estate-investment-calculator/internal/calculator"
)

var (
	// ErrNothingSelected is returned when exporting without any selected entry.
	ErrNothingSelected = errors.New("no scenarios selected for comparison")
	// ErrUnknownEntry is returned for a label that has no entry.
	ErrUnknownEntry = errors.New("no comparison entry for label")
	// ErrEmptyLabel is returned when adding a result without a label.
	ErrEmptyLabel = errors.New("comparison label is required")
)

// Entry is a captured result under a scenario label.
type Entry struct {
	ID     string            `json:"id"`
	Label  string            `json:"label"`
	Result calculator.Result `json:"result"`
}

// Engine holds at most one entry per label and the subset selected for export.
// It is not safe for concurrent use.
type Engine struct {
	entries  []Entry
	selected map[string]bool
}

// NewEngine returns an empty engine.
func NewEngine() *Engine {
	return &Engine{selected: make(map[string]bool)}
}

// Add stores result under label. An existing entry is overwritten in place and
// keeps its id; a new entry is appended and selected.
func (e *Engine) Add(label string, result calculator.Result) (Entry, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return Entry{}, ErrEmptyLabel
	}

	for i := range e.entries {
		if e.entries[i].Label == label {
			e.entries[i].Result = result
			return e.entries[i], nil
		}
	}

	entry := Entry{ID: uuid.NewString(), Label: label, Result: result}
	e.entries = append(e.entries, entry)
	e.selected[label] = true
	return entry, nil
}

// Toggle flips the selection of label and returns the new state.
func (e *Engine) Toggle(label string) (bool, error) {
	if e.indexOf(label) < 0 {
		return false, fmt.Errorf("%w: %s", ErrUnknownEntry, label)
	}
	e.selected[label] = !e.selected[label]
	return e.selected[label], nil
}

// IsSelected reports whether label is selected.
func (e *Engine) IsSelected(label string) bool {
	return e.selected[label]
}

// Remove drops the entry for label. It reports whether one existed.
func (e *Engine) Remove(label string) bool {
	i := e.indexOf(label)
	if i < 0 {
		return false
	}
	e.entries = append(e.entries[:i], e.entries[i+1:]...)
	delete(e.selected, label)
	return true
}

// Entries returns every entry in insertion order.
func (e *Engine) Entries() []Entry {
	return append([]Entry(nil), e.entries...)
}

// Selected returns the selected entries in insertion order.
func (e *Engine) Selected() []Entry {
	var out []Entry
	for _, entry := range e.entries {
		if e.selected[entry.Label] {
			out = append(out, entry)
		}
	}
	return out
}

// Len returns the number of entries.
func (e *Engine) Len() int {
	return len(e.entries)
}

func (e *Engine) indexOf(label string) int {
	for i, entry := range e.entries {
		if entry.Label == label {
			return i
		}
	}
	return -1
}
