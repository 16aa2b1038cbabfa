// Package selection tracks the employer's bulk selection over one job's ranked candidates.
package selection

import (
	"sync"

	"github.com/spigell/tradematch/internal/model"
)

// Decision is the outcome recorded for a candidate.
type Decision string

const (
	DecisionShortlisted Decision = "shortlisted"
	DecisionRejected    Decision = "rejected"
)

// Tracker holds the selection for the job currently in focus. The selection is
// always a subset of the displayed candidates.
type Tracker struct {
	mu        sync.Mutex
	jobID     string
	displayed []string
	visible   map[string]struct{}
	selected  map[string]struct{}
	decisions map[string]Decision
}

func New() *Tracker {
	return &Tracker{
		visible:   map[string]struct{}{},
		selected:  map[string]struct{}{},
		decisions: map[string]Decision{},
	}
}

// Focus switches the tracker to jobID showing displayed. Selection and
// decisions are reset whenever the job or the displayed set changes.
func (t *Tracker) Focus(jobID string, displayed []string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	ids := make([]string, 0, len(displayed))
	visible := make(map[string]struct{}, len(displayed))
	for _, id := range displayed {
		if _, dup := visible[id]; dup {
			continue
		}
		visible[id] = struct{}{}
		ids = append(ids, id)
	}

	if jobID == t.jobID && sameIDs(ids, t.displayed) {
		return
	}

	t.jobID = jobID
	t.displayed = ids
	t.visible = visible
	t.selected = map[string]struct{}{}
	t.decisions = map[string]Decision{}
}

// JobID returns the job in focus.
func (t *Tracker) JobID() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.jobID
}

// Toggle flips the membership of id and reports whether it is now selected.
func (t *Tracker) Toggle(id string) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.visible[id]; !ok {
		return false, model.ErrNotFound
	}
	if _, ok := t.selected[id]; ok {
		delete(t.selected, id)
		return false, nil
	}
	t.selected[id] = struct{}{}
	return true, nil
}

// SelectAll selects every displayed candidate, or clears the selection when
// all of them are already selected.
func (t *Tracker) SelectAll() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if len(t.selected) == len(t.displayed) {
		t.selected = map[string]struct{}{}
		return
	}
	t.selected = make(map[string]struct{}, len(t.displayed))
	for _, id := range t.displayed {
		t.selected[id] = struct{}{}
	}
}

// Clear empties the selection.
func (t *Tracker) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.selected = map[string]struct{}{}
}

func (t *Tracker) IsSelected(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.selected[id]
	return ok
}

func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.selected)
}

// AllSelected reports whether every displayed candidate is selected.
func (t *Tracker) AllSelected() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.displayed) > 0 && len(t.selected) == len(t.displayed)
}

// Selected returns the selected ids in display order.
func (t *Tracker) Selected() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.selectedLocked()
}

// Shortlist records the selected candidates as shortlisted, clears the
// selection and returns their ids.
func (t *Tracker) Shortlist() []string {
	return t.decide(DecisionShortlisted)
}

// Reject records the selected candidates as rejected, clears the selection
// and returns their ids.
func (t *Tracker) Reject() []string {
	return t.decide(DecisionRejected)
}

// Decisions returns a copy of the decisions recorded for the job in focus.
func (t *Tracker) Decisions() map[string]Decision {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make(map[string]Decision, len(t.decisions))
	for id, d := range t.decisions {
		out[id] = d
	}
	return out
}

func (t *Tracker) decide(d Decision) []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	ids := t.selectedLocked()
	for _, id := range ids {
		t.decisions[id] = d
	}
	t.selected = map[string]struct{}{}
	return ids
}

func (t *Tracker) selectedLocked() []string {
	out := make([]string, 0, len(t.selected))
	for _, id := range t.displayed {
		if _, ok := t.selected[id]; ok {
			out = append(out, id)
		}
	}
	return out
}

func sameIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
