// Package journal implements a compensating-action log.
//
// Every state mutation performed during a settlement attempt records its
// inverse here before taking effect. On any downstream failure the journal is
// unwound in reverse order, restoring the exact pre-attempt state. On success
// the journal is discarded. This reproduces all-or-nothing transaction revert
// semantics without a transactional runtime underneath.
package journal

import "sync"

// CompensationFunc undoes one previously applied mutation.
// Compensation funcs must not fail: they restore in-memory state that the
// forward action is known to have changed.
type CompensationFunc func()

type entry struct {
	label string
	undo  CompensationFunc
}

// Journal is a LIFO log of compensating actions for one settlement attempt.
// It is not safe for concurrent use; an attempt is strictly sequential.
type Journal struct {
	entries  []entry
	unwound  bool
	discard  bool
	unwindMu sync.Mutex
}

// New creates an empty Journal.
func New() *Journal {
	return &Journal{}
}

// Record appends a compensating action. The forward mutation must be applied
// only after its inverse is recorded.
func (j *Journal) Record(label string, undo CompensationFunc) {
	if undo == nil {
		panic("journal: nil compensation")
	}
	if j.unwound || j.discard {
		panic("journal: record after terminal state")
	}
	j.entries = append(j.entries, entry{label: label, undo: undo})
}

// Unwind replays all recorded compensations in reverse order.
// It is idempotent; a second call is a no-op.
func (j *Journal) Unwind() {
	j.unwindMu.Lock()
	defer j.unwindMu.Unlock()

	if j.unwound || j.discard {
		return
	}
	j.unwound = true

	for i := len(j.entries) - 1; i >= 0; i-- {
		j.entries[i].undo()
	}
	j.entries = nil
}

// Discard drops the log without replaying it. Called on the success terminal,
// after which the applied mutations are permanent.
func (j *Journal) Discard() {
	j.unwindMu.Lock()
	defer j.unwindMu.Unlock()

	if j.unwound {
		panic("journal: discard after unwind")
	}
	j.discard = true
	j.entries = nil
}

// Len returns the number of pending compensations.
func (j *Journal) Len() int {
	return len(j.entries)
}

// Labels returns the labels of pending compensations in record order.
// Used for diagnostics and tests.
func (j *Journal) Labels() []string {
	out := make([]string, len(j.entries))
	for i, e := range j.entries {
		out[i] = e.label
	}
	return out
}
