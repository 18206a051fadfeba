package engine

import (
	"strings"
	"time"

	"sync-notes-be/internal/pkg/serverutils"
)

// WriteConditions are the client-supplied preconditions for update/delete.
// At succeeds only when the row's updated equals it exactly; Until succeeds
// only when updated is strictly older. At most one may be supplied.
type WriteConditions struct {
	At    *time.Time
	Until *time.Time
}

var supportedWriteConditions = map[string]bool{
	AtParam:    true,
	UntilParam: true,
}

// ParseWriteConditions validates the full query parameter set of a write
// request. It runs before any transaction or row lock is taken, so malformed
// requests never touch the store.
func ParseWriteConditions(q Query) (WriteConditions, error) {
	var unsupported []string
	for _, name := range q.Names() {
		if !supportedWriteConditions[name] {
			unsupported = append(unsupported, name)
		}
	}
	if len(unsupported) > 0 {
		return WriteConditions{}, serverutils.NewValidationError(unsupported[0] + ": unsupported condition")
	}

	at, err := ParseTimestamp(q, AtParam)
	if err != nil {
		return WriteConditions{}, err
	}
	until, err := ParseTimestamp(q, UntilParam)
	if err != nil {
		return WriteConditions{}, err
	}

	if at != nil && until != nil {
		return WriteConditions{}, serverutils.NewValidationError(
			"unsupported combination: " + strings.Join([]string{AtParam, UntilParam}, ", "))
	}

	return WriteConditions{At: at, Until: until}, nil
}

// Check compares the conditions against the row's current updated value.
// The caller must hold the row lock so the judgment stays valid at commit.
func (c WriteConditions) Check(updated time.Time) error {
	if c.At != nil && !updated.Equal(*c.At) {
		return serverutils.NewConflictError()
	}
	if c.Until != nil && !updated.Before(*c.Until) {
		return serverutils.NewConflictError()
	}
	return nil
}

// EnsureUpdatedPast blocks until the wall clock is strictly past the row's
// current updated value, so the re-stamped timestamp always increases. An
// updated value ahead of the clock means the row violates the monotonicity
// every sync window relies on; refuse to touch it rather than repair.
func EnsureUpdatedPast(updated time.Time, now func() time.Time) error {
	for {
		t := now()
		if updated.Before(t) {
			return nil
		}
		if updated.After(t) {
			return serverutils.NewInternalError("updated timestamp is in the future")
		}
		time.Sleep(time.Millisecond)
	}
}
