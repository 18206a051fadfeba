package engine

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"sync-notes-be/internal/pkg/serverutils"
)

const (
	AtParam    = "at"
	SinceParam = "since"
	UntilParam = "until"
)

// Query exposes a request's query parameters to the engine without tying it
// to the HTTP framework. Values must preserve duplicates so multiplicity can
// be validated.
type Query interface {
	Names() []string
	Values(name string) []string
}

// Window is the half-open [Since, Until) range an incremental listing
// covers. Since nil means no lower bound. Consecutive windows [a,b), [b,c)
// chain without gaps or overlap because no row can be committed with an
// updated value at or past the Until captured here (see EnsureUpdatedPast).
type Window struct {
	Since *time.Time
	Until time.Time
}

// ParseWindow reads since/until from the request. until defaults to the
// request receipt time so the client can anchor its next fetch at the
// previous until.
func ParseWindow(q Query, now time.Time) (Window, error) {
	since, err := ParseTimestamp(q, SinceParam)
	if err != nil {
		return Window{}, err
	}
	until, err := ParseTimestamp(q, UntilParam)
	if err != nil {
		return Window{}, err
	}

	w := Window{Since: since, Until: now}
	if until != nil {
		w.Until = *until
	}
	return w, nil
}

// Apply narrows a listing query to updated >= since AND updated < until.
// Satisfies the repository Specification interface.
func (w Window) Apply(db *gorm.DB) *gorm.DB {
	if w.Since != nil {
		db = db.Where("updated >= ?", *w.Since)
	}
	return db.Where("updated < ?", w.Until)
}

// ParseTimestamp reads a single optional timestamp query value. The value
// must carry an explicit UTC offset; a naive timestamp would silently shift
// the window by the server's zone.
func ParseTimestamp(q Query, name string) (*time.Time, error) {
	values := q.Values(name)
	if len(values) > 1 {
		return nil, serverutils.NewValidationError(fmt.Sprintf("%s: multiple timestamp values", name))
	}
	if len(values) == 0 {
		return nil, nil
	}

	ts, err := parseOffsetTimestamp(values[0])
	if err != nil {
		return nil, serverutils.NewValidationError(fmt.Sprintf("%s: %s", name, err.Error()))
	}
	return &ts, nil
}

var naiveLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
}

func parseOffsetTimestamp(value string) (time.Time, error) {
	ts, err := time.Parse(time.RFC3339Nano, value)
	if err == nil {
		return ts, nil
	}

	for _, layout := range naiveLayouts {
		if _, naiveErr := time.Parse(layout, value); naiveErr == nil {
			return time.Time{}, fmt.Errorf("timestamp without timezone")
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp format")
}
