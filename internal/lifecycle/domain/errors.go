package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnknownEntityType   = errors.New("unknown_entity_type")
	ErrUnknownState        = errors.New("unknown_state")
	ErrNotFound            = errors.New("entity_not_found")
	ErrConcurrencyConflict = errors.New("concurrency_conflict")
)

// InvalidTransitionError reports an attempted transition along an edge that
// is not present in the entity type's graph. ValidNext carries the legal
// alternatives so callers can render an actionable message without
// re-querying the graph.
type InvalidTransitionError struct {
	EntityType EntityType
	From       State
	To         State
	ValidNext  []State
}

func (e *InvalidTransitionError) Error() string {
	next := make([]string, len(e.ValidNext))
	for i, s := range e.ValidNext {
		next[i] = string(s)
	}
	return fmt.Sprintf("invalid transition for %s: %s -> %s (valid: %s)",
		e.EntityType, e.From, e.To, strings.Join(next, ", "))
}

// IsInvalidTransition reports whether err wraps an InvalidTransitionError.
func IsInvalidTransition(err error) bool {
	var target *InvalidTransitionError
	return errors.As(err, &target)
}
