package chat

import (
	"errors"
	"fmt"
)

// ErrEmptyQuery is returned by SendMessage when the query is blank.
var ErrEmptyQuery = errors.New("query is empty")

// PolicyError is returned by SendMessage when the Guard rejects a query.
type PolicyError struct {
	Decision string
	Reason   string
}

func (e *PolicyError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("query rejected by policy: %s", e.Decision)
	}
	return fmt.Sprintf("query rejected by policy: %s (%s)", e.Decision, e.Reason)
}
