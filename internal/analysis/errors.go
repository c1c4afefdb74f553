package analysis

import (
	"errors"
	"fmt"
)

var (
	// ErrDegenerateInput marks inputs no statistic can be computed from, such as an
	// empty error sample or a win percentage with no games played.
	ErrDegenerateInput = errors.New("degenerate input")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrUnknownTeam     = errors.New("unknown team")
)

// ConfigurationError reports a league slot rule set that cannot be used for scoring.
type ConfigurationError struct {
	Position string
	Reason   string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("slot rules: position %q %s", e.Position, e.Reason)
}
