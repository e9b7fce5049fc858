package engine

import "errors"

// ErrInvalidChoice marks a human choice outside the agent index range. The
// step it was submitted to did not run; session state is unchanged.
var ErrInvalidChoice = errors.New("invalid human choice")
