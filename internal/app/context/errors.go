package context

import "errors"

// ErrAlreadyCommitted is returned when adding or committing after a commit.
var ErrAlreadyCommitted = errors.New("request context already committed")
