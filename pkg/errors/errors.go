package errors

import "errors"

// ErrTransitionConflict a state transition lost a race against another writer
var ErrTransitionConflict = errors.New("state transition conflict")
