package cli

import "errors"

// ErrAborted is returned when the user declines a confirmation prompt.
var ErrAborted = errors.New("operation aborted")
