package session

import "errors"

// ErrMissingUserID is the store's only failure mode; handlers translate it
// into an empty-history style response instead of a hard error.
var ErrMissingUserID = errors.New("userId is required")
