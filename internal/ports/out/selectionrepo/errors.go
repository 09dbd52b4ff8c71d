package selectionrepo

import "errors"

// ErrNotFound indicates no selection ledger exists yet for the version.
var ErrNotFound = errors.New("selection record not found")
