package officer

import "errors"

var (
	ErrOfficerNotFound = errors.New("officer not found")
	ErrOfficerInactive = errors.New("officer is not active")
)
