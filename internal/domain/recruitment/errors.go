package recruitment

import "errors"

var (
	ErrJobPostingNotFound = errors.New("job posting not found")
	ErrStageOrderExists   = errors.New("interview stage order already exists for this posting")
)
