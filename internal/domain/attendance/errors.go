package attendance

import "errors"

var (
	ErrAlreadyCheckedIn      = errors.New("you have already checked in today")
	ErrNotCheckedIn          = errors.New("you have not checked in yet")
	ErrAlreadyCheckedOut     = errors.New("you have already checked out")
	ErrCheckOutBeforeCheckIn = errors.New("check-out time is before check-in time")

	ErrAttendanceNotFound = errors.New("attendance record not found")
	ErrUnauthorized       = errors.New("unauthorized to access this attendance record")
)
