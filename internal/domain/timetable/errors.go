package timetable

import "errors"

var (
	ErrInvalidDay     = errors.New("invalid day name")
	ErrInvalidRange   = errors.New("end date is before start date")
	ErrPeriodNotFound = errors.New("period not found")
)
