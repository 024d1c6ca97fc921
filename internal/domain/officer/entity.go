package officer

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// Officer is institution-level teaching staff that can hold timetable slots.
type Officer struct {
	ID             string
	FullName       string
	Email          *string
	Position       string
	Skills         []string
	Status         Status
	MonthlySalary  *decimal.Decimal
	InstitutionIDs []string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (o Officer) IsActive() bool {
	return o.Status == StatusActive
}

// AssignedTo reports whether the officer works at the institution.
func (o Officer) AssignedTo(institutionID string) bool {
	for _, id := range o.InstitutionIDs {
		if id == institutionID {
			return true
		}
	}
	return false
}
