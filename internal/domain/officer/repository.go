package officer

import "context"

// OfficerRepository - interface for officers and officer_institutions tables
type OfficerRepository interface {
	Create(ctx context.Context, o Officer) (Officer, error)
	GetByID(ctx context.Context, id string) (Officer, error)
	ListActive(ctx context.Context) ([]Officer, error)
	ListActiveByInstitution(ctx context.Context, institutionID string) ([]Officer, error)
}
