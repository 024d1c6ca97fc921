package payroll

import (
	"context"

	"github.com/cmlabs-edu/eduops-backend/internal/domain/access"
)

type PayrollService interface {
	// Calculate previews a payroll breakdown without persisting it.
	Calculate(ctx context.Context, req CalculatePayrollRequest) (CalculationResponse, error)
	Generate(ctx context.Context, req GeneratePayrollRequest) ([]PayrollRecordResponse, error)
	Get(ctx context.Context, caller access.Principal, id string) (PayrollRecordResponse, error)
	List(ctx context.Context, caller access.Principal, filter PayrollFilter) (ListPayrollRecordResponse, error)
}
