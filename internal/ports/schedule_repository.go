package ports

import (
	"context"
	"errors"

	"field-service-scheduler/internal/domain"
)

// ErrNotFound reports a missing reference row (office, technician).
var ErrNotFound = errors.New("not found")

// Port: boundary for the scheduling engine's reference and job data.
type ScheduleRepository interface {
	// FetchOffice returns the office for a region, or ErrNotFound.
	FetchOffice(ctx context.Context, region string) (*domain.Office, error)
	// FetchTechnician returns the named technician, or ErrNotFound.
	FetchTechnician(ctx context.Context, name string) (*domain.Technician, error)
	// ListMonthJobs returns the (job, property) pairs for a month and region,
	// ordered by priority then property name.
	ListMonthJobs(ctx context.Context, month, region string) ([]domain.JobVisit, error)
}
