package ports

import (
	"context"

	"field-service-scheduler/internal/domain"
)

// PropertyDirectory lists stored properties for maintenance flows such as
// the coordinate-confidence scan.
type PropertyDirectory interface {
	ListProperties(ctx context.Context) ([]*domain.Property, error)
}
