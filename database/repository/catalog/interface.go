package catalogRepo

import (
	"context"
	"errors"

	"practica/models"
)

var (
	ErrPractitionerNotFound = errors.New("practitioner not found")
	ErrServiceNotFound      = errors.New("service not found")
)

// CatalogRepository is the read-only contract over the practice catalogue:
// practitioners with their declared schedules, and the services they offer.
// The administrative write path lives elsewhere; the booking core only reads.
type CatalogRepository interface {
	GetPractitioner(ctx context.Context, id string) (*models.Practitioner, error)
	GetService(ctx context.Context, id string) (*models.Service, error)
	ListServices(ctx context.Context, practitionerID string) ([]models.Service, error)
}
