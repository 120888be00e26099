package catalogRepo

import (
	"context"
	"errors"
	"fmt"

	"practica/database"
	"practica/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoCatalogRepo implements CatalogRepository on MongoDB.
type MongoCatalogRepo struct {
	practitioners *mongo.Collection
	services      *mongo.Collection
}

func NewMongoCatalogRepo() *MongoCatalogRepo {
	return &MongoCatalogRepo{
		practitioners: database.Collection("practitioners"),
		services:      database.Collection("services"),
	}
}

func (r *MongoCatalogRepo) GetPractitioner(ctx context.Context, id string) (*models.Practitioner, error) {
	var p models.Practitioner
	err := r.practitioners.FindOne(ctx, bson.M{"id": id}).Decode(&p)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrPractitionerNotFound
		}
		return nil, fmt.Errorf("failed to fetch practitioner %s: %w", id, err)
	}
	return &p, nil
}

func (r *MongoCatalogRepo) GetService(ctx context.Context, id string) (*models.Service, error) {
	var s models.Service
	err := r.services.FindOne(ctx, bson.M{"id": id}).Decode(&s)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrServiceNotFound
		}
		return nil, fmt.Errorf("failed to fetch service %s: %w", id, err)
	}
	return &s, nil
}

func (r *MongoCatalogRepo) ListServices(ctx context.Context, practitionerID string) ([]models.Service, error) {
	cursor, err := r.services.Find(ctx, bson.M{"practitioner_id": practitionerID},
		options.Find().SetSort(bson.D{{Key: "title", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list services: %w", err)
	}
	defer cursor.Close(ctx)

	var services []models.Service
	if err := cursor.All(ctx, &services); err != nil {
		return nil, fmt.Errorf("failed to decode services: %w", err)
	}
	return services, nil
}
