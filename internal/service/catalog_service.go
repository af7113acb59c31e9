package service

import (
	"go.uber.org/zap"

	"github.com/noah-isme/inspection-api/internal/models"
	appErrors "github.com/noah-isme/inspection-api/pkg/errors"
)

type catalogReader interface {
	ObjectByID(id string) (models.Object, bool)
	UserByID(id string) (models.User, bool)
	Objects() []models.Object
	Users(role models.UserRole) []models.User
}

// CatalogService exposes the read-only reference data: objects, their
// technical locations and users.
type CatalogService struct {
	repo   catalogReader
	logger *zap.Logger
}

// NewCatalogService constructs a CatalogService.
func NewCatalogService(repo catalogReader, logger *zap.Logger) *CatalogService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogService{repo: repo, logger: logger}
}

// Objects lists every inspection object.
func (s *CatalogService) Objects() []models.Object {
	return s.repo.Objects()
}

// ObjectByID resolves an object.
func (s *CatalogService) ObjectByID(id string) (*models.Object, error) {
	obj, ok := s.repo.ObjectByID(id)
	if !ok {
		return nil, notFound("object", id)
	}
	return &obj, nil
}

// LocationsOf returns the ordered locations of an object.
func (s *CatalogService) LocationsOf(objectID string) ([]models.Location, error) {
	obj, err := s.ObjectByID(objectID)
	if err != nil {
		return nil, err
	}
	if obj.Locations == nil {
		return []models.Location{}, nil
	}
	return obj.Locations, nil
}

// UserByID resolves a user.
func (s *CatalogService) UserByID(id string) (*models.User, error) {
	user, ok := s.repo.UserByID(id)
	if !ok {
		return nil, notFound("user", id)
	}
	return &user, nil
}

// UsersByRole lists users holding role. An empty role lists everybody.
func (s *CatalogService) UsersByRole(role models.UserRole) ([]models.User, error) {
	if role != "" && !role.Valid() {
		return nil, appErrors.WithDetails(appErrors.Clone(appErrors.ErrValidation, "unknown role"), "field", "role", "value", string(role))
	}
	return s.repo.Users(role), nil
}

func notFound(kind, id string) *appErrors.Error {
	return appErrors.WithDetails(appErrors.Clone(appErrors.ErrNotFound, kind+" not found"), "field", kind+"Id", "id", id)
}
