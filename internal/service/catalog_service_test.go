package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/inspection-api/internal/models"
	"github.com/noah-isme/inspection-api/internal/repository"
	appErrors "github.com/noah-isme/inspection-api/pkg/errors"
)

func newDefaultCatalog(t *testing.T) *CatalogService {
	t.Helper()
	repo, err := repository.NewCatalogRepository(repository.DefaultCatalogData())
	require.NoError(t, err)
	return NewCatalogService(repo, nil)
}

func TestCatalogServiceLookups(t *testing.T) {
	svc := newDefaultCatalog(t)

	assert.Len(t, svc.Objects(), 3)

	locations, err := svc.LocationsOf("3")
	require.NoError(t, err)
	assert.Len(t, locations, 3)

	workers, err := svc.UsersByRole(models.RoleWorker)
	require.NoError(t, err)
	assert.Len(t, workers, 2)

	master, err := svc.UserByID("1")
	require.NoError(t, err)
	assert.True(t, master.IsMaster())
}

func TestCatalogServiceNotFound(t *testing.T) {
	svc := newDefaultCatalog(t)

	_, err := svc.ObjectByID("42")
	require.ErrorIs(t, err, appErrors.ErrNotFound)
	appErr := appErrors.FromError(err)
	assert.Equal(t, "objectId", appErr.Details["field"])
	assert.Equal(t, "42", appErr.Details["id"])

	_, err = svc.LocationsOf("42")
	assert.ErrorIs(t, err, appErrors.ErrNotFound)

	_, err = svc.UserByID("42")
	assert.ErrorIs(t, err, appErrors.ErrNotFound)

	_, err = svc.UsersByRole("admin")
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}
