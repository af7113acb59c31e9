package repository

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/inspection-api/internal/models"
)

func TestDefaultCatalog(t *testing.T) {
	repo, err := NewCatalogRepository(DefaultCatalogData())
	require.NoError(t, err)

	obj, ok := repo.ObjectByID("1")
	require.True(t, ok)
	require.Len(t, obj.Locations, 5)
	require.Equal(t, "1-1", obj.Locations[0].ID)

	workers := repo.Users(models.RoleWorker)
	require.Len(t, workers, 2)
	require.Len(t, repo.Users(""), 3)

	_, ok = repo.UserByID("99")
	require.False(t, ok)
}

func TestCatalogCopiesAreIsolated(t *testing.T) {
	repo, err := NewCatalogRepository(DefaultCatalogData())
	require.NoError(t, err)

	obj, _ := repo.ObjectByID("3")
	obj.Locations[0].Name = "mutated"

	again, _ := repo.ObjectByID("3")
	require.Equal(t, "Опора №1", again.Locations[0].Name)
}

func TestNewCatalogRepositoryRejectsBadData(t *testing.T) {
	cases := map[string]CatalogData{
		"duplicate object": {Objects: []models.Object{{ID: "1", Name: "a"}, {ID: "1", Name: "b"}}},
		"shared location": {Objects: []models.Object{
			{ID: "1", Name: "a", Locations: []models.Location{{ID: "x", Name: "x"}}},
			{ID: "2", Name: "b", Locations: []models.Location{{ID: "x", Name: "x"}}},
		}},
		"unknown role": {Users: []models.User{{ID: "1", Name: "a", Role: "admin"}}},
		"blank name":   {Users: []models.User{{ID: "1", Name: " ", Role: models.RoleWorker}}},
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := NewCatalogRepository(data)
			require.Error(t, err)
		})
	}
}

func TestLoadCatalogFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.yaml")
	content := `objects:
  - id: line-7
    name: Line 7
    locations:
      - id: p1
        name: Pole 1
      - id: s1-2
        name: Span 1-2
users:
  - id: m
    name: Master One
    role: master
  - id: w
    name: Worker One
    role: worker
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	repo, err := LoadCatalogFile(path)
	require.NoError(t, err)
	obj, ok := repo.ObjectByID("line-7")
	require.True(t, ok)
	loc, ok := obj.Location("s1-2")
	require.True(t, ok)
	require.Equal(t, "Span 1-2", loc.Name)

	_, err = LoadCatalogFile(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)
}
