package repository

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/noah-isme/inspection-api/internal/models"
)

// CatalogData is the on-disk shape of the reference catalog.
type CatalogData struct {
	Objects []models.Object `yaml:"objects"`
	Users   []models.User   `yaml:"users"`
}

// CatalogRepository serves read-only reference data. It is built once and
// never mutated, so it needs no locking.
type CatalogRepository struct {
	objects     []models.Object
	users       []models.User
	objectIndex map[string]int
	userIndex   map[string]int
}

// NewCatalogRepository validates the data and indexes it by id.
func NewCatalogRepository(data CatalogData) (*CatalogRepository, error) {
	r := &CatalogRepository{
		objectIndex: make(map[string]int, len(data.Objects)),
		userIndex:   make(map[string]int, len(data.Users)),
	}
	locationSeen := make(map[string]string)
	for _, obj := range data.Objects {
		obj.ID = strings.TrimSpace(obj.ID)
		if obj.ID == "" || strings.TrimSpace(obj.Name) == "" {
			return nil, fmt.Errorf("catalog object requires id and name")
		}
		if _, dup := r.objectIndex[obj.ID]; dup {
			return nil, fmt.Errorf("duplicate catalog object %q", obj.ID)
		}
		locations := make([]models.Location, 0, len(obj.Locations))
		for _, loc := range obj.Locations {
			loc.ID = strings.TrimSpace(loc.ID)
			if loc.ID == "" || strings.TrimSpace(loc.Name) == "" {
				return nil, fmt.Errorf("location of object %q requires id and name", obj.ID)
			}
			if owner, dup := locationSeen[loc.ID]; dup {
				return nil, fmt.Errorf("location %q declared by objects %q and %q", loc.ID, owner, obj.ID)
			}
			locationSeen[loc.ID] = obj.ID
			locations = append(locations, loc)
		}
		obj.Locations = locations
		r.objectIndex[obj.ID] = len(r.objects)
		r.objects = append(r.objects, obj)
	}
	for _, user := range data.Users {
		user.ID = strings.TrimSpace(user.ID)
		if user.ID == "" || strings.TrimSpace(user.Name) == "" {
			return nil, fmt.Errorf("catalog user requires id and name")
		}
		if !user.Role.Valid() {
			return nil, fmt.Errorf("user %q has unknown role %q", user.ID, user.Role)
		}
		if _, dup := r.userIndex[user.ID]; dup {
			return nil, fmt.Errorf("duplicate catalog user %q", user.ID)
		}
		r.userIndex[user.ID] = len(r.users)
		r.users = append(r.users, user)
	}
	return r, nil
}

// LoadCatalogFile reads a YAML catalog from disk.
func LoadCatalogFile(path string) (*CatalogRepository, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	var data CatalogData
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("parse catalog %s: %w", path, err)
	}
	return NewCatalogRepository(data)
}

// DefaultCatalogData is the reference set shipped with the service: three
// overhead lines, one master and two line workers.
func DefaultCatalogData() CatalogData {
	return CatalogData{
		Objects: []models.Object{
			{ID: "1", Name: "ВЛ-10кВ Линия-01", Locations: []models.Location{
				{ID: "1-1", Name: "Опора №1"},
				{ID: "1-2", Name: "Пролет 1-2"},
				{ID: "1-3", Name: "Опора №2"},
				{ID: "1-4", Name: "Пролет 2-3"},
				{ID: "1-5", Name: "Опора №3"},
			}},
			{ID: "2", Name: "ВЛ-10кВ Линия-02", Locations: []models.Location{
				{ID: "2-1", Name: "Опора №1"},
				{ID: "2-2", Name: "Пролет 1-2"},
				{ID: "2-3", Name: "Опора №2"},
				{ID: "2-4", Name: "Пролет 2-3"},
				{ID: "2-5", Name: "Опора №3"},
			}},
			{ID: "3", Name: "ВЛ-6кВ Фидер-05", Locations: []models.Location{
				{ID: "3-1", Name: "Опора №1"},
				{ID: "3-2", Name: "Пролет 1-2"},
				{ID: "3-3", Name: "Опора №2"},
			}},
		},
		Users: []models.User{
			{ID: "1", Name: "Петров П.П.", Role: models.RoleMaster},
			{ID: "2", Name: "Иванов И.И.", Role: models.RoleWorker},
			{ID: "3", Name: "Сидоров С.С.", Role: models.RoleWorker},
		},
	}
}

// ObjectByID returns a copy of the object.
func (r *CatalogRepository) ObjectByID(id string) (models.Object, bool) {
	idx, ok := r.objectIndex[id]
	if !ok {
		return models.Object{}, false
	}
	return copyObject(r.objects[idx]), true
}

// UserByID returns the user with the given id.
func (r *CatalogRepository) UserByID(id string) (models.User, bool) {
	idx, ok := r.userIndex[id]
	if !ok {
		return models.User{}, false
	}
	return r.users[idx], true
}

// Objects lists all objects in declaration order.
func (r *CatalogRepository) Objects() []models.Object {
	out := make([]models.Object, len(r.objects))
	for i, obj := range r.objects {
		out[i] = copyObject(obj)
	}
	return out
}

// Users lists users in declaration order, optionally restricted to a role.
func (r *CatalogRepository) Users(role models.UserRole) []models.User {
	out := make([]models.User, 0, len(r.users))
	for _, u := range r.users {
		if role == "" || u.Role == role {
			out = append(out, u)
		}
	}
	return out
}

func copyObject(obj models.Object) models.Object {
	obj.Locations = append([]models.Location(nil), obj.Locations...)
	return obj
}
