package services

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"measurebook/internal/models"
	"measurebook/internal/repositories"

	"github.com/stretchr/testify/mock"
)

type MockProjectRepository struct {
	mock.Mock
}

func (m *MockProjectRepository) Get(ctx context.Context, id int64) (*models.Project, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Project), args.Error(1)
}

func (m *MockProjectRepository) Put(ctx context.Context, project *models.Project) error {
	args := m.Called(ctx, project)
	return args.Error(0)
}

func (m *MockProjectRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockProjectRepository) List(ctx context.Context) ([]*models.Project, error) {
	args := m.Called(ctx)
	return args.Get(0).([]*models.Project), args.Error(1)
}

type MockCatalogRepository struct {
	mock.Mock
}

func (m *MockCatalogRepository) List(ctx context.Context) ([]models.CatalogProduct, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.CatalogProduct), args.Error(1)
}

func (m *MockCatalogRepository) Get(ctx context.Context, key string) (models.CatalogProduct, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(models.CatalogProduct), args.Error(1)
}

type MockCatalogCache struct {
	mock.Mock
}

func (m *MockCatalogCache) GetProduct(ctx context.Context, key string) (models.CatalogProduct, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(models.CatalogProduct), args.Error(1)
}

func (m *MockCatalogCache) SetProduct(ctx context.Context, key string, product models.CatalogProduct, ttl time.Duration) error {
	args := m.Called(ctx, key, product, ttl)
	return args.Error(0)
}

func (m *MockCatalogCache) GetAll(ctx context.Context) ([]models.CatalogProduct, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.CatalogProduct), args.Error(1)
}

func (m *MockCatalogCache) SetAll(ctx context.Context, products []models.CatalogProduct, ttl time.Duration) error {
	args := m.Called(ctx, products, ttl)
	return args.Error(0)
}

func (m *MockCatalogCache) Invalidate(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockCatalogCache) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type MockObjectStore struct {
	mock.Mock
}

func (m *MockObjectStore) PresignPut(ctx context.Context, key, contentType string, ttl time.Duration) (string, error) {
	args := m.Called(ctx, key, contentType, ttl)
	return args.String(0), args.Error(1)
}

func (m *MockObjectStore) PublicURL(key string) string {
	args := m.Called(key)
	return args.String(0)
}

func (m *MockObjectStore) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockObjectStore) KeyFromURL(rawURL string) (string, error) {
	args := m.Called(rawURL)
	return args.String(0), args.Error(1)
}

// memoryProjectRepo stores JSON copies so callers never share state with
// the stored document, as with the real backends.
type memoryProjectRepo struct {
	mu   sync.Mutex
	docs map[int64][]byte
	puts int
}

func newMemoryProjectRepo() *memoryProjectRepo {
	return &memoryProjectRepo{docs: map[int64][]byte{}}
}

func (r *memoryProjectRepo) Get(_ context.Context, id int64) (*models.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.docs[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	var p models.Project
	if err := json.Unmarshal(doc, &p); err != nil {
		return nil, err
	}
	p.Normalize()
	return &p, nil
}

func (r *memoryProjectRepo) Put(_ context.Context, project *models.Project) error {
	doc, err := json.Marshal(project)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.docs[project.ID] = doc
	r.puts++
	return nil
}

func (r *memoryProjectRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.docs, id)
	return nil
}

func (r *memoryProjectRepo) List(ctx context.Context) ([]*models.Project, error) {
	r.mu.Lock()
	ids := make([]int64, 0, len(r.docs))
	for id := range r.docs {
		ids = append(ids, id)
	}
	r.mu.Unlock()

	projects := []*models.Project{}
	for _, id := range ids {
		p, err := r.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, nil
}

func (r *memoryProjectRepo) raw(id int64) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return string(r.docs[id])
}
