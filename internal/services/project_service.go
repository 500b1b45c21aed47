package services

import (
	"context"
	"errors"
	"fmt"
	"path"
	"slices"
	"strings"
	"time"

	"measurebook/internal/models"
	"measurebook/internal/repositories"
)

const defaultUploadContentType = "application/octet-stream"

// ProjectService owns every change to a project document. Each operation
// loads the whole document, changes it in memory and writes it back.
type ProjectService interface {
	List(ctx context.Context) ([]*models.Project, error)
	Get(ctx context.Context, id int64) (*models.Project, error)
	Create(ctx context.Context, input models.ProjectInput) (*models.Project, error)
	Update(ctx context.Context, id int64, patch models.ProjectPatch) (*models.Project, error)
	Delete(ctx context.Context, id int64) error

	// Mutate is the transaction boundary: fn runs against the loaded
	// document and the result is persisted only when fn returns nil.
	// Concurrent mutations of one project are last-write-wins.
	Mutate(ctx context.Context, id int64, fn func(*models.Project) error) (*models.Project, error)

	AddSpace(ctx context.Context, projectID int64, input models.SpaceInput) (*models.Space, error)
	UpdateSpace(ctx context.Context, projectID, spaceID int64, patch models.SpacePatch) (*models.Space, error)
	DeleteSpace(ctx context.Context, projectID, spaceID int64) error
	IssueSpaceUploadURL(ctx context.Context, projectID, spaceID int64, filename, contentType string) (*models.UploadURL, error)
	DeleteSpaceImage(ctx context.Context, projectID, spaceID int64, imageURL string) error

	AddMeasurement(ctx context.Context, projectID, spaceID int64, input models.MeasurementInput) (*models.Measurement, error)
	UpdateMeasurement(ctx context.Context, projectID, spaceID, measurementID int64, patch models.MeasurementPatch) (*models.Measurement, error)
	DeleteMeasurement(ctx context.Context, projectID, spaceID, measurementID int64) error

	AddProduct(ctx context.Context, projectID, spaceID, measurementID int64, product models.Product) (*models.Product, error)
	UpdateProduct(ctx context.Context, projectID, spaceID, measurementID int64, sku models.SKU, patch models.ProductPatch) (*models.Product, error)
	RemoveProduct(ctx context.Context, projectID, spaceID, measurementID int64, sku models.SKU) error
}

type projectService struct {
	repo      repositories.ProjectRepository
	store     ObjectStore
	nextID    IDGenerator
	uploadTTL time.Duration
	now       func() time.Time
}

func NewProjectService(repo repositories.ProjectRepository, store ObjectStore, ids IDGenerator, uploadTTL time.Duration) ProjectService {
	if store == nil {
		store = NewDisabledObjectStore()
	}
	if ids == nil {
		ids = TimestampIDs()
	}
	if uploadTTL <= 0 {
		uploadTTL = 5 * time.Minute
	}
	return &projectService{
		repo:      repo,
		store:     store,
		nextID:    ids,
		uploadTTL: uploadTTL,
		now:       time.Now,
	}
}

func (s *projectService) List(ctx context.Context) ([]*models.Project, error) {
	return s.repo.List(ctx)
}

func (s *projectService) Get(ctx context.Context, id int64) (*models.Project, error) {
	project, err := s.repo.Get(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrProjectNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load project %d: %w", id, err)
	}
	return project, nil
}

// checkCallerID rejects ids the path parser would never accept, so a
// created node can always be addressed afterwards.
func checkCallerID(id int64) error {
	if id < 0 {
		return models.NewValidationError("Invalid id")
	}
	return nil
}

func (s *projectService) Create(ctx context.Context, input models.ProjectInput) (*models.Project, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, models.NewValidationError("name is required")
	}
	if err := checkCallerID(input.ID); err != nil {
		return nil, err
	}

	id := input.ID
	if id != 0 {
		if _, err := s.repo.Get(ctx, id); err == nil {
			return nil, models.NewValidationError("Project already exists")
		} else if !errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("load project %d: %w", id, err)
		}
	} else {
		id = s.nextID()
	}

	project := &models.Project{ID: id, Name: name, Spaces: []models.Space{}}
	for _, spaceName := range input.Spaces {
		project.Spaces = append(project.Spaces, models.Space{
			ID:           s.siblingID(func(id int64) bool { return project.FindSpace(id) != nil }),
			Name:         string(spaceName),
			Measurements: []models.Measurement{},
		})
	}

	if err := s.repo.Put(ctx, project); err != nil {
		return nil, fmt.Errorf("save project %d: %w", id, err)
	}
	return project, nil
}

func (s *projectService) Update(ctx context.Context, id int64, patch models.ProjectPatch) (*models.Project, error) {
	return s.Mutate(ctx, id, func(p *models.Project) error {
		patch.Apply(p)
		return nil
	})
}

func (s *projectService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete project %d: %w", id, err)
	}
	return nil
}

func (s *projectService) Mutate(ctx context.Context, id int64, fn func(*models.Project) error) (*models.Project, error) {
	project, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(project); err != nil {
		return nil, err
	}
	if err := s.repo.Put(ctx, project); err != nil {
		return nil, fmt.Errorf("save project %d: %w", id, err)
	}
	return project, nil
}

// siblingID draws generated ids until one is free among the siblings.
func (s *projectService) siblingID(taken func(int64) bool) int64 {
	for {
		if id := s.nextID(); !taken(id) {
			return id
		}
	}
}

func findSpace(p *models.Project, spaceID int64) (*models.Space, error) {
	space := p.FindSpace(spaceID)
	if space == nil {
		return nil, ErrSpaceNotFound
	}
	return space, nil
}

func findMeasurement(p *models.Project, spaceID, measurementID int64) (*models.Measurement, error) {
	space, err := findSpace(p, spaceID)
	if err != nil {
		return nil, err
	}
	m := space.FindMeasurement(measurementID)
	if m == nil {
		return nil, ErrMeasurementNotFound
	}
	return m, nil
}

func (s *projectService) AddSpace(ctx context.Context, projectID int64, input models.SpaceInput) (*models.Space, error) {
	var created models.Space
	_, err := s.Mutate(ctx, projectID, func(p *models.Project) error {
		name := strings.TrimSpace(input.Name)
		if name == "" {
			return models.NewValidationError("name is required")
		}
		if err := checkCallerID(input.ID); err != nil {
			return err
		}
		id := input.ID
		if id != 0 && p.FindSpace(id) != nil {
			return models.NewValidationError("Space already exists")
		}
		if id == 0 {
			id = s.siblingID(func(id int64) bool { return p.FindSpace(id) != nil })
		}
		created = models.Space{
			ID:           id,
			Name:         name,
			Measurements: []models.Measurement{},
			Images:       input.Images,
		}
		p.Spaces = append(p.Spaces, created)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (s *projectService) UpdateSpace(ctx context.Context, projectID, spaceID int64, patch models.SpacePatch) (*models.Space, error) {
	var updated models.Space
	_, err := s.Mutate(ctx, projectID, func(p *models.Project) error {
		space, err := findSpace(p, spaceID)
		if err != nil {
			return err
		}
		patch.Apply(space)
		updated = *space
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (s *projectService) DeleteSpace(ctx context.Context, projectID, spaceID int64) error {
	_, err := s.Mutate(ctx, projectID, func(p *models.Project) error {
		p.RemoveSpace(spaceID)
		return nil
	})
	return err
}

func (s *projectService) IssueSpaceUploadURL(ctx context.Context, projectID, spaceID int64, filename, contentType string) (*models.UploadURL, error) {
	filename = strings.TrimSpace(filename)
	if filename == "" {
		return nil, models.NewValidationError("filename required")
	}
	project, err := s.Get(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if _, err := findSpace(project, spaceID); err != nil {
		return nil, err
	}

	if strings.TrimSpace(contentType) == "" {
		contentType = defaultUploadContentType
	}
	key := fmt.Sprintf("spaces/%d/%d-%s", spaceID, s.now().UnixMilli(), path.Base(filename))
	uploadURL, err := s.store.PresignPut(ctx, key, contentType, s.uploadTTL)
	if err != nil {
		return nil, fmt.Errorf("presign upload for %s: %w", key, err)
	}
	return &models.UploadURL{UploadURL: uploadURL, PublicURL: s.store.PublicURL(key)}, nil
}

// DeleteSpaceImage resolves the space and the image before touching the
// object store, so only objects the space references are ever deleted.
func (s *projectService) DeleteSpaceImage(ctx context.Context, projectID, spaceID int64, imageURL string) error {
	imageURL = strings.TrimSpace(imageURL)
	if imageURL == "" {
		return models.NewValidationError("url required")
	}
	_, err := s.Mutate(ctx, projectID, func(p *models.Project) error {
		space, err := findSpace(p, spaceID)
		if err != nil {
			return err
		}
		if !slices.Contains(space.Images, imageURL) {
			return ErrImageNotFound
		}
		key, err := s.store.KeyFromURL(imageURL)
		if errors.Is(err, ErrObjectStoreDisabled) {
			return err
		}
		if err != nil {
			return models.NewValidationError("invalid image url")
		}
		if err := s.store.Delete(ctx, key); err != nil {
			return fmt.Errorf("delete object %s: %w", key, err)
		}
		space.RemoveImage(imageURL)
		return nil
	})
	return err
}

func (s *projectService) AddMeasurement(ctx context.Context, projectID, spaceID int64, input models.MeasurementInput) (*models.Measurement, error) {
	var created models.Measurement
	_, err := s.Mutate(ctx, projectID, func(p *models.Project) error {
		space, err := findSpace(p, spaceID)
		if err != nil {
			return err
		}
		name := strings.TrimSpace(input.Name)
		if name == "" {
			return models.NewValidationError("name is required")
		}
		if err := checkCallerID(input.ID); err != nil {
			return err
		}
		id := input.ID
		if id != 0 && space.FindMeasurement(id) != nil {
			return models.NewValidationError("Measurement already exists")
		}
		if id == 0 {
			id = s.siblingID(func(id int64) bool { return space.FindMeasurement(id) != nil })
		}
		created = models.Measurement{
			ID:         id,
			Name:       name,
			Quantity:   input.Quantity,
			Dimensions: input.Dimensions,
			Category:   input.Category,
			Note:       input.Note,
			Images:     input.Images,
			Products:   []models.Product{},
		}
		space.Measurements = append(space.Measurements, created)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (s *projectService) UpdateMeasurement(ctx context.Context, projectID, spaceID, measurementID int64, patch models.MeasurementPatch) (*models.Measurement, error) {
	var updated models.Measurement
	_, err := s.Mutate(ctx, projectID, func(p *models.Project) error {
		m, err := findMeasurement(p, spaceID, measurementID)
		if err != nil {
			return err
		}
		patch.Apply(m)
		updated = *m
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (s *projectService) DeleteMeasurement(ctx context.Context, projectID, spaceID, measurementID int64) error {
	_, err := s.Mutate(ctx, projectID, func(p *models.Project) error {
		space, err := findSpace(p, spaceID)
		if err != nil {
			return err
		}
		space.RemoveMeasurement(measurementID)
		return nil
	})
	return err
}

// AddProduct embeds a product under a measurement. The sku is the product's
// key and must be unique within the measurement on every storage backend.
func (s *projectService) AddProduct(ctx context.Context, projectID, spaceID, measurementID int64, product models.Product) (*models.Product, error) {
	if product.SKU.IsZero() {
		return nil, models.NewValidationError("sku is required")
	}
	_, err := s.Mutate(ctx, projectID, func(p *models.Project) error {
		m, err := findMeasurement(p, spaceID, measurementID)
		if err != nil {
			return err
		}
		if m.FindProduct(product.SKU) != nil {
			return models.NewValidationError("Product already exists")
		}
		m.Products = append(m.Products, product)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (s *projectService) UpdateProduct(ctx context.Context, projectID, spaceID, measurementID int64, sku models.SKU, patch models.ProductPatch) (*models.Product, error) {
	var updated models.Product
	_, err := s.Mutate(ctx, projectID, func(p *models.Project) error {
		m, err := findMeasurement(p, spaceID, measurementID)
		if err != nil {
			return err
		}
		product := m.FindProduct(sku)
		if product == nil {
			return ErrProductNotFound
		}
		patch.Apply(product)
		updated = *product
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (s *projectService) RemoveProduct(ctx context.Context, projectID, spaceID, measurementID int64, sku models.SKU) error {
	_, err := s.Mutate(ctx, projectID, func(p *models.Project) error {
		m, err := findMeasurement(p, spaceID, measurementID)
		if err != nil {
			return err
		}
		m.RemoveProduct(sku)
		return nil
	})
	return err
}
