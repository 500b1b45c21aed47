package services

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"measurebook/internal/models"
	"measurebook/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type ProjectServiceTestSuite struct {
	suite.Suite
	repo    *memoryProjectRepo
	store   *MockObjectStore
	service *projectService
	ctx     context.Context
}

func (suite *ProjectServiceTestSuite) SetupTest() {
	suite.repo = newMemoryProjectRepo()
	suite.store = &MockObjectStore{}
	suite.service = NewProjectService(suite.repo, suite.store, SequentialIDs(100), 5*time.Minute).(*projectService)
	suite.service.now = func() time.Time { return time.UnixMilli(1700000000000) }
	suite.ctx = context.Background()
}

func (suite *ProjectServiceTestSuite) TearDownTest() {
	suite.store.AssertExpectations(suite.T())
}

func TestProjectServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ProjectServiceTestSuite))
}

func (suite *ProjectServiceTestSuite) seed() *models.Project {
	p, err := suite.service.Create(suite.ctx, models.ProjectInput{
		ID:     1,
		Name:   "Loft",
		Spaces: []models.SpaceName{"Kitchen"},
	})
	require.NoError(suite.T(), err)
	return p
}

func (suite *ProjectServiceTestSuite) TestCreate_HonoursIDAndBuildsSpaces() {
	p := suite.seed()
	assert.Equal(suite.T(), int64(1), p.ID)
	require.Len(suite.T(), p.Spaces, 1)
	assert.Equal(suite.T(), int64(100), p.Spaces[0].ID)
	assert.Equal(suite.T(), "Kitchen", p.Spaces[0].Name)
	assert.NotNil(suite.T(), p.Spaces[0].Measurements)

	got, err := suite.service.Get(suite.ctx, 1)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), p, got)
}

func (suite *ProjectServiceTestSuite) TestCreate_GeneratesID() {
	p, err := suite.service.Create(suite.ctx, models.ProjectInput{Name: "Barn"})
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), int64(100), p.ID)
	assert.Empty(suite.T(), p.Spaces)
}

func (suite *ProjectServiceTestSuite) TestCreate_DuplicateID() {
	suite.seed()
	_, err := suite.service.Create(suite.ctx, models.ProjectInput{ID: 1, Name: "Again"})
	var verr *models.ValidationError
	assert.ErrorAs(suite.T(), err, &verr)
}

func (suite *ProjectServiceTestSuite) TestCreate_RequiresName() {
	_, err := suite.service.Create(suite.ctx, models.ProjectInput{Name: "  "})
	var verr *models.ValidationError
	assert.ErrorAs(suite.T(), err, &verr)
}

func (suite *ProjectServiceTestSuite) TestGet_NotFound() {
	_, err := suite.service.Get(suite.ctx, 404)
	assert.ErrorIs(suite.T(), err, ErrProjectNotFound)
}

func (suite *ProjectServiceTestSuite) TestUpdate_Name() {
	suite.seed()
	patch, err := models.ParseProjectPatch([]byte(`{"name": "Attic"}`))
	require.NoError(suite.T(), err)

	p, err := suite.service.Update(suite.ctx, 1, patch)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "Attic", p.Name)
	assert.Len(suite.T(), p.Spaces, 1)
}

func (suite *ProjectServiceTestSuite) TestCreate_RejectsNegativeIDs() {
	assertInvalidID := func(err error) {
		var verr *models.ValidationError
		require.ErrorAs(suite.T(), err, &verr)
		assert.Equal(suite.T(), "Invalid id", verr.Message)
	}

	_, err := suite.service.Create(suite.ctx, models.ProjectInput{ID: -5, Name: "P"})
	assertInvalidID(err)
	_, err = suite.service.Get(suite.ctx, -5)
	assert.ErrorIs(suite.T(), err, ErrProjectNotFound)

	p := suite.seed()
	puts := suite.repo.puts
	_, err = suite.service.AddSpace(suite.ctx, 1, models.SpaceInput{ID: -1, Name: "Bath"})
	assertInvalidID(err)
	_, err = suite.service.AddMeasurement(suite.ctx, 1, p.Spaces[0].ID, models.MeasurementInput{ID: -2, Name: "Sink"})
	assertInvalidID(err)
	assert.Equal(suite.T(), puts, suite.repo.puts)
}

func (suite *ProjectServiceTestSuite) TestRoundTrip() {
	suite.seed()
	space, err := suite.service.AddSpace(suite.ctx, 1, models.SpaceInput{Name: "Bath"})
	require.NoError(suite.T(), err)

	qty := 2.0
	m, err := suite.service.AddMeasurement(suite.ctx, 1, space.ID, models.MeasurementInput{Name: "Vanity", Quantity: &qty})
	require.NoError(suite.T(), err)
	assert.NotNil(suite.T(), m.Products)

	_, err = suite.service.AddProduct(suite.ctx, 1, space.ID, m.ID, models.NewProduct(models.NewSKU("A1"), map[string]any{"item": "Basin", "finish": "matte"}))
	require.NoError(suite.T(), err)

	got, err := suite.service.Get(suite.ctx, 1)
	require.NoError(suite.T(), err)
	require.Len(suite.T(), got.Spaces, 2)
	products := got.Spaces[1].Measurements[0].Products
	require.Len(suite.T(), products, 1)
	assert.Equal(suite.T(), "A1", products[0].SKU.String())
	assert.Equal(suite.T(), "Basin", products[0].Text("item"))
	assert.Equal(suite.T(), "matte", products[0].Text("finish"))
}

func (suite *ProjectServiceTestSuite) TestAddSpace_ProjectNotFound() {
	_, err := suite.service.AddSpace(suite.ctx, 9, models.SpaceInput{Name: "Bath"})
	assert.ErrorIs(suite.T(), err, ErrProjectNotFound)
}

func (suite *ProjectServiceTestSuite) TestUpdateSpace_NotFound() {
	suite.seed()
	patch, _ := models.ParseSpacePatch([]byte(`{"name": "x"}`))
	_, err := suite.service.UpdateSpace(suite.ctx, 1, 999, patch)
	assert.ErrorIs(suite.T(), err, ErrSpaceNotFound)
}

func (suite *ProjectServiceTestSuite) TestDeletes_AreIdempotent() {
	p := suite.seed()
	spaceID := p.Spaces[0].ID
	m, err := suite.service.AddMeasurement(suite.ctx, 1, spaceID, models.MeasurementInput{Name: "Window"})
	require.NoError(suite.T(), err)
	before := suite.repo.raw(1)

	assert.NoError(suite.T(), suite.service.RemoveProduct(suite.ctx, 1, spaceID, m.ID, models.NewSKU("nope")))
	assert.NoError(suite.T(), suite.service.DeleteMeasurement(suite.ctx, 1, spaceID, 424242))
	assert.NoError(suite.T(), suite.service.DeleteSpace(suite.ctx, 1, 424242))
	assert.JSONEq(suite.T(), before, suite.repo.raw(1))

	assert.NoError(suite.T(), suite.service.DeleteMeasurement(suite.ctx, 1, spaceID, m.ID))
	got, _ := suite.service.Get(suite.ctx, 1)
	assert.Empty(suite.T(), got.Spaces[0].Measurements)

	assert.NoError(suite.T(), suite.service.Delete(suite.ctx, 1))
	assert.NoError(suite.T(), suite.service.Delete(suite.ctx, 1))
}

func (suite *ProjectServiceTestSuite) TestDeleteMeasurement_SpaceMissing() {
	suite.seed()
	err := suite.service.DeleteMeasurement(suite.ctx, 1, 999, 1)
	assert.ErrorIs(suite.T(), err, ErrSpaceNotFound)
}

func (suite *ProjectServiceTestSuite) TestAddProduct_DuplicateSKUDoesNotWrite() {
	p := suite.seed()
	spaceID := p.Spaces[0].ID
	m, _ := suite.service.AddMeasurement(suite.ctx, 1, spaceID, models.MeasurementInput{Name: "Window"})

	var numeric models.SKU
	require.NoError(suite.T(), json.Unmarshal([]byte(`123`), &numeric))
	_, err := suite.service.AddProduct(suite.ctx, 1, spaceID, m.ID, models.Product{SKU: numeric})
	require.NoError(suite.T(), err)

	before := suite.repo.raw(1)
	puts := suite.repo.puts
	_, err = suite.service.AddProduct(suite.ctx, 1, spaceID, m.ID, models.Product{SKU: models.NewSKU("123")})
	var verr *models.ValidationError
	require.ErrorAs(suite.T(), err, &verr)
	assert.Equal(suite.T(), "Product already exists", verr.Message)
	assert.Equal(suite.T(), before, suite.repo.raw(1))
	assert.Equal(suite.T(), puts, suite.repo.puts)
}

func (suite *ProjectServiceTestSuite) TestAddProduct_RequiresSKU() {
	_, err := suite.service.AddProduct(suite.ctx, 1, 2, 3, models.NewProduct(models.SKU{}, map[string]any{"item": "Lamp"}))
	var verr *models.ValidationError
	assert.ErrorAs(suite.T(), err, &verr)
}

func (suite *ProjectServiceTestSuite) TestUpdateProduct() {
	p := suite.seed()
	spaceID := p.Spaces[0].ID
	m, _ := suite.service.AddMeasurement(suite.ctx, 1, spaceID, models.MeasurementInput{Name: "Window"})
	_, err := suite.service.AddProduct(suite.ctx, 1, spaceID, m.ID, models.NewProduct(models.NewSKU("A1"), map[string]any{"item": "Blind", "price": "$30"}))
	require.NoError(suite.T(), err)

	patch, err := models.ParseProductPatch([]byte(`{"price": 40}`))
	require.NoError(suite.T(), err)
	updated, err := suite.service.UpdateProduct(suite.ctx, 1, spaceID, m.ID, models.NewSKU("A1"), patch)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "Blind", updated.Text("item"))
	price, ok := updated.Number("price")
	require.True(suite.T(), ok)
	assert.Equal(suite.T(), 40.0, price)

	_, err = suite.service.UpdateProduct(suite.ctx, 1, spaceID, m.ID, models.NewSKU("B2"), patch)
	assert.ErrorIs(suite.T(), err, ErrProductNotFound)

	_, err = suite.service.UpdateProduct(suite.ctx, 1, spaceID, 999, models.NewSKU("A1"), patch)
	assert.ErrorIs(suite.T(), err, ErrMeasurementNotFound)
}

func (suite *ProjectServiceTestSuite) TestIssueSpaceUploadURL() {
	p := suite.seed()
	spaceID := p.Spaces[0].ID
	key := "spaces/100/1700000000000-photo.jpg"
	suite.store.On("PresignPut", mock.Anything, key, "application/octet-stream", 5*time.Minute).
		Return("https://signed.example/put", nil).Once()
	suite.store.On("PublicURL", key).Return("https://bucket.example/" + key).Once()

	out, err := suite.service.IssueSpaceUploadURL(suite.ctx, 1, spaceID, "photo.jpg", "")
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "https://signed.example/put", out.UploadURL)
	assert.Equal(suite.T(), "https://bucket.example/"+key, out.PublicURL)
}

func (suite *ProjectServiceTestSuite) TestIssueSpaceUploadURL_Validation() {
	_, err := suite.service.IssueSpaceUploadURL(suite.ctx, 1, 2, " ", "image/png")
	var verr *models.ValidationError
	require.ErrorAs(suite.T(), err, &verr)
	assert.Equal(suite.T(), "filename required", verr.Message)

	suite.seed()
	_, err = suite.service.IssueSpaceUploadURL(suite.ctx, 1, 999, "a.png", "image/png")
	assert.ErrorIs(suite.T(), err, ErrSpaceNotFound)
}

func (suite *ProjectServiceTestSuite) TestDeleteSpaceImage() {
	p := suite.seed()
	spaceID := p.Spaces[0].ID
	url := "https://bucket.example/spaces/100/1-a.jpg"
	patch, _ := models.ParseSpacePatch([]byte(`{"images": ["` + url + `", "https://bucket.example/keep.jpg"]}`))
	_, err := suite.service.UpdateSpace(suite.ctx, 1, spaceID, patch)
	require.NoError(suite.T(), err)

	suite.store.On("KeyFromURL", url).Return("spaces/100/1-a.jpg", nil).Once()
	suite.store.On("Delete", mock.Anything, "spaces/100/1-a.jpg").Return(nil).Once()

	require.NoError(suite.T(), suite.service.DeleteSpaceImage(suite.ctx, 1, spaceID, url))
	got, _ := suite.service.Get(suite.ctx, 1)
	assert.Equal(suite.T(), []string{"https://bucket.example/keep.jpg"}, got.Spaces[0].Images)
}

func (suite *ProjectServiceTestSuite) TestDeleteSpaceImage_UnknownSpaceKeepsObject() {
	suite.seed()
	err := suite.service.DeleteSpaceImage(suite.ctx, 1, 999, "https://bucket.example/x.jpg")
	assert.ErrorIs(suite.T(), err, ErrSpaceNotFound)

	err = suite.service.DeleteSpaceImage(suite.ctx, 404, 1, "https://bucket.example/x.jpg")
	assert.ErrorIs(suite.T(), err, ErrProjectNotFound)
	suite.store.AssertNotCalled(suite.T(), "Delete", mock.Anything, mock.Anything)
}

func (suite *ProjectServiceTestSuite) TestDeleteSpaceImage_UnreferencedURLKeepsObject() {
	p := suite.seed()
	spaceID := p.Spaces[0].ID
	patch, _ := models.ParseSpacePatch([]byte(`{"images": ["https://bucket.example/keep.jpg"]}`))
	_, err := suite.service.UpdateSpace(suite.ctx, 1, spaceID, patch)
	require.NoError(suite.T(), err)

	err = suite.service.DeleteSpaceImage(suite.ctx, 1, spaceID, "https://bucket.example/spaces/7/other.jpg")
	assert.ErrorIs(suite.T(), err, ErrImageNotFound)
	assert.True(suite.T(), IsNotFound(err))
	suite.store.AssertNotCalled(suite.T(), "KeyFromURL", mock.Anything)
	suite.store.AssertNotCalled(suite.T(), "Delete", mock.Anything, mock.Anything)

	got, _ := suite.service.Get(suite.ctx, 1)
	assert.Equal(suite.T(), []string{"https://bucket.example/keep.jpg"}, got.Spaces[0].Images)
}

func (suite *ProjectServiceTestSuite) TestDeleteSpaceImage_RequiresURL() {
	err := suite.service.DeleteSpaceImage(suite.ctx, 1, 1, "")
	var verr *models.ValidationError
	require.ErrorAs(suite.T(), err, &verr)
	assert.Equal(suite.T(), "url required", verr.Message)
}

func (suite *ProjectServiceTestSuite) TestConcurrentPatchesLastWriteWins() {
	suite.seed()
	names := []string{"North", "South"}
	var wg sync.WaitGroup
	for _, name := range names {
		wg.Add(1)
		go func(name string) {
			defer wg.Done()
			patch, _ := models.ParseProjectPatch([]byte(`{"name": "` + name + `"}`))
			_, err := suite.service.Update(suite.ctx, 1, patch)
			assert.NoError(suite.T(), err)
		}(name)
	}
	wg.Wait()

	got, err := suite.service.Get(suite.ctx, 1)
	require.NoError(suite.T(), err)
	assert.Contains(suite.T(), names, got.Name)
}

func TestProjectService_StorageFailures(t *testing.T) {
	ctx := context.Background()
	repo := &MockProjectRepository{}
	svc := NewProjectService(repo, nil, SequentialIDs(1), 0)

	repo.On("Get", ctx, int64(5)).Return(nil, errors.New("disk gone")).Once()
	_, err := svc.Get(ctx, 5)
	assert.Error(t, err)
	assert.False(t, IsNotFound(err))

	project := &models.Project{ID: 6, Name: "P", Spaces: []models.Space{}}
	repo.On("Get", ctx, int64(6)).Return(project, nil).Once()
	repo.On("Put", ctx, project).Return(errors.New("read-only file system")).Once()
	_, err = svc.AddSpace(ctx, 6, models.SpaceInput{Name: "Hall"})
	assert.ErrorContains(t, err, "read-only file system")

	repo.On("Get", ctx, int64(7)).Return(nil, repositories.ErrNotFound).Once()
	_, err = svc.Mutate(ctx, 7, func(*models.Project) error { return nil })
	assert.ErrorIs(t, err, ErrProjectNotFound)

	repo.AssertExpectations(t)
}

func TestProjectService_DisabledObjectStore(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryProjectRepo()
	svc := NewProjectService(repo, nil, SequentialIDs(10), 0)
	p, err := svc.Create(ctx, models.ProjectInput{ID: 1, Name: "P", Spaces: []models.SpaceName{"S"}})
	require.NoError(t, err)
	_, err = svc.AddSpace(ctx, 1, models.SpaceInput{ID: 50, Name: "Attic", Images: []string{"https://x/a.jpg"}})
	require.NoError(t, err)

	_, err = svc.IssueSpaceUploadURL(ctx, 1, p.Spaces[0].ID, "a.jpg", "")
	assert.ErrorIs(t, err, ErrObjectStoreDisabled)

	err = svc.DeleteSpaceImage(ctx, 1, 50, "https://x/a.jpg")
	assert.ErrorIs(t, err, ErrObjectStoreDisabled)
}
