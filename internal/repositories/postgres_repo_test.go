package repositories

import (
	"context"
	"errors"
	"testing"

	pgx "github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type PostgresRepoTestSuite struct {
	suite.Suite
	mock     pgxmock.PgxPoolIface
	projects ProjectRepository
	catalog  CatalogRepository
	context  context.Context
}

func (suite *PostgresRepoTestSuite) SetupTest() {
	mock, err := pgxmock.NewPool()
	assert.NoError(suite.T(), err)
	suite.mock = mock
	suite.projects = NewPostgresProjectRepo(mock)
	suite.catalog = NewPostgresCatalogRepo(mock)
	suite.context = context.Background()
}

func (suite *PostgresRepoTestSuite) TearDownTest() {
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
	suite.mock.Close()
}

func TestPostgresRepoTestSuite(t *testing.T) {
	suite.Run(t, new(PostgresRepoTestSuite))
}

func (suite *PostgresRepoTestSuite) TestGet_Success() {
	doc := []byte(`{"id": 42, "name": "Loft", "spaces": [{"id": 43, "name": "Bath", "measurements": null}]}`)
	suite.mock.ExpectQuery(`SELECT document FROM projects WHERE id = \$1`).
		WithArgs(int64(42)).
		WillReturnRows(pgxmock.NewRows([]string{"document"}).AddRow(doc))

	p, err := suite.projects.Get(suite.context, 42)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "Loft", p.Name)
	assert.NotNil(suite.T(), p.Spaces[0].Measurements)
}

func (suite *PostgresRepoTestSuite) TestGet_NotFound() {
	suite.mock.ExpectQuery(`SELECT document FROM projects WHERE id = \$1`).
		WithArgs(int64(7)).
		WillReturnError(pgx.ErrNoRows)

	_, err := suite.projects.Get(suite.context, 7)
	assert.ErrorIs(suite.T(), err, ErrNotFound)
}

func (suite *PostgresRepoTestSuite) TestGet_DatabaseError() {
	suite.mock.ExpectQuery(`SELECT document FROM projects WHERE id = \$1`).
		WithArgs(int64(7)).
		WillReturnError(errors.New("connection reset"))

	_, err := suite.projects.Get(suite.context, 7)
	assert.Error(suite.T(), err)
	assert.NotErrorIs(suite.T(), err, ErrNotFound)
}

func (suite *PostgresRepoTestSuite) TestPut_Upserts() {
	suite.mock.ExpectExec(`INSERT INTO projects \(id, document\)\s+VALUES \(\$1, \$2\)\s+ON CONFLICT \(id\) DO UPDATE SET document = EXCLUDED.document`).
		WithArgs(int64(1), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := suite.projects.Put(suite.context, sampleProject(1))
	assert.NoError(suite.T(), err)
}

func (suite *PostgresRepoTestSuite) TestDelete() {
	suite.mock.ExpectExec(`DELETE FROM projects WHERE id = \$1`).
		WithArgs(int64(9)).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	assert.NoError(suite.T(), suite.projects.Delete(suite.context, 9))
}

func (suite *PostgresRepoTestSuite) TestList() {
	rows := pgxmock.NewRows([]string{"document"}).
		AddRow([]byte(`{"id": 1, "name": "A", "spaces": []}`)).
		AddRow([]byte(`{"id": 2, "name": "B", "spaces": []}`))
	suite.mock.ExpectQuery(`SELECT document FROM projects ORDER BY id`).WillReturnRows(rows)

	projects, err := suite.projects.List(suite.context)
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), projects, 2)
	assert.Equal(suite.T(), "B", projects[1].Name)
}

func (suite *PostgresRepoTestSuite) TestCatalogGet() {
	suite.mock.ExpectQuery(`SELECT document FROM catalog_products`).
		WithArgs("10045").
		WillReturnRows(pgxmock.NewRows([]string{"document"}).
			AddRow([]byte(`{"sku": 10045, "item": "Pendant", "price": 99.5}`)))

	p, err := suite.catalog.Get(suite.context, "10045")
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "10045", p.SKU())
	assert.Equal(suite.T(), "Pendant", p["item"])
}

func (suite *PostgresRepoTestSuite) TestCatalogGet_NotFound() {
	suite.mock.ExpectQuery(`SELECT document FROM catalog_products`).
		WithArgs("nope").
		WillReturnError(pgx.ErrNoRows)

	_, err := suite.catalog.Get(suite.context, "nope")
	assert.ErrorIs(suite.T(), err, ErrNotFound)
}

func (suite *PostgresRepoTestSuite) TestEnsureSchema() {
	for range postgresSchema {
		suite.mock.ExpectExec(`CREATE`).WillReturnResult(pgxmock.NewResult("CREATE", 0))
	}
	assert.NoError(suite.T(), EnsurePostgresSchema(suite.context, suite.mock))
}
