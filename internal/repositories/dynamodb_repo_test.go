package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"

	"measurebook/internal/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeDynamo is an in-memory single-key table set good enough for GetItem,
// PutItem, DeleteItem and single-page Scan.
type fakeDynamo struct {
	mu     sync.Mutex
	keyOf  map[string]string // table -> key attribute
	tables map[string]map[string]map[string]types.AttributeValue
}

func newFakeDynamo() *fakeDynamo {
	return &fakeDynamo{
		keyOf:  map[string]string{"Projects": "id", "Products": "sku"},
		tables: map[string]map[string]map[string]types.AttributeValue{},
	}
}

func keyString(av types.AttributeValue) string {
	switch v := av.(type) {
	case *types.AttributeValueMemberN:
		return "N:" + v.Value
	case *types.AttributeValueMemberS:
		return "S:" + v.Value
	default:
		return fmt.Sprintf("%T", av)
	}
}

func (f *fakeDynamo) table(name string) map[string]map[string]types.AttributeValue {
	if f.tables[name] == nil {
		f.tables[name] = map[string]map[string]types.AttributeValue{}
	}
	return f.tables[name]
}

func (f *fakeDynamo) GetItem(_ context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	name := aws.ToString(in.TableName)
	return &dynamodb.GetItemOutput{Item: f.table(name)[keyString(in.Key[f.keyOf[name]])]}, nil
}

func (f *fakeDynamo) PutItem(_ context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	name := aws.ToString(in.TableName)
	f.table(name)[keyString(in.Item[f.keyOf[name]])] = in.Item
	return &dynamodb.PutItemOutput{}, nil
}

func (f *fakeDynamo) DeleteItem(_ context.Context, in *dynamodb.DeleteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	name := aws.ToString(in.TableName)
	delete(f.table(name), keyString(in.Key[f.keyOf[name]]))
	return &dynamodb.DeleteItemOutput{}, nil
}

func (f *fakeDynamo) Scan(_ context.Context, in *dynamodb.ScanInput, _ ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var items []map[string]types.AttributeValue
	for _, item := range f.table(aws.ToString(in.TableName)) {
		items = append(items, item)
	}
	return &dynamodb.ScanOutput{Items: items}, nil
}

func TestDynamoProjectRepo(t *testing.T) {
	fake := newFakeDynamo()
	repo := NewDynamoProjectRepo(fake, "Projects")
	ctx := context.Background()

	_, err := repo.Get(ctx, 1)
	assert.ErrorIs(t, err, ErrNotFound)

	p := sampleProject(1)
	require.NoError(t, repo.Put(ctx, p))

	item := fake.tables["Projects"]["N:1"]
	require.NotNil(t, item)

	got, err := repo.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, p.Name, got.Name)
	require.Len(t, got.Spaces, 1)
	require.Len(t, got.Spaces[0].Measurements, 1)
	m := got.Spaces[0].Measurements[0]
	require.NotNil(t, m.Quantity)
	assert.Equal(t, 2.0, *m.Quantity)
	require.Len(t, m.Products, 1)
	assert.Equal(t, "A1", m.Products[0].SKU.String())

	require.NoError(t, repo.Put(ctx, sampleProject(30)))
	all, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, int64(1), all[0].ID)
	assert.Equal(t, int64(30), all[1].ID)

	require.NoError(t, repo.Delete(ctx, 1))
	require.NoError(t, repo.Delete(ctx, 1))
	_, err = repo.Get(ctx, 1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDynamoProjectRepoNumericSKU(t *testing.T) {
	fake := newFakeDynamo()
	repo := NewDynamoProjectRepo(fake, "Projects")
	ctx := context.Background()

	var sku models.SKU
	require.NoError(t, sku.UnmarshalJSON([]byte(`10045`)))
	p := &models.Project{ID: 3, Name: "P", Spaces: []models.Space{{
		ID: 4, Name: "S", Measurements: []models.Measurement{{
			ID: 5, Name: "M", Products: []models.Product{models.NewProduct(sku, nil)},
		}},
	}}}
	require.NoError(t, repo.Put(ctx, p))

	got, err := repo.Get(ctx, 3)
	require.NoError(t, err)
	out, err := got.Spaces[0].Measurements[0].Products[0].SKU.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `10045`, string(out))
}

func TestDynamoProjectRepoKeepsUnknownKeys(t *testing.T) {
	fake := newFakeDynamo()
	repo := NewDynamoProjectRepo(fake, "Projects")
	ctx := context.Background()

	var p models.Project
	require.NoError(t, json.Unmarshal([]byte(`{"id": 8, "name": "P", "owner": "ana", "spaces": [
		{"id": 1, "name": "S", "floor": 2, "measurements": [
			{"id": 2, "name": "M", "products": [{"sku": "B2", "color": "red", "price": "$120"}]}
		]}
	]}`), &p))
	require.NoError(t, repo.Put(ctx, &p))
	assert.Equal(t, &types.AttributeValueMemberN{Value: "8"}, fake.tables["Projects"]["N:8"]["id"])

	got, err := repo.Get(ctx, 8)
	require.NoError(t, err)
	out, err := json.Marshal(got)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id": 8, "name": "P", "owner": "ana", "spaces": [
		{"id": 1, "name": "S", "floor": 2, "measurements": [
			{"id": 2, "name": "M", "quantity": null, "dimensions": null, "category": null,
			 "products": [{"sku": "B2", "color": "red", "price": "$120"}]}
		]}
	]}`, string(out))
}

func TestDynamoCatalogRepo(t *testing.T) {
	fake := newFakeDynamo()
	fake.table("Products")["N:10045"] = map[string]types.AttributeValue{
		"sku":   &types.AttributeValueMemberN{Value: "10045"},
		"item":  &types.AttributeValueMemberS{Value: "Pendant"},
		"price": &types.AttributeValueMemberN{Value: "120.50"},
	}
	fake.table("Products")["S:AB-7"] = map[string]types.AttributeValue{
		"sku":  &types.AttributeValueMemberS{Value: "AB-7"},
		"item": &types.AttributeValueMemberS{Value: "Sconce"},
	}
	repo := NewDynamoCatalogRepo(fake, "Products")
	ctx := context.Background()

	got, err := repo.Get(ctx, "10045")
	require.NoError(t, err)
	assert.Equal(t, "Pendant", got["item"])
	assert.Equal(t, "10045", got.SKU())
	assert.Equal(t, "120.50", fmt.Sprint(got["price"]))

	got, err = repo.Get(ctx, "AB-7")
	require.NoError(t, err)
	assert.Equal(t, "Sconce", got["item"])

	_, err = repo.Get(ctx, "404")
	assert.ErrorIs(t, err, ErrNotFound)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
