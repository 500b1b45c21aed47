package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"measurebook/internal/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// dynamoCatalogRepo reads the Products table, keyed by sku. The ingestion
// job writes numeric skus as numbers, so lookups try the number form first.
type dynamoCatalogRepo struct {
	client DynamoDBAPI
	table  string
}

func NewDynamoCatalogRepo(client DynamoDBAPI, table string) CatalogRepository {
	return &dynamoCatalogRepo{client: client, table: table}
}

func (r *dynamoCatalogRepo) List(ctx context.Context) ([]models.CatalogProduct, error) {
	products := []models.CatalogProduct{}
	paginator := dynamodb.NewScanPaginator(r.client, &dynamodb.ScanInput{
		TableName: aws.String(r.table),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, item := range page.Items {
			p, err := decodeCatalogItem(item)
			if err != nil {
				return nil, err
			}
			products = append(products, p)
		}
	}
	return products, nil
}

func (r *dynamoCatalogRepo) Get(ctx context.Context, key string) (models.CatalogProduct, error) {
	var candidates []types.AttributeValue
	if _, err := strconv.ParseFloat(key, 64); err == nil {
		candidates = append(candidates, &types.AttributeValueMemberN{Value: key})
	}
	candidates = append(candidates, &types.AttributeValueMemberS{Value: key})

	for _, sku := range candidates {
		out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
			TableName: aws.String(r.table),
			Key:       map[string]types.AttributeValue{"sku": sku},
		})
		if err != nil {
			return nil, err
		}
		if len(out.Item) > 0 {
			return decodeCatalogItem(out.Item)
		}
	}
	return nil, ErrNotFound
}

func decodeCatalogItem(item map[string]types.AttributeValue) (models.CatalogProduct, error) {
	var raw map[string]any
	err := attributevalue.UnmarshalMapWithOptions(item, &raw, func(o *attributevalue.DecoderOptions) {
		o.UseNumber = true
	})
	if err != nil {
		return nil, fmt.Errorf("decode catalog product: %w", err)
	}
	return models.CatalogProduct(jsonNumbers(raw).(map[string]any)), nil
}

// jsonNumbers rewrites DynamoDB numbers as json.Number so they are served as
// JSON numbers with their original precision.
func jsonNumbers(v any) any {
	switch t := v.(type) {
	case attributevalue.Number:
		return json.Number(t)
	case map[string]any:
		for k, inner := range t {
			t[k] = jsonNumbers(inner)
		}
		return t
	case []any:
		for i, inner := range t {
			t[i] = jsonNumbers(inner)
		}
		return t
	default:
		return v
	}
}
