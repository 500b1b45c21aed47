package repositories

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"measurebook/internal/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// DynamoDBAPI is the subset of *dynamodb.Client the table repositories use.
type DynamoDBAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

// dynamoProjectRepo stores one item per project keyed by numeric id.
// List is a full table scan with no paging exposed to callers.
type dynamoProjectRepo struct {
	client DynamoDBAPI
	table  string
}

func NewDynamoProjectRepo(client DynamoDBAPI, table string) ProjectRepository {
	return &dynamoProjectRepo{client: client, table: table}
}

func projectKey(id int64) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"id": &types.AttributeValueMemberN{Value: strconv.FormatInt(id, 10)},
	}
}

func (r *dynamoProjectRepo) Get(ctx context.Context, id int64) (*models.Project, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.table),
		Key:       projectKey(id),
	})
	if err != nil {
		return nil, err
	}
	if len(out.Item) == 0 {
		return nil, ErrNotFound
	}

	p, err := decodeProjectItem(out.Item)
	if err != nil {
		return nil, fmt.Errorf("decode project %d: %w", id, err)
	}
	return p, nil
}

func (r *dynamoProjectRepo) Put(ctx context.Context, project *models.Project) error {
	item, err := encodeProjectItem(project)
	if err != nil {
		return fmt.Errorf("encode project %d: %w", project.ID, err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.table),
		Item:      item,
	})
	return err
}

func (r *dynamoProjectRepo) Delete(ctx context.Context, id int64) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.table),
		Key:       projectKey(id),
	})
	return err
}

func (r *dynamoProjectRepo) List(ctx context.Context) ([]*models.Project, error) {
	projects := []*models.Project{}
	paginator := dynamodb.NewScanPaginator(r.client, &dynamodb.ScanInput{
		TableName: aws.String(r.table),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, item := range page.Items {
			p, err := decodeProjectItem(item)
			if err != nil {
				return nil, fmt.Errorf("decode projects: %w", err)
			}
			projects = append(projects, p)
		}
	}
	sort.Slice(projects, func(i, j int) bool { return projects[i].ID < projects[j].ID })
	return projects, nil
}

// Items mirror the project's JSON document, so keys the model does not
// declare survive a rewrite. json.Number values encode as N attributes.
func encodeProjectItem(project *models.Project) (map[string]types.AttributeValue, error) {
	data, err := json.Marshal(project)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var doc map[string]any
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}
	return attributevalue.MarshalMap(doc)
}

func decodeProjectItem(item map[string]types.AttributeValue) (*models.Project, error) {
	var doc map[string]any
	err := attributevalue.UnmarshalMapWithOptions(item, &doc, func(o *attributevalue.DecoderOptions) {
		o.UseNumber = true
	})
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(jsonNumbers(doc))
	if err != nil {
		return nil, err
	}
	var p models.Project
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, err
	}
	p.Normalize()
	return &p, nil
}
