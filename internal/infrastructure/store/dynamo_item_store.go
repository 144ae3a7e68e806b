package store

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/example/device-loans/internal/domain/item"
)

// DynamoItemStore implements ItemStore on DynamoDB.
type DynamoItemStore struct {
	client    *dynamodb.Client
	tableName string
}

type dynamoItem struct {
	ID          string `dynamodbav:"id"`
	Name        string `dynamodbav:"name"`
	Description string `dynamodbav:"description"`
	Status      string `dynamodbav:"status"`
	UpdatedAt   string `dynamodbav:"updated_at"`
}

func NewDynamoItemStore(client *dynamodb.Client, tableName string) *DynamoItemStore {
	return &DynamoItemStore{client: client, tableName: tableName}
}

func fromDynamoItem(di dynamoItem) (item.InventoryItem, error) {
	updatedAt, err := time.Parse(time.RFC3339Nano, di.UpdatedAt)
	if err != nil {
		return item.InventoryItem{}, fmt.Errorf("parse updated_at for item %q: %w", di.ID, err)
	}
	return item.InventoryItem{
		ID:          di.ID,
		Name:        di.Name,
		Description: di.Description,
		Status:      item.Status(di.Status),
		UpdatedAt:   updatedAt,
	}, nil
}

func (s *DynamoItemStore) GetByID(ctx context.Context, id string) (item.InventoryItem, error) {
	result, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
	})
	if err != nil {
		return item.InventoryItem{}, fmt.Errorf("get inventory item %q: %w", id, err)
	}
	if result.Item == nil {
		return item.InventoryItem{}, item.ErrNotFound
	}

	var di dynamoItem
	if err := attributevalue.UnmarshalMap(result.Item, &di); err != nil {
		return item.InventoryItem{}, fmt.Errorf("unmarshal inventory item %q: %w", id, err)
	}
	return fromDynamoItem(di)
}

func (s *DynamoItemStore) List(ctx context.Context) ([]item.InventoryItem, error) {
	var items []item.InventoryItem

	paginator := dynamodb.NewScanPaginator(s.client, &dynamodb.ScanInput{
		TableName: aws.String(s.tableName),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("scan inventory items: %w", err)
		}

		var dis []dynamoItem
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &dis); err != nil {
			return nil, fmt.Errorf("unmarshal inventory items: %w", err)
		}
		for _, di := range dis {
			it, err := fromDynamoItem(di)
			if err != nil {
				return nil, err
			}
			items = append(items, it)
		}
	}
	return items, nil
}

func (s *DynamoItemStore) Save(ctx context.Context, it item.InventoryItem) error {
	av, err := attributevalue.MarshalMap(dynamoItem{
		ID:          it.ID,
		Name:        it.Name,
		Description: it.Description,
		Status:      string(it.Status),
		UpdatedAt:   it.UpdatedAt.Format(time.RFC3339Nano),
	})
	if err != nil {
		return fmt.Errorf("marshal inventory item %q: %w", it.ID, err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item:      av,
	})
	if err != nil {
		return fmt.Errorf("save inventory item %q: %w", it.ID, err)
	}
	return nil
}

func (s *DynamoItemStore) Delete(ctx context.Context, id string) error {
	_, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
	})
	if err != nil {
		return fmt.Errorf("delete inventory item %q: %w", id, err)
	}
	return nil
}
