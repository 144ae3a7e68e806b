package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/example/device-loans/internal/domain/device"
)

// DynamoDeviceStore implements DeviceStore on DynamoDB. Conditional
// PutItem on the version attribute provides the optimistic concurrency
// the delta applier relies on.
type DynamoDeviceStore struct {
	client    *dynamodb.Client
	tableName string
}

// dynamoDevice is the DynamoDB item shape for a device.
type dynamoDevice struct {
	ID          string `dynamodbav:"id"`
	Name        string `dynamodbav:"name"`
	Description string `dynamodbav:"description"`
	Count       int    `dynamodbav:"count"`
	Version     int    `dynamodbav:"version"`
	UpdatedAt   string `dynamodbav:"updated_at"`
}

func NewDynamoDeviceStore(client *dynamodb.Client, tableName string) *DynamoDeviceStore {
	return &DynamoDeviceStore{client: client, tableName: tableName}
}

func toDynamoDevice(d device.Device) dynamoDevice {
	return dynamoDevice{
		ID:          d.ID,
		Name:        d.Name,
		Description: d.Description,
		Count:       d.Count,
		Version:     d.Version,
		UpdatedAt:   d.UpdatedAt.Format(time.RFC3339Nano),
	}
}

func fromDynamoDevice(item dynamoDevice) (device.Device, error) {
	updatedAt, err := time.Parse(time.RFC3339Nano, item.UpdatedAt)
	if err != nil {
		return device.Device{}, fmt.Errorf("parse updated_at for device %q: %w", item.ID, err)
	}
	return device.Device{
		ID:          item.ID,
		Name:        item.Name,
		Description: item.Description,
		Count:       item.Count,
		Version:     item.Version,
		UpdatedAt:   updatedAt,
	}, nil
}

func (s *DynamoDeviceStore) GetByID(ctx context.Context, id string) (device.Device, error) {
	result, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
	})
	if err != nil {
		return device.Device{}, fmt.Errorf("get device %q: %w", id, err)
	}
	if result.Item == nil {
		return device.Device{}, device.ErrNotFound
	}

	var item dynamoDevice
	if err := attributevalue.UnmarshalMap(result.Item, &item); err != nil {
		return device.Device{}, fmt.Errorf("unmarshal device %q: %w", id, err)
	}
	return fromDynamoDevice(item)
}

func (s *DynamoDeviceStore) List(ctx context.Context) ([]device.Device, error) {
	var devices []device.Device

	paginator := dynamodb.NewScanPaginator(s.client, &dynamodb.ScanInput{
		TableName: aws.String(s.tableName),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("scan devices: %w", err)
		}

		var items []dynamoDevice
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &items); err != nil {
			return nil, fmt.Errorf("unmarshal devices: %w", err)
		}
		for _, item := range items {
			d, err := fromDynamoDevice(item)
			if err != nil {
				return nil, err
			}
			devices = append(devices, d)
		}
	}
	return devices, nil
}

func (s *DynamoDeviceStore) Save(ctx context.Context, d device.Device) error {
	av, err := attributevalue.MarshalMap(toDynamoDevice(d))
	if err != nil {
		return fmt.Errorf("marshal device %q: %w", d.ID, err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item:      av,
	})
	if err != nil {
		return fmt.Errorf("save device %q: %w", d.ID, err)
	}
	return nil
}

func (s *DynamoDeviceStore) Update(ctx context.Context, d device.Device, expectedVersion int) error {
	av, err := attributevalue.MarshalMap(toDynamoDevice(d))
	if err != nil {
		return fmt.Errorf("marshal device %q: %w", d.ID, err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.tableName),
		Item:                av,
		ConditionExpression: aws.String("attribute_exists(id) AND version = :v"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":v": &types.AttributeValueMemberN{Value: strconv.Itoa(expectedVersion)},
		},
	})
	if err != nil {
		var conditionFailed *types.ConditionalCheckFailedException
		if errors.As(err, &conditionFailed) {
			// The condition trips both when the record is missing and
			// when the version moved; re-read to tell the two apart.
			if _, getErr := s.GetByID(ctx, d.ID); errors.Is(getErr, device.ErrNotFound) {
				return device.ErrNotFound
			}
			return ErrVersionConflict
		}
		return fmt.Errorf("update device %q: %w", d.ID, err)
	}
	return nil
}

func (s *DynamoDeviceStore) Delete(ctx context.Context, id string) error {
	_, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
	})
	if err != nil {
		return fmt.Errorf("delete device %q: %w", id, err)
	}
	return nil
}
