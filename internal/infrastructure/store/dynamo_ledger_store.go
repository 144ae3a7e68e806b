package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/example/device-loans/internal/domain/ledger"
)

// DynamoLedgerStore implements LedgerStore on DynamoDB.
type DynamoLedgerStore struct {
	client    *dynamodb.Client
	tableName string
}

type dynamoLedgerRecord struct {
	ID          string `dynamodbav:"id"`
	ProcessedAt string `dynamodbav:"processed_at"`
	Type        string `dynamodbav:"event_type,omitempty"`
	Subject     string `dynamodbav:"subject,omitempty"`
}

func NewDynamoLedgerStore(client *dynamodb.Client, tableName string) *DynamoLedgerStore {
	return &DynamoLedgerStore{client: client, tableName: tableName}
}

func (s *DynamoLedgerStore) Has(ctx context.Context, eventID string) (bool, error) {
	result, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: eventID},
		},
		ProjectionExpression: aws.String("id"),
	})
	if err != nil {
		return false, fmt.Errorf("check processed event %q: %w", eventID, err)
	}
	return result.Item != nil, nil
}

// MarkProcessed writes the record with a not-exists condition so the
// first writer wins and duplicate marks are absorbed.
func (s *DynamoLedgerStore) MarkProcessed(ctx context.Context, rec ledger.Record) error {
	av, err := attributevalue.MarshalMap(dynamoLedgerRecord{
		ID:          rec.ID,
		ProcessedAt: rec.ProcessedAt.Format(time.RFC3339Nano),
		Type:        rec.Type,
		Subject:     rec.Subject,
	})
	if err != nil {
		return fmt.Errorf("marshal processed event %q: %w", rec.ID, err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.tableName),
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(id)"),
	})
	if err != nil {
		var conditionFailed *types.ConditionalCheckFailedException
		if errors.As(err, &conditionFailed) {
			return nil
		}
		return fmt.Errorf("mark event %q processed: %w", rec.ID, err)
	}
	return nil
}
