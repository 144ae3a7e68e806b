package main

import (
	"context"
	"log"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"github.com/example/device-loans/internal/command"
	"github.com/example/device-loans/internal/config"
	"github.com/example/device-loans/internal/infrastructure/store"
	"github.com/example/device-loans/internal/reconcile"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		log.Fatalf("[Lambda Reconciler] Failed to load configuration: %v", err)
	}

	stores, err := store.Open(ctx, cfg)
	if err != nil {
		log.Fatalf("[Lambda Reconciler] Failed to open stores: %v", err)
	}

	cmdHandler := command.NewHandler(stores.Devices, stores.Items, nil)
	reconciler := reconcile.NewReconciler(cmdHandler, stores.Ledger, nil)

	log.Println("[Lambda Reconciler] Initialized successfully")

	// Each SQS record carries one delivery (a single envelope or an
	// array). Records are independent batches: a failed record is
	// reported for redelivery without blocking the others.
	lambda.Start(func(ctx context.Context, sqsEvent events.SQSEvent) (events.SQSEventResponse, error) {
		log.Printf("[Lambda Reconciler] Received %d records", len(sqsEvent.Records))

		var failures []events.SQSBatchItemFailure
		for _, record := range sqsEvent.Records {
			if err := reconciler.HandleMessage(ctx, []byte(record.MessageId), []byte(record.Body)); err != nil {
				log.Printf("[Lambda Reconciler] Record %s failed: %v", record.MessageId, err)
				failures = append(failures, events.SQSBatchItemFailure{
					ItemIdentifier: record.MessageId,
				})
			}
		}

		return events.SQSEventResponse{BatchItemFailures: failures}, nil
	})
}
