package store

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"github.com/example/device-loans/internal/config"
)

// Stores bundles the persistent resources an entry point wires up.
// Lifecycle is owned by the entry point that called Open.
type Stores struct {
	Devices DeviceStore
	Items   ItemStore
	Ledger  LedgerStore

	closeFn func() error
}

func (s *Stores) Close() error {
	if s.closeFn == nil {
		return nil
	}
	return s.closeFn()
}

// Open constructs the stores for the configured backend.
func Open(ctx context.Context, cfg *config.Config) (*Stores, error) {
	switch cfg.Storage {
	case config.StorageMemory:
		return &Stores{
			Devices: NewMemoryDeviceStore(),
			Items:   NewMemoryItemStore(),
			Ledger:  NewMemoryLedgerStore(),
		}, nil

	case config.StoragePostgres:
		db, err := ConnectPostgres(cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		if err := Migrate(db); err != nil {
			db.Close()
			return nil, fmt.Errorf("migrate postgres: %w", err)
		}
		return &Stores{
			Devices: NewPostgresDeviceStore(db),
			Items:   NewPostgresItemStore(db),
			Ledger:  NewPostgresLedgerStore(db),
			closeFn: db.Close,
		}, nil

	case config.StorageDynamo:
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, fmt.Errorf("load aws config: %w", err)
		}
		client := dynamodb.NewFromConfig(awsCfg)
		return &Stores{
			Devices: NewDynamoDeviceStore(client, cfg.Dynamo.DeviceTable),
			Items:   NewDynamoItemStore(client, cfg.Dynamo.ItemTable),
			Ledger:  NewDynamoLedgerStore(client, cfg.Dynamo.LedgerTable),
		}, nil
	}

	return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage)
}
