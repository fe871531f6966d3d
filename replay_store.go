package easyship

import (
	"context"
	"fmt"

	"github.com/goliatone/go-easyship/migrations"
	sqlstore "github.com/goliatone/go-easyship/store/sql"
	persistence "github.com/goliatone/go-persistence-bun"
)

// MigrateSQL applies the embedded claim schema for driver to target.
func MigrateSQL(ctx context.Context, target migrations.Target, driver string) error {
	dialect, err := migrations.Dialect(driver)
	if err != nil {
		return err
	}
	return migrations.Apply(ctx, target, GetMigrationsFS(), dialect)
}

// OpenSQLReplayStore opens the database in cfg, brings its schema up to
// date and returns a claim store for WithReplayStore. The caller owns the
// returned client.
func OpenSQLReplayStore(ctx context.Context, cfg sqlstore.Config) (*sqlstore.DeliveryClaimStore, *persistence.Client, error) {
	client, err := sqlstore.Open(cfg)
	if err != nil {
		return nil, nil, err
	}
	if err := MigrateSQL(ctx, client, cfg.Driver); err != nil {
		_ = client.Close()
		return nil, nil, err
	}
	store, err := sqlstore.NewDeliveryClaimStore(client.DB())
	if err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("easyship: replay store: %w", err)
	}
	return store, client, nil
}
