package sqlstore

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	persistence "github.com/goliatone/go-persistence-bun"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/schema"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite3"
)

// Config satisfies the go-persistence-bun client configuration contract.
type Config struct {
	Driver         string
	Server         string
	Debug          bool
	PingTimeout    time.Duration
	OtelIdentifier string
}

func (c Config) GetDebug() bool {
	return c.Debug
}

func (c Config) GetDriver() string {
	return c.Driver
}

func (c Config) GetServer() string {
	return c.Server
}

func (c Config) GetPingTimeout() time.Duration {
	if c.PingTimeout <= 0 {
		return 5 * time.Second
	}
	return c.PingTimeout
}

func (c Config) GetOtelIdentifier() string {
	if strings.TrimSpace(c.OtelIdentifier) == "" {
		return "go-easyship"
	}
	return c.OtelIdentifier
}

// OpenPostgres opens a persistence client backed by lib/pq.
func OpenPostgres(dsn string) (*persistence.Client, error) {
	return open(Config{Driver: DriverPostgres, Server: dsn}, pgdialect.New())
}

// OpenSQLite opens a persistence client backed by go-sqlite3. A single open
// connection keeps shared in-memory databases consistent.
func OpenSQLite(dsn string) (*persistence.Client, error) {
	client, err := open(Config{Driver: DriverSQLite, Server: dsn}, sqlitedialect.New())
	if err != nil {
		return nil, err
	}
	client.DB().SetMaxOpenConns(1)
	return client, nil
}

// Open picks the dialect from cfg.Driver.
func Open(cfg Config) (*persistence.Client, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case DriverPostgres, "pgx", "postgresql":
		cfg.Driver = DriverPostgres
		return open(cfg, pgdialect.New())
	case DriverSQLite, "sqlite":
		cfg.Driver = DriverSQLite
		client, err := open(cfg, sqlitedialect.New())
		if err != nil {
			return nil, err
		}
		client.DB().SetMaxOpenConns(1)
		return client, nil
	default:
		return nil, fmt.Errorf("sqlstore: unsupported driver %q", cfg.Driver)
	}
}

func open(cfg Config, dialect schema.Dialect) (*persistence.Client, error) {
	if strings.TrimSpace(cfg.Server) == "" {
		return nil, fmt.Errorf("sqlstore: dsn is required")
	}
	sqlDB, err := sql.Open(cfg.Driver, cfg.Server)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: open %s: %w", cfg.Driver, err)
	}
	client, err := persistence.New(cfg, sqlDB, dialect)
	if err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	return client, nil
}

// NewDeliveryClaimStoreFromPersistence accepts a *bun.DB or anything that
// exposes DB() *bun.DB, such as a go-persistence-bun client.
func NewDeliveryClaimStoreFromPersistence(client any) (*DeliveryClaimStore, error) {
	db, err := resolveBunDB(client)
	if err != nil {
		return nil, err
	}
	return NewDeliveryClaimStore(db)
}

func resolveBunDB(candidate any) (*bun.DB, error) {
	switch typed := candidate.(type) {
	case nil:
		return nil, fmt.Errorf("sqlstore: persistence client is required")
	case *bun.DB:
		return typed, nil
	case interface{ DB() *bun.DB }:
		db := typed.DB()
		if db == nil {
			return nil, fmt.Errorf("sqlstore: persistence client returned nil bun db")
		}
		return db, nil
	default:
		return nil, fmt.Errorf("sqlstore: unsupported persistence client type %T", candidate)
	}
}
