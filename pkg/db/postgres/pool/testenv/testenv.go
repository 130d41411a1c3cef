package testenv

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4/pgxpool"
	kpool "github.com/rmd-dashboard/grants/pkg/db/postgres/pool"
	"github.com/rmd-dashboard/grants/pkg/db/postgres/schema"
)

// environment variable holding the URI of the database for tests.
//
// Tests using this package are skipped when it is not set.
const ENV_TEST_DB_URI = "GRANTS_TEST_DB_URI"

// PoolBroaker is a interface to get a pool.
type PoolBroaker interface {
	// GetPool returns a pool connected to a fresh postgres schema (namespace).
	//
	// The namespace is dropped after t.
	GetPool(ctx context.Context, t *testing.T) kpool.Pool
}

type pgConnOptions struct {
	SchemaRepository string
	NoSchema         bool
}

type PgConnOption func(*pgConnOptions) *pgConnOptions

// WithSchemaRepository applies the schema repository at dir to every pool.
//
// By default, the "schema" directory next to go.mod is applied.
func WithSchemaRepository(dir string) PgConnOption {
	return func(o *pgConnOptions) *pgConnOptions {
		o.SchemaRepository = dir
		return o
	}
}

// WithoutSchema provides pools to empty namespaces.
func WithoutSchema() PgConnOption {
	return func(o *pgConnOptions) *pgConnOptions {
		o.NoSchema = true
		return o
	}
}

// moduleRoot finds the nearest directory holding go.mod, from dir upward.
func moduleRoot(dir string) (string, bool) {
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

type pg struct {
	uri   string
	admin *pgxpool.Pool
	opts  pgConnOptions
}

// NewPoolBroaker returns a PoolBroaker.
//
// If ENV_TEST_DB_URI is not set, t is skipped.
//
// # Args
//
// - ctx: When this context is canceled, the database connection behind the pool will be lost.
//
// - t: scope of the PoolBroaker.
// When this test is finished, the broaker will be shutdown.
func NewPoolBroaker(ctx context.Context, t *testing.T, options ...PgConnOption) PoolBroaker {
	t.Helper()

	uri := os.Getenv(ENV_TEST_DB_URI)
	if uri == "" {
		t.Skipf("%s is not set", ENV_TEST_DB_URI)
	}

	opts := &pgConnOptions{}
	for _, o := range options {
		opts = o(opts)
	}
	if !opts.NoSchema && opts.SchemaRepository == "" {
		wd, err := os.Getwd()
		if err != nil {
			t.Fatal(err)
		}
		root, ok := moduleRoot(wd)
		if !ok {
			t.Fatalf("schema repository is not found: no go.mod above %s", wd)
		}
		opts.SchemaRepository = filepath.Join(root, "schema")
	}

	admin, err := pgxpool.Connect(ctx, uri)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(admin.Close)

	return &pg{uri: uri, admin: admin, opts: *opts}
}

func (p *pg) GetPool(ctx context.Context, t *testing.T) kpool.Pool {
	t.Helper()

	namespace := "test_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	if _, err := p.admin.Exec(ctx, `CREATE SCHEMA `+namespace); err != nil {
		t.Fatalf("fail to create namespace: %v", err)
	}
	t.Cleanup(func() {
		if _, err := p.admin.Exec(context.Background(), `DROP SCHEMA `+namespace+` CASCADE`); err != nil {
			t.Errorf("fail to drop namespace %s: %v", namespace, err)
		}
	})

	config, err := pgxpool.ParseConfig(p.uri)
	if err != nil {
		t.Fatal(err)
	}
	config.ConnConfig.RuntimeParams["search_path"] = namespace
	config.AfterConnect = kpool.RegisterDecimal

	raw, err := pgxpool.ConnectConfig(ctx, config)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(raw.Close)

	pool := kpool.Wrap(raw)
	if !p.opts.NoSchema {
		if err := schema.New(pool, p.opts.SchemaRepository).Upgrade(ctx); err != nil {
			t.Fatalf("fail to apply schema: %v", err)
		}
	}
	return pool
}
