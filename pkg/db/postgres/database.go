package postgres

import (
	"context"

	kdb "github.com/rmd-dashboard/grants/pkg/db"
	kpggrants "github.com/rmd-dashboard/grants/pkg/db/postgres/grants"
	kpool "github.com/rmd-dashboard/grants/pkg/db/postgres/pool"
	kpgschema "github.com/rmd-dashboard/grants/pkg/db/postgres/schema"
	xe "github.com/rmd-dashboard/grants/pkg/errors"
	"github.com/rmd-dashboard/grants/pkg/grants"
)

type grantsDBPostgres struct {
	pool     kpool.Pool
	programs map[string]kdb.GrantsInterface
	schema   kdb.SchemaInterface
}

type Config struct {
	Catalogue        grants.Catalogue
	SchemaRepository string
}

func DefaultConfig() Config {
	return Config{
		Catalogue: grants.Programs,
	}
}

type Option func(*Config) *Config

// WithCatalogue restricts the programs served.
func WithCatalogue(catalogue grants.Catalogue) Option {
	return func(c *Config) *Config {
		c.Catalogue = catalogue
		return c
	}
}

func WithSchemaRepository(repository string) Option {
	return func(c *Config) *Config {
		c.SchemaRepository = repository
		return c
	}
}

func New(
	ctx context.Context,
	url string,
	options ...Option,
) (kdb.GrantsDatabase, error) {
	pool, err := kpool.Connect(ctx, url)
	if err != nil {
		return nil, xe.Wrap(err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, xe.WrapWithNote("database is not ready", err)
	}
	return NewWithPool(pool, options...), nil
}

// NewWithPool builds the database on an established pool.
func NewWithPool(pool kpool.Pool, options ...Option) kdb.GrantsDatabase {
	c := DefaultConfig()
	for _, option := range options {
		c = *option(&c)
	}

	var schema kdb.SchemaInterface = kpgschema.Null()
	if c.SchemaRepository != "" {
		schema = kpgschema.New(pool, c.SchemaRepository)
	}

	programs := make(map[string]kdb.GrantsInterface, len(c.Catalogue))
	for path, p := range c.Catalogue {
		programs[path] = kpggrants.New(pool, p)
	}

	return &grantsDBPostgres{
		pool:     pool,
		programs: programs,
		schema:   schema,
	}
}

func (g *grantsDBPostgres) Program(path string) (kdb.GrantsInterface, bool) {
	p, ok := g.programs[path]
	return p, ok
}

func (g *grantsDBPostgres) Schema() kdb.SchemaInterface {
	return g.schema
}

func (g *grantsDBPostgres) Close() error {
	g.pool.Close()
	return nil
}
