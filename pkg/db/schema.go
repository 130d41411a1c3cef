package db

import "context"

type SchemaInterface interface {
	// Upgrade applies every schema version newer than the database.
	Upgrade(ctx context.Context) error

	// Version returns the schema version of the database. 0 means "no schema".
	Version(ctx context.Context) (int, error)

	// Context returns a context which is canceled when the schema repository
	// gets a version newer than the database.
	Context(ctx context.Context) (context.Context, context.CancelFunc)
}
