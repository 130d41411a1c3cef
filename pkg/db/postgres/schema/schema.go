package schema

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgerrcode"
	kdb "github.com/rmd-dashboard/grants/pkg/db"
	kpool "github.com/rmd-dashboard/grants/pkg/db/postgres/pool"
)

type pgSchema struct {
	pool       kpool.Pool
	repository string
}

var _ kdb.SchemaInterface = &pgSchema{}

// New creates a new Schema.
//
// # Args
//
// - pool: connection to the database to be upgraded.
//
// - repository: The path to the schema repository directory.
// Each subdirectory named by a number is one schema version,
// and holds .sql files applied in lexical order.
func New(pool kpool.Pool, repository string) *pgSchema {
	return &pgSchema{
		pool:       pool,
		repository: repository,
	}
}

type version struct {
	Version int
	Root    string
}

func (v version) scripts() ([]string, error) {
	files := []string{}
	err := filepath.WalkDir(v.Root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".sql") {
			return nil
		}
		files = append(files, path)
		return nil
	})
	return files, err
}

func (v version) Apply(ctx context.Context, conn kpool.Queryer) error {
	scripts, err := v.scripts()
	if err != nil {
		return err
	}
	for _, path := range scripts {
		query, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		if _, err := conn.Exec(ctx, string(query)); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	}
	return nil
}

// currentVersion reads the schema version. A database without "schema_version" is version 0.
func currentVersion(ctx context.Context, q kpool.Queryer) (int, error) {
	var version *int
	if err := q.QueryRow(
		ctx, `SELECT max("version") FROM "schema_version"`,
	).Scan(&version); err != nil {
		if pgerr := new(pgconn.PgError); errors.As(err, &pgerr) {
			if pgerr.Code == pgerrcode.UndefinedTable {
				return 0, nil
			}
		}
		return -1, err
	}
	if version == nil {
		return 0, nil
	}
	return *version, nil
}

func (s *pgSchema) Version(ctx context.Context) (int, error) {
	return currentVersion(ctx, s.pool)
}

func (s *pgSchema) Upgrade(ctx context.Context) error {
	schemaVersions, err := s.versions()
	if err != nil {
		return err
	}

	current, err := s.Version(ctx)
	if err != nil {
		return err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	applied := current
	for _, v := range schemaVersions {
		if v.Version <= current {
			continue
		}
		if err := v.Apply(ctx, tx); err != nil {
			return fmt.Errorf("schema version %d: %w", v.Version, err)
		}
		applied = v.Version
	}
	if applied == current {
		return nil
	}

	if _, err := tx.Exec(ctx, `DELETE FROM "schema_version"`); err != nil {
		return err
	}
	if _, err := tx.Exec(
		ctx, `INSERT INTO "schema_version" ("version") VALUES ($1)`, applied,
	); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (s *pgSchema) Context(ctx context.Context) (context.Context, context.CancelFunc) {
	cctx, can := context.WithCancelCause(ctx)

	w, err := fsnotify.NewWatcher()
	if err != nil {
		can(err)
		return cctx, func() {}
	}
	if err := w.Add(s.repository); err != nil {
		w.Close()
		can(err)
		return cctx, func() {}
	}

	outdated := func() error {
		vs, err := s.versions()
		if err != nil {
			return fmt.Errorf("failed to read schema repository: %w", err)
		}
		current, err := s.Version(ctx)
		if err != nil {
			return fmt.Errorf("failed to get current schema version: %w", err)
		}
		if len(vs) == 0 {
			return nil
		}
		if latest := vs[len(vs)-1].Version; current < latest {
			return fmt.Errorf(
				"schema is outdated: %d (in db) < %d (in repository)", current, latest,
			)
		}
		return nil
	}

	go func() {
		defer w.Close()
		for {
			select {
			case <-cctx.Done():
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Remove) {
					continue
				}
				if filepath.Clean(s.repository) != filepath.Dir(ev.Name) {
					continue
				}
				if err := outdated(); err != nil {
					can(err)
				}
			}
		}
	}()

	if err := outdated(); err != nil {
		can(err)
	}
	return cctx, func() { can(nil) }
}

// versions lookup the schema from the schema repository.
//
// # Returns
//
// - []version: The list of schema versions, sorted by version number.
//
// - error: The error if any.
func (s *pgSchema) versions() ([]version, error) {
	dir, err := os.ReadDir(s.repository)
	if err != nil {
		return nil, err
	}

	schemaVersions := make([]version, 0, len(dir))
	for _, entry := range dir {
		if !entry.IsDir() {
			continue
		}
		v, err := strconv.Atoi(entry.Name())
		if err != nil {
			continue
		}
		schemaVersions = append(schemaVersions, version{
			Version: v,
			Root:    filepath.Join(s.repository, entry.Name()),
		})
	}
	slices.SortFunc(
		schemaVersions,
		func(i, j version) int { return cmp.Compare(i.Version, j.Version) },
	)

	return schemaVersions, nil
}

func Null() *nullSchema {
	return &nullSchema{}
}

type nullSchema struct{}

var _ kdb.SchemaInterface = nullSchema{}

func (nullSchema) Upgrade(ctx context.Context) error {
	return errors.New("no schema repository available")
}

func (nullSchema) Version(ctx context.Context) (int, error) {
	return -1, nil
}

func (nullSchema) Context(ctx context.Context) (context.Context, context.CancelFunc) {
	return ctx, func() {}
}
