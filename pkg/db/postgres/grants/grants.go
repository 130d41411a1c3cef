package grants

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	kdb "github.com/rmd-dashboard/grants/pkg/db"
	kpgerr "github.com/rmd-dashboard/grants/pkg/db/postgres/errors"
	kpool "github.com/rmd-dashboard/grants/pkg/db/postgres/pool"
	kgrants "github.com/rmd-dashboard/grants/pkg/grants"
)

type pgGrants struct {
	pool    kpool.Pool
	program *kgrants.Program
}

var _ kdb.GrantsInterface = &pgGrants{}

// New returns the repository of program's table.
func New(pool kpool.Pool, program *kgrants.Program) kdb.GrantsInterface {
	return &pgGrants{pool: pool, program: program}
}

func (g *pgGrants) Program() *kgrants.Program {
	return g.program
}

func (g *pgGrants) Load(ctx context.Context, records []kgrants.Record, replaceAll bool) (int, error) {
	tx, err := g.pool.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	if replaceAll {
		// replace loads wait for each other here. readers are not blocked.
		table := ident(g.program.Table)
		if _, err := tx.Exec(ctx, "LOCK TABLE "+table+" IN SHARE ROW EXCLUSIVE MODE"); err != nil {
			return 0, err
		}
		if _, err := tx.Exec(ctx, "DELETE FROM "+table); err != nil {
			return 0, err
		}
	}

	columns := g.program.Columns()
	stmt := insertQuery(g.program, columns)
	for nth, rec := range records {
		if _, err := tx.Exec(ctx, stmt, rec.Args(columns)...); err != nil {
			return 0, kpgerr.RowFailure{Table: g.program.Table, Row: nth + 1, Err: err}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return len(records), nil
}

func (g *pgGrants) Overview(ctx context.Context, year kdb.YearFilter) (kgrants.Overview, error) {
	q := overviewQuery(g.program, year)

	metrics := g.program.Report.Overview
	values := make([]decimal.Decimal, len(metrics))
	dest := make([]any, len(metrics))
	for i := range values {
		dest[i] = &values[i]
	}
	if err := g.pool.QueryRow(ctx, q.SQL, q.Args...).Scan(dest...); err != nil {
		return nil, err
	}

	ov := make(kgrants.Overview, len(metrics))
	for i, m := range metrics {
		ov[i] = kgrants.Measure{Name: m.Name, Value: values[i]}
	}
	return ov, nil
}

func (g *pgGrants) Group(ctx context.Context, dim kgrants.Dimension, year kdb.YearFilter) ([]kgrants.Bucket, error) {
	group, ok := g.program.Report.Groups[dim]
	if !ok {
		return nil, fmt.Errorf("%w: %s has no %s", kdb.ErrUnknownDimension, g.program.Name, dim)
	}
	q := groupQuery(g.program, group, year)

	rows, err := g.pool.Query(ctx, q.SQL, q.Args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	buckets := []kgrants.Bucket{}
	for rows.Next() {
		b := kgrants.Bucket{}
		if err := rows.Scan(&b.Label, &b.Projects, &b.Amount, &b.Released); err != nil {
			return nil, err
		}
		buckets = append(buckets, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return buckets, nil
}

func (g *pgGrants) YearlyTrends(ctx context.Context) ([]kgrants.Trend, error) {
	q := yearlyTrendsQuery(g.program)

	rows, err := g.pool.Query(ctx, q.SQL, q.Args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	trends := []kgrants.Trend{}
	for rows.Next() {
		t := kgrants.Trend{}
		if err := rows.Scan(&t.Year, &t.Projects, &t.Amount, &t.Released); err != nil {
			return nil, err
		}
		trends = append(trends, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return trends, nil
}
