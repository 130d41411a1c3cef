package testhelpers

import (
	"context"

	kpool "github.com/rmd-dashboard/grants/pkg/db/postgres/pool"
)

// CountRows returns the number of rows in table.
func CountRows(ctx context.Context, conn kpool.Queryer, table string) (int, error) {
	var n int
	if err := conn.QueryRow(
		ctx, `SELECT count(*) FROM `+table,
	).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// Column returns every value of column in table, ordered by id.
func Column[T any](ctx context.Context, conn kpool.Queryer, table string, column string) ([]T, error) {
	rows, err := conn.Query(ctx, `SELECT `+column+` FROM `+table+` ORDER BY "id"`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	values := []T{}
	for rows.Next() {
		var v T
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, rows.Err()
}
