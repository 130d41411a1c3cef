package errors

import (
	"errors"
	"fmt"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgerrcode"
)

// a record of an upload could not be written.
//
// The whole upload is rolled back when this happens.
type RowFailure struct {
	Table string

	// 1-based position of the record in the upload.
	Row int

	Err error
}

var _ error = RowFailure{}

func (r RowFailure) Error() string {
	return fmt.Sprintf("row %d of %s: %s", r.Row, r.Table, describe(r.Err))
}

func (r RowFailure) Unwrap() error {
	return r.Err
}

// describe renders driver errors with the column or constraint they are about.
func describe(err error) string {
	pgerr := new(pgconn.PgError)
	if !errors.As(err, &pgerr) {
		return err.Error()
	}

	switch pgerr.Code {
	case pgerrcode.UniqueViolation:
		return fmt.Sprintf("duplicated value violates %s", pgerr.ConstraintName)
	case pgerrcode.StringDataRightTruncationDataException:
		if pgerr.ColumnName != "" {
			return fmt.Sprintf("value too long for %s", pgerr.ColumnName)
		}
	case pgerrcode.NumericValueOutOfRange:
		if pgerr.ColumnName != "" {
			return fmt.Sprintf("number out of range for %s", pgerr.ColumnName)
		}
	}
	return pgerr.Message
}
