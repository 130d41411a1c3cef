package db

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/rmd-dashboard/grants/pkg/grants"
)

var ErrInvalidYear = errors.New("invalid year")

// YearFilter restricts aggregations to one fiscal year. The zero value means all years.
type YearFilter struct {
	year *int
}

func AllYears() YearFilter {
	return YearFilter{}
}

func InYear(y int) YearFilter {
	return YearFilter{year: &y}
}

// ParseYearFilter reads a "year" query parameter.
//
// "" and "All" mean all years. Otherwise it should be an integer.
func ParseYearFilter(s string) (YearFilter, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "all") {
		return AllYears(), nil
	}
	y, err := strconv.Atoi(s)
	if err != nil {
		return YearFilter{}, fmt.Errorf("%w: %q", ErrInvalidYear, s)
	}
	return InYear(y), nil
}

// Year returns the year filtered on. ok is false for all years.
func (f YearFilter) Year() (year int, ok bool) {
	if f.year == nil {
		return 0, false
	}
	return *f.year, true
}

func (f YearFilter) String() string {
	if y, ok := f.Year(); ok {
		return strconv.Itoa(y)
	}
	return "All"
}

func (f YearFilter) Equal(o YearFilter) bool {
	a, aok := f.Year()
	b, bok := o.Year()
	return aok == bok && a == b
}

// GrantsInterface is the repository of one program table.
type GrantsInterface interface {
	// Program returns the program this repository is bound to.
	Program() *grants.Program

	// Load writes records into the table in one transaction.
	//
	// args:
	//     - ctx
	//     - records: rows to be written, in file order.
	//     - replaceAll: if true, every existing row is deleted first.
	//
	// returns:
	//     - int: the number of records processed.
	//     - error: on the first record which cannot be written.
	//       Nothing is changed in that case.
	Load(ctx context.Context, records []grants.Record, replaceAll bool) (int, error)

	// Overview computes the overview metrics of the program.
	Overview(ctx context.Context, year YearFilter) (grants.Overview, error)

	// Group aggregates the table along dim.
	//
	// returns:
	//     - []grants.Bucket: in the order of the program's report.
	//     - error: ErrUnknownDimension if the program does not group along dim.
	Group(ctx context.Context, dim grants.Dimension, year YearFilter) ([]grants.Bucket, error)

	// YearlyTrends aggregates the table by year, oldest first.
	YearlyTrends(ctx context.Context) ([]grants.Trend, error)
}
