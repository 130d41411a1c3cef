package mocks

import (
	"context"
	"errors"

	kdb "github.com/rmd-dashboard/grants/pkg/db"
	"github.com/rmd-dashboard/grants/pkg/grants"
)

type GrantsInterface struct {
	program *grants.Program

	Impl struct {
		Load         func(ctx context.Context, records []grants.Record, replaceAll bool) (int, error)
		Overview     func(ctx context.Context, year kdb.YearFilter) (grants.Overview, error)
		Group        func(ctx context.Context, dim grants.Dimension, year kdb.YearFilter) ([]grants.Bucket, error)
		YearlyTrends func(ctx context.Context) ([]grants.Trend, error)
	}
	Calls struct {
		Load CallLog[struct {
			Records    []grants.Record
			ReplaceAll bool
		}]
		Overview CallLog[struct{ Year kdb.YearFilter }]
		Group    CallLog[struct {
			Dim  grants.Dimension
			Year kdb.YearFilter
		}]
		YearlyTrends CallLog[struct{}]
	}
}

func NewGrantsInterface(p *grants.Program) *GrantsInterface {
	return &GrantsInterface{program: p}
}

var _ kdb.GrantsInterface = &GrantsInterface{}

func (m *GrantsInterface) Program() *grants.Program {
	return m.program
}

func (m *GrantsInterface) Load(ctx context.Context, records []grants.Record, replaceAll bool) (int, error) {
	m.Calls.Load = append(m.Calls.Load, struct {
		Records    []grants.Record
		ReplaceAll bool
	}{Records: records, ReplaceAll: replaceAll})
	if m.Impl.Load != nil {
		return m.Impl.Load(ctx, records, replaceAll)
	}
	panic(errors.New("it should no be called"))
}

func (m *GrantsInterface) Overview(ctx context.Context, year kdb.YearFilter) (grants.Overview, error) {
	m.Calls.Overview = append(m.Calls.Overview, struct{ Year kdb.YearFilter }{Year: year})
	if m.Impl.Overview != nil {
		return m.Impl.Overview(ctx, year)
	}
	panic(errors.New("it should no be called"))
}

func (m *GrantsInterface) Group(ctx context.Context, dim grants.Dimension, year kdb.YearFilter) ([]grants.Bucket, error) {
	m.Calls.Group = append(m.Calls.Group, struct {
		Dim  grants.Dimension
		Year kdb.YearFilter
	}{Dim: dim, Year: year})
	if m.Impl.Group != nil {
		return m.Impl.Group(ctx, dim, year)
	}
	panic(errors.New("it should no be called"))
}

func (m *GrantsInterface) YearlyTrends(ctx context.Context) ([]grants.Trend, error) {
	m.Calls.YearlyTrends = append(m.Calls.YearlyTrends, struct{}{})
	if m.Impl.YearlyTrends != nil {
		return m.Impl.YearlyTrends(ctx)
	}
	panic(errors.New("it should no be called"))
}
