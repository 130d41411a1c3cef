package grants

import (
	"strings"

	"github.com/shopspring/decimal"
)

// LoadMode is how an upload writes records into a program table.
type LoadMode int

const (
	// every record becomes a new row.
	Insert LoadMode = iota

	// records update the row with the same natural key, or become a new row.
	Upsert
)

func (m LoadMode) String() string {
	switch m {
	case Insert:
		return "insert"
	case Upsert:
		return "upsert"
	default:
		return "unknown"
	}
}

// Program describes one grant scheme: its table, its import format and its reports.
type Program struct {
	// display name, e.g. "GIA"
	Name string

	// URL path segment under /api, e.g. "gia"
	Path string

	Table string
	Mode  LoadMode

	// natural key column. Upsert conflicts on it.
	Key string

	// columns overwritten when an upserted record meets an existing row.
	UpdateOnConflict []string

	Fields  []Field
	HEIType *HEITypeRule
	Status  *StatusRule

	Report Report
}

// Columns returns columns written by an upload, in insertion order.
func (p *Program) Columns() []string {
	cols := make([]string, 0, len(p.Fields)+2)
	for _, f := range p.Fields {
		cols = append(cols, f.Column)
	}
	if p.HEIType != nil {
		cols = append(cols, p.HEIType.Column)
	}
	if p.Status != nil {
		cols = append(cols, p.Status.Column)
	}
	return cols
}

// Dimension is a grouping axis of the dashboard.
type Dimension string

const (
	ByPriorityArea Dimension = "priority-area"
	ByRegion       Dimension = "region"
	ByHEIType      Dimension = "hei-type"
	ByStatus       Dimension = "status"
)

// Dimensions lists every grouping axis, in dashboard order.
var Dimensions = []Dimension{ByPriorityArea, ByRegion, ByHEIType, ByStatus}

// Counting is how rows are counted as projects.
type Counting int

const (
	// COUNT(*)
	CountRows Counting = iota
	// COUNT(DISTINCT TRIM(key))
	CountDistinctKey
)

// Report describes the aggregation queries of a program.
type Report struct {
	// integer column used by the year filter and yearly trends.
	YearColumn string

	// money column summed as "amount".
	AmountColumn string

	// money column summed as "released". optional.
	ReleasedColumn string

	Counting Counting

	// columns which must be non-blank for a row to appear in ANY aggregation.
	Require []string

	Overview []Metric
	Groups   map[Dimension]Group
}

// MetricKind is the aggregate an overview metric computes.
type MetricKind int

const (
	// number of projects (see Report.Counting)
	CountProjects MetricKind = iota
	// sum of Column
	Sum
	// number of rows whose Column equals one of Values
	CountIn
	// number of rows whose Column is non-null and equals none of Values
	CountNotIn
)

// Metric is one named field of the overview.
type Metric struct {
	Name   string
	Kind   MetricKind
	Column string
	Values []string
}

// Order is the sort order of group buckets.
type Order int

const (
	AmountDesc Order = iota
	LabelAsc
	ProjectsDesc
)

// Class labels rows whose column matches any pattern (case-insensitive substring).
type Class struct {
	Label    string
	Patterns []string
}

// Group describes one grouping query.
type Group struct {
	// column grouped on, after TRIM.
	Column string

	// When Classes is not empty, rows are grouped by the label of the first matching
	// class (or Fallback) instead of by the column value itself.
	Classes  []Class
	Fallback string

	// companion columns which must be non-blank.
	Complete []string

	Order Order

	// JSON keys of the bucket.
	LabelKey string
	// defaults to "projects"
	CountKey string

	// whether buckets carry "amount" and "released".
	WithAmount   bool
	WithReleased bool
}

// CountName returns the JSON key of the project count.
func (g Group) CountName() string {
	if g.CountKey == "" {
		return "projects"
	}
	return g.CountKey
}

// Classify labels value with the group's classes.
//
// This is the same rule the database applies in a grouping query.
func (g Group) Classify(value string) string {
	lower := strings.ToLower(value)
	for _, c := range g.Classes {
		for _, p := range c.Patterns {
			if strings.Contains(lower, strings.ToLower(p)) {
				return c.Label
			}
		}
	}
	return g.Fallback
}

// Measure is one computed overview metric.
type Measure struct {
	Name  string
	Value decimal.Decimal
}

// Overview is the ordered list of overview metrics.
type Overview []Measure

// Get returns the value of the metric name.
func (o Overview) Get(name string) (decimal.Decimal, bool) {
	for _, m := range o {
		if m.Name == name {
			return m.Value, true
		}
	}
	return decimal.Zero, false
}

// Bucket is one group of an aggregation.
type Bucket struct {
	Label    string
	Projects int64
	Amount   decimal.Decimal
	Released decimal.Decimal
}

// Trend is the yearly aggregation of a program.
type Trend struct {
	Year     int
	Projects int64
	Amount   decimal.Decimal
	Released decimal.Decimal
}
