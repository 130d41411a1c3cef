package grants

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v4"
	kdb "github.com/rmd-dashboard/grants/pkg/db"
	kgrants "github.com/rmd-dashboard/grants/pkg/grants"
)

// query is a SQL text with its bound arguments.
type query struct {
	SQL  string
	Args []any
}

// params collects bound arguments and hands out their placeholders.
type params struct {
	args []any
}

func (p *params) bind(v any) string {
	p.args = append(p.args, v)
	return "$" + strconv.Itoa(len(p.args))
}

func ident(name string) string {
	return pgx.Identifier{name}.Sanitize()
}

func nonBlank(column string) string {
	c := ident(column)
	return fmt.Sprintf("%s IS NOT NULL AND TRIM(%s) <> ''", c, c)
}

// where renders conds as a WHERE clause with a leading space, or "".
func where(conds []string) string {
	if len(conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(conds, " AND ")
}

func sum(column string) string {
	if column == "" {
		return "0::numeric"
	}
	return fmt.Sprintf("COALESCE(SUM(%s), 0)", ident(column))
}

func projects(p *kgrants.Program) string {
	if p.Report.Counting == kgrants.CountDistinctKey {
		return fmt.Sprintf("COUNT(DISTINCT TRIM(%s))", ident(p.Key))
	}
	return "COUNT(*)"
}

// scope returns conditions shared by every aggregation of p.
func scope(p *kgrants.Program, year kdb.YearFilter, ps *params) []string {
	conds := make([]string, 0, len(p.Report.Require)+1)
	for _, c := range p.Report.Require {
		conds = append(conds, nonBlank(c))
	}
	if y, ok := year.Year(); ok {
		conds = append(conds, fmt.Sprintf("%s = %s", ident(p.Report.YearColumn), ps.bind(y)))
	}
	return conds
}

// likeContains makes an ILIKE pattern matching s anywhere.
func likeContains(s string) string {
	s = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
	return "%" + s + "%"
}

func insertQuery(p *kgrants.Program, columns []string) string {
	names := make([]string, len(columns))
	holders := make([]string, len(columns))
	for i, c := range columns {
		names[i] = ident(c)
		holders[i] = "$" + strconv.Itoa(i+1)
	}

	sql := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s)",
		ident(p.Table), strings.Join(names, ", "), strings.Join(holders, ", "),
	)
	if p.Mode != kgrants.Upsert {
		return sql
	}

	updates := make([]string, 0, len(p.UpdateOnConflict)+1)
	for _, c := range p.UpdateOnConflict {
		updates = append(updates, fmt.Sprintf("%s = EXCLUDED.%s", ident(c), ident(c)))
	}
	updates = append(updates, `"updated_at" = now()`)

	return fmt.Sprintf(
		"%s ON CONFLICT (%s) DO UPDATE SET %s",
		sql, ident(p.Key), strings.Join(updates, ", "),
	)
}

func overviewQuery(p *kgrants.Program, year kdb.YearFilter) query {
	ps := &params{}
	exprs := make([]string, 0, len(p.Report.Overview))
	for _, m := range p.Report.Overview {
		var expr string
		switch m.Kind {
		case kgrants.CountProjects:
			expr = projects(p) + "::numeric"
		case kgrants.Sum:
			expr = sum(m.Column)
		case kgrants.CountIn:
			expr = fmt.Sprintf(
				"(COUNT(*) FILTER (WHERE TRIM(%s) = ANY(%s)))::numeric",
				ident(m.Column), ps.bind(m.Values),
			)
		case kgrants.CountNotIn:
			expr = fmt.Sprintf(
				"(COUNT(*) FILTER (WHERE TRIM(%s) <> ALL(%s)))::numeric",
				ident(m.Column), ps.bind(m.Values),
			)
		default:
			expr = "0::numeric"
		}
		exprs = append(exprs, fmt.Sprintf("%s AS %s", expr, ident(m.Name)))
	}

	conds := scope(p, year, ps)
	return query{
		SQL: fmt.Sprintf(
			"SELECT %s FROM %s%s",
			strings.Join(exprs, ", "), ident(p.Table), where(conds),
		),
		Args: ps.args,
	}
}

// label returns the expression a group is keyed on.
func label(g kgrants.Group, ps *params) string {
	col := ident(g.Column)
	if len(g.Classes) == 0 {
		return fmt.Sprintf("TRIM(%s)", col)
	}

	b := new(strings.Builder)
	b.WriteString("CASE")
	for _, c := range g.Classes {
		matches := make([]string, len(c.Patterns))
		for i, pat := range c.Patterns {
			matches[i] = fmt.Sprintf("%s ILIKE %s", col, ps.bind(likeContains(pat)))
		}
		fmt.Fprintf(b, " WHEN %s THEN %s::text", strings.Join(matches, " OR "), ps.bind(c.Label))
	}
	fmt.Fprintf(b, " ELSE %s::text END", ps.bind(g.Fallback))
	return b.String()
}

func orderBy(o kgrants.Order) string {
	switch o {
	case kgrants.LabelAsc:
		return `"label" ASC`
	case kgrants.ProjectsDesc:
		return `"projects" DESC, "label" ASC`
	default:
		return `"amount" DESC, "label" ASC`
	}
}

func groupQuery(p *kgrants.Program, g kgrants.Group, year kdb.YearFilter) query {
	ps := &params{}
	key := label(g, ps)

	conds := scope(p, year, ps)
	conds = append(conds, nonBlank(g.Column))
	for _, c := range g.Complete {
		conds = append(conds, nonBlank(c))
	}

	return query{
		SQL: fmt.Sprintf(
			`SELECT %s AS "label", %s AS "projects", %s AS "amount", %s AS "released" `+
				`FROM %s%s GROUP BY 1 ORDER BY %s`,
			key, projects(p), sum(p.Report.AmountColumn), sum(p.Report.ReleasedColumn),
			ident(p.Table), where(conds), orderBy(g.Order),
		),
		Args: ps.args,
	}
}

func yearlyTrendsQuery(p *kgrants.Program) query {
	ps := &params{}
	year := ident(p.Report.YearColumn)
	conds := scope(p, kdb.AllYears(), ps)
	conds = append(conds, year+" IS NOT NULL")

	return query{
		SQL: fmt.Sprintf(
			`SELECT %s AS "year", %s AS "projects", %s AS "amount", %s AS "released" `+
				`FROM %s%s GROUP BY %s ORDER BY %s ASC`,
			year, projects(p), sum(p.Report.AmountColumn), sum(p.Report.ReleasedColumn),
			ident(p.Table), where(conds), year, year,
		),
		Args: ps.args,
	}
}
