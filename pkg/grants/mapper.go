package grants

import "strings"

// Kind decides how a cell is normalized.
type Kind int

const (
	// free text. blank cells are null.
	Text Kind = iota
	// integer year. unparseable cells are null.
	Year
	// non-negative amount. unparseable cells are 0.
	Money
)

// Field maps CSV headers onto one table column.
type Field struct {
	Column string

	// header spellings, most preferred first.
	Aliases []string

	Kind Kind

	// value of a Text field when no alias has a value.
	Default string
}

// HEITypeRule derives an HEI type column from another (already mapped) text column.
type HEITypeRule struct {
	From   string
	Column string
}

// StatusRule derives a status column from the mapped money columns.
type StatusRule struct {
	Allocated string
	Obligated string
	Disbursed string
	Column    string
}

// lookup returns the first non-blank cell among aliases.
func lookup(row Row, aliases []string) (string, bool) {
	for _, a := range aliases {
		if v, ok := row[a]; ok && strings.TrimSpace(v) != "" {
			return v, true
		}
	}
	return "", false
}

func (f Field) value(row Row) any {
	raw, found := lookup(row, f.Aliases)
	switch f.Kind {
	case Year:
		if y := ParseYear(raw); y != nil {
			return *y
		}
		return nil
	case Money:
		return ParseCurrency(raw)
	default:
		if found {
			return raw
		}
		if f.Default != "" {
			return f.Default
		}
		return nil
	}
}

// Map converts one CSV row into a record of p's table.
func (p *Program) Map(row Row) Record {
	rec := newRecord(len(p.Fields) + 2)
	for _, f := range p.Fields {
		rec.set(f.Column, f.value(row))
	}
	// natural keys are compared by the unique constraint as is.
	if s, ok := rec.values[p.Key].(string); ok {
		rec.set(p.Key, strings.TrimSpace(s))
	}

	if p.HEIType != nil {
		rec.set(p.HEIType.Column, string(ClassifyHEIType(rec.Text(p.HEIType.From))))
	}
	if p.Status != nil {
		s := p.Status
		rec.set(s.Column, string(DeriveStatus(
			rec.Money(s.Allocated), rec.Money(s.Obligated), rec.Money(s.Disbursed),
		)))
	}
	return rec
}

// MapAll maps rows in order.
func (p *Program) MapAll(rows []Row) []Record {
	recs := make([]Record, len(rows))
	for i, r := range rows {
		recs[i] = p.Map(r)
	}
	return recs
}
