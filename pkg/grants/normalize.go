package grants

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// HEIType is a category of higher education institution, derived from its name.
type HEIType string

const (
	SUC       HEIType = "SUC"
	Technical HEIType = "Technical"
	Private   HEIType = "Private"
	Other     HEIType = "Other"
)

// Status is the furthest disbursement stage a grant has reached.
type Status string

const (
	Disbursed Status = "Disbursed"
	Obligated Status = "Obligated"
	Allocated Status = "Allocated"
	Amount    Status = "Amount"
)

var currencyNoise = strings.NewReplacer(
	"₱", "",
	"PHP", "",
	"Php", "",
	",", "",
	" ", "",
)

var leadingNumber = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?`)

// ParseCurrency reads a spreadsheet money cell such as "₱1,234.56".
//
// Currency symbols and thousands separators are dropped and the leading number is read.
// Cells which are empty, "N/A", not a number or negative are 0.
func ParseCurrency(raw string) decimal.Decimal {
	s := strings.TrimSpace(raw)
	if s == "" || strings.EqualFold(s, "N/A") {
		return decimal.Zero
	}

	num := leadingNumber.FindString(currencyNoise.Replace(s))
	if num == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(num)
	if err != nil || d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// ParseYear reads a leading integer out of a year cell.
//
// It returns nil when the cell does not start with a number, or the number is 0.
func ParseYear(raw string) *int {
	s := strings.TrimSpace(raw)
	end := 0
	for end < len(s) && '0' <= s[end] && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return nil
	}
	y, err := strconv.Atoi(s[:end])
	if err != nil || y == 0 {
		return nil
	}
	return &y
}

type heiRule struct {
	patterns []string
	typ      HEIType
}

// evaluated in order. first match wins.
var heiRules = []heiRule{
	{patterns: []string{"STATE UNIVERSITY", "STATE COLLEGE"}, typ: SUC},
	{patterns: []string{"TECHNICAL", "POLYTECHNIC"}, typ: Technical},
	{patterns: []string{"PRIVATE"}, typ: Private},
}

// ClassifyHEIType categorizes an institution by case-insensitive substrings of its name.
func ClassifyHEIType(name string) HEIType {
	upper := strings.ToUpper(name)
	for _, r := range heiRules {
		for _, p := range r.patterns {
			if strings.Contains(upper, p) {
				return r.typ
			}
		}
	}
	return Other
}

// DeriveStatus picks the furthest stage with a non-zero amount.
//
// A missing allocation does not hold back a grant which is already obligated:
// (0, 50, 0) is Obligated.
func DeriveStatus(allocated, obligated, disbursed decimal.Decimal) Status {
	switch {
	case disbursed.IsPositive():
		return Disbursed
	case obligated.IsPositive() && disbursed.IsZero():
		return Obligated
	case allocated.IsPositive() && obligated.IsZero() && disbursed.IsZero():
		return Allocated
	default:
		return Amount
	}
}
