package grants_test

import (
	"encoding/json"
	"testing"

	apigrants "github.com/rmd-dashboard/grants/pkg/api/types/grants"
	kgrants "github.com/rmd-dashboard/grants/pkg/grants"
	"github.com/shopspring/decimal"
)

func TestOverview_MarshalJSON(t *testing.T) {
	t.Run("it keeps the order of metrics", func(t *testing.T) {
		ov := apigrants.Overview{
			{Name: "totalGrants", Value: decimal.NewFromInt(3)},
			{Name: "totalAmount", Value: decimal.RequireFromString("1500.50")},
			{Name: "disbursedProjects", Value: decimal.NewFromInt(0)},
		}
		actual, err := json.Marshal(ov)
		if err != nil {
			t.Fatal(err)
		}
		expected := `{"totalGrants":3,"totalAmount":1500.5,"disbursedProjects":0}`
		if string(actual) != expected {
			t.Errorf("\n- actual: %s\n- expected: %s", actual, expected)
		}
	})

	t.Run("empty overview is an empty object", func(t *testing.T) {
		actual, err := json.Marshal(apigrants.Overview{})
		if err != nil {
			t.Fatal(err)
		}
		if string(actual) != `{}` {
			t.Errorf("actual: %s", actual)
		}
	})
}

func TestBucket_MarshalJSON(t *testing.T) {
	bucket := kgrants.Bucket{
		Label: "Health", Projects: 2,
		Amount: decimal.NewFromInt(500), Released: decimal.NewFromInt(250),
	}

	for name, testcase := range map[string]struct {
		when kgrants.Group
		then string
	}{
		"GIA priority areas tell area, projects and amount": {
			when: kgrants.GIA.Report.Groups[kgrants.ByPriorityArea],
			then: `{"area":"Health","projects":2,"amount":500}`,
		},
		"LAKAS priority areas also tell released": {
			when: kgrants.LAKAS.Report.Groups[kgrants.ByPriorityArea],
			then: `{"name":"Health","projects":2,"amount":500,"released":250}`,
		},
		"LAKAS statuses tell name and value only": {
			when: kgrants.LAKAS.Report.Groups[kgrants.ByStatus],
			then: `{"name":"Health","value":2}`,
		},
	} {
		t.Run(name, func(t *testing.T) {
			actual, err := json.Marshal(apigrants.ComposeBuckets(testcase.when, []kgrants.Bucket{bucket}))
			if err != nil {
				t.Fatal(err)
			}
			if expected := "[" + testcase.then + "]"; string(actual) != expected {
				t.Errorf("\n- actual: %s\n- expected: %s", actual, expected)
			}
		})
	}
}

func TestTrend_MarshalJSON(t *testing.T) {
	trend := kgrants.Trend{
		Year: 2023, Projects: 4,
		Amount: decimal.NewFromInt(1000), Released: decimal.NewFromInt(400),
	}

	for name, testcase := range map[string]struct {
		when *kgrants.Program
		then string
	}{
		"GIA trends have no released": {
			when: kgrants.GIA,
			then: `[{"year":2023,"projects":4,"amount":1000}]`,
		},
		"NAFES trends have released": {
			when: kgrants.NAFES,
			then: `[{"year":2023,"projects":4,"amount":1000,"released":400}]`,
		},
	} {
		t.Run(name, func(t *testing.T) {
			actual, err := json.Marshal(apigrants.ComposeTrends(testcase.when, []kgrants.Trend{trend}))
			if err != nil {
				t.Fatal(err)
			}
			if string(actual) != testcase.then {
				t.Errorf("\n- actual: %s\n- expected: %s", actual, testcase.then)
			}
		})
	}
}
