package handlers_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	httptestutil "github.com/rmd-dashboard/grants/internal/testutils/http"
	apierr "github.com/rmd-dashboard/grants/pkg/api/types/errors"
	kdb "github.com/rmd-dashboard/grants/pkg/db"
	dbmock "github.com/rmd-dashboard/grants/pkg/db/mocks"
	"github.com/rmd-dashboard/grants/pkg/grants"

	"github.com/rmd-dashboard/grants/cmd/grantsd/handlers"
)

// assertHTTPError checks err is an HTTPError with status code and message.
func assertHTTPError(t *testing.T, err error, code int, message string) {
	t.Helper()
	he := new(echo.HTTPError)
	if !errors.As(err, &he) {
		t.Fatalf("err is not HTTPError: %v", err)
	}
	if he.Code != code {
		t.Errorf("status code = %d, expected %d", he.Code, code)
	}
	body, ok := he.Message.(apierr.ErrorResponse)
	if !ok {
		t.Fatalf("message is not ErrorResponse: %#v", he.Message)
	}
	if body.Error != message {
		t.Errorf("error = %q, expected %q", body.Error, message)
	}
}

func TestOverviewHandler(t *testing.T) {
	t.Run("it responds metrics in order, filtered by year", func(t *testing.T) {
		repo := dbmock.NewGrantsInterface(grants.GIA)
		repo.Impl.Overview = func(ctx context.Context, year kdb.YearFilter) (grants.Overview, error) {
			return grants.Overview{
				{Name: "totalGrants", Value: decimal.NewFromInt(3)},
				{Name: "totalAmount", Value: decimal.RequireFromString("2500.75")},
			}, nil
		}

		e := echo.New()
		c, resp := httptestutil.Get(e, "/api/gia/overview?year=2022")

		if err := handlers.OverviewHandler(repo)(c); err != nil {
			t.Fatal(err)
		}

		if resp.Code != http.StatusOK {
			t.Errorf("status = %d", resp.Code)
		}
		if expected := `{"totalGrants":3,"totalAmount":2500.75}`; resp.Body.String() != expected+"\n" {
			t.Errorf("body = %s, expected %s", resp.Body.String(), expected)
		}
		if repo.Calls.Overview.Times() != 1 {
			t.Fatalf("Overview is called %d times", repo.Calls.Overview.Times())
		}
		if y := repo.Calls.Overview[0].Year; !y.Equal(kdb.InYear(2022)) {
			t.Errorf("year = %s", y)
		}
	})

	t.Run("year=All means all years", func(t *testing.T) {
		repo := dbmock.NewGrantsInterface(grants.GIA)
		repo.Impl.Overview = func(ctx context.Context, year kdb.YearFilter) (grants.Overview, error) {
			return grants.Overview{}, nil
		}

		e := echo.New()
		c, _ := httptestutil.Get(e, "/api/gia/overview?year=All")
		if err := handlers.OverviewHandler(repo)(c); err != nil {
			t.Fatal(err)
		}
		if y := repo.Calls.Overview[0].Year; !y.Equal(kdb.AllYears()) {
			t.Errorf("year = %s", y)
		}
	})

	t.Run("a year which is not a number is a bad request", func(t *testing.T) {
		repo := dbmock.NewGrantsInterface(grants.GIA)

		e := echo.New()
		c, _ := httptestutil.Get(e, "/api/gia/overview?year=latest")
		err := handlers.OverviewHandler(repo)(c)

		assertHTTPError(t, err, http.StatusBadRequest, `year should be a number or All: "latest"`)
		if repo.Calls.Overview.Times() != 0 {
			t.Error("Overview should not be called")
		}
	})

	t.Run("a query failure is told as it is", func(t *testing.T) {
		repo := dbmock.NewGrantsInterface(grants.GIA)
		repo.Impl.Overview = func(ctx context.Context, year kdb.YearFilter) (grants.Overview, error) {
			return nil, errors.New(`relation "gia_grants" does not exist`)
		}

		e := echo.New()
		c, _ := httptestutil.Get(e, "/api/gia/overview")
		err := handlers.OverviewHandler(repo)(c)

		assertHTTPError(t, err, http.StatusInternalServerError, `relation "gia_grants" does not exist`)
	})
}

func TestGroupHandler(t *testing.T) {
	type When struct {
		program *grants.Program
		dim     grants.Dimension
		buckets []grants.Bucket
	}

	d := decimal.NewFromInt

	for name, testcase := range map[string]struct {
		when When
		then string
	}{
		"GIA priority areas": {
			when: When{
				program: grants.GIA, dim: grants.ByPriorityArea,
				buckets: []grants.Bucket{
					{Label: "Tech", Projects: 1, Amount: d(1000)},
					{Label: "Health", Projects: 2, Amount: d(500)},
				},
			},
			then: `[{"area":"Tech","projects":1,"amount":1000},{"area":"Health","projects":2,"amount":500}]`,
		},
		"IDIG HEI types": {
			when: When{
				program: grants.IDIG, dim: grants.ByHEIType,
				buckets: []grants.Bucket{{Label: "SUC", Projects: 4, Amount: d(40)}},
			},
			then: `[{"type":"SUC","projects":4,"amount":40}]`,
		},
		"LAKAS regions have released amounts": {
			when: When{
				program: grants.LAKAS, dim: grants.ByRegion,
				buckets: []grants.Bucket{{Label: "Region VII", Projects: 2, Amount: d(300), Released: d(100)}},
			},
			then: `[{"region":"Region VII","projects":2,"amount":300,"released":100}]`,
		},
		"NAFES statuses are name and value": {
			when: When{
				program: grants.NAFES, dim: grants.ByStatus,
				buckets: []grants.Bucket{{Label: "Ongoing", Projects: 5}},
			},
			then: `[{"name":"Ongoing","value":5}]`,
		},
		"no rows is an empty array": {
			when: When{program: grants.GIA, dim: grants.ByStatus, buckets: []grants.Bucket{}},
			then: `[]`,
		},
	} {
		t.Run(name, func(t *testing.T) {
			repo := dbmock.NewGrantsInterface(testcase.when.program)
			repo.Impl.Group = func(ctx context.Context, dim grants.Dimension, year kdb.YearFilter) ([]grants.Bucket, error) {
				return testcase.when.buckets, nil
			}

			e := echo.New()
			c, resp := httptestutil.Get(e, "/api/x/"+string(testcase.when.dim)+"?year=2021")
			if err := handlers.GroupHandler(repo, testcase.when.dim)(c); err != nil {
				t.Fatal(err)
			}

			if resp.Body.String() != testcase.then+"\n" {
				t.Errorf("\n- body: %s\n- expected: %s", resp.Body.String(), testcase.then)
			}
			if repo.Calls.Group.Times() != 1 {
				t.Fatalf("Group is called %d times", repo.Calls.Group.Times())
			}
			call := repo.Calls.Group[0]
			if call.Dim != testcase.when.dim || !call.Year.Equal(kdb.InYear(2021)) {
				t.Errorf("Group is called with (%s, %s)", call.Dim, call.Year)
			}
		})
	}

	t.Run("a dimension the program does not report is not found", func(t *testing.T) {
		program := *grants.IDIG
		program.Report.Groups = map[grants.Dimension]grants.Group{}
		repo := dbmock.NewGrantsInterface(&program)

		e := echo.New()
		c, _ := httptestutil.Get(e, "/api/idig/region")
		err := handlers.GroupHandler(repo, grants.ByRegion)(c)

		assertHTTPError(t, err, http.StatusNotFound, "not found")
	})
}

func TestYearlyTrendsHandler(t *testing.T) {
	t.Run("it responds years in order of the repository", func(t *testing.T) {
		repo := dbmock.NewGrantsInterface(grants.LAKAS)
		repo.Impl.YearlyTrends = func(ctx context.Context) ([]grants.Trend, error) {
			return []grants.Trend{
				{Year: 2021, Projects: 1, Amount: decimal.NewFromInt(10), Released: decimal.NewFromInt(5)},
				{Year: 2022, Projects: 3, Amount: decimal.NewFromInt(30), Released: decimal.Zero},
			}, nil
		}

		e := echo.New()
		c, resp := httptestutil.Get(e, "/api/lakas/yearly-trends")
		if err := handlers.YearlyTrendsHandler(repo)(c); err != nil {
			t.Fatal(err)
		}

		expected := `[{"year":2021,"projects":1,"amount":10,"released":5},` +
			`{"year":2022,"projects":3,"amount":30,"released":0}]`
		if resp.Body.String() != expected+"\n" {
			t.Errorf("\n- body: %s\n- expected: %s", resp.Body.String(), expected)
		}
	})

	t.Run("a query failure is 500", func(t *testing.T) {
		repo := dbmock.NewGrantsInterface(grants.GIA)
		repo.Impl.YearlyTrends = func(ctx context.Context) ([]grants.Trend, error) {
			return nil, errors.New("connection refused")
		}

		e := echo.New()
		c, _ := httptestutil.Get(e, "/api/gia/yearly-trends")
		err := handlers.YearlyTrendsHandler(repo)(c)

		assertHTTPError(t, err, http.StatusInternalServerError, "connection refused")
	})
}

func TestHealthHandler(t *testing.T) {
	e := echo.New()
	c, resp := httptestutil.Get(e, "/api/health")
	if err := handlers.HealthHandler()(c); err != nil {
		t.Fatal(err)
	}
	expected := `{"status":"OK","message":"RMD Dashboard API is running"}`
	if resp.Body.String() != expected+"\n" {
		t.Errorf("body = %s", resp.Body.String())
	}
}
