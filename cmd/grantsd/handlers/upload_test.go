package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	httptestutil "github.com/rmd-dashboard/grants/internal/testutils/http"
	apigrants "github.com/rmd-dashboard/grants/pkg/api/types/grants"
	dbmock "github.com/rmd-dashboard/grants/pkg/db/mocks"
	"github.com/rmd-dashboard/grants/pkg/grants"

	"github.com/rmd-dashboard/grants/cmd/grantsd/handlers"
)

const giaCSV = "HEI Name,Priority Area,Year Awarded,ALLOCATED,OBLIGATED,DISBURSED\n" +
	"Sample State University,Health,2022,\"₱1,000\",500,200\n" +
	"Northern Polytechnic College,Tech,2022,100,0,0\n" +
	"Private College of X,Health,2023,N/A,,\n"

func assertSpoolIsEmpty(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("spooled files are left: %v", entries)
	}
}

func TestUploadHandler(t *testing.T) {
	t.Run("it loads mapped records and responds the number of them", func(t *testing.T) {
		spool := t.TempDir()
		repo := dbmock.NewGrantsInterface(grants.GIA)
		repo.Impl.Load = func(ctx context.Context, records []grants.Record, replaceAll bool) (int, error) {
			return len(records), nil
		}

		body, ctype := httptestutil.Multipart(
			t, map[string]string{"replaceAll": "true"},
			httptestutil.FilePart{Field: "file", Filename: "gia-2022.csv", ContentType: "text/csv", Content: []byte(giaCSV)},
		)
		e := echo.New()
		c, resp := httptestutil.Post(e, "/api/gia/upload-csv", body, ctype)

		if err := handlers.UploadHandler(repo, spool)(c); err != nil {
			t.Fatal(err)
		}

		if resp.Code != http.StatusOK {
			t.Errorf("status = %d", resp.Code)
		}
		actual := apigrants.UploadResult{}
		if err := json.Unmarshal(resp.Body.Bytes(), &actual); err != nil {
			t.Fatal(err)
		}
		expected := apigrants.UploadResult{
			Message:          "GIA CSV file processed successfully",
			RecordsProcessed: 3,
			ReplaceAll:       true,
		}
		if actual != expected {
			t.Errorf("\n- actual: %+v\n- expected: %+v", actual, expected)
		}

		if repo.Calls.Load.Times() != 1 {
			t.Fatalf("Load is called %d times", repo.Calls.Load.Times())
		}
		call := repo.Calls.Load[0]
		if !call.ReplaceAll {
			t.Error("replaceAll is not passed")
		}
		if len(call.Records) != 3 {
			t.Fatalf("records = %d", len(call.Records))
		}
		for nth, then := range []struct {
			status    grants.Status
			heiType   grants.HEIType
			allocated decimal.Decimal
		}{
			{grants.Disbursed, grants.SUC, decimal.NewFromInt(1000)},
			{grants.Allocated, grants.Technical, decimal.NewFromInt(100)},
			{grants.Amount, grants.Private, decimal.Zero},
		} {
			rec := call.Records[nth]
			if got := rec.Text("status"); got != string(then.status) {
				t.Errorf("record #%d: status = %s, expected %s", nth, got, then.status)
			}
			if got := rec.Text("hei_type"); got != string(then.heiType) {
				t.Errorf("record #%d: hei_type = %s, expected %s", nth, got, then.heiType)
			}
			if got := rec.Money("amount_allocated"); !got.Equal(then.allocated) {
				t.Errorf("record #%d: amount_allocated = %s, expected %s", nth, got, then.allocated)
			}
		}

		assertSpoolIsEmpty(t, spool)
	})

	t.Run("replaceAll is false unless it is \"true\"", func(t *testing.T) {
		repo := dbmock.NewGrantsInterface(grants.LAKAS)
		repo.Impl.Load = func(ctx context.Context, records []grants.Record, replaceAll bool) (int, error) {
			return len(records), nil
		}

		body, ctype := httptestutil.Multipart(
			t, map[string]string{"replaceAll": "yes"},
			httptestutil.FilePart{
				Field: "file", Filename: "LAKAS.CSV",
				Content: []byte("Control No.,STATUS\nL-1,Ongoing\n"),
			},
		)
		e := echo.New()
		c, resp := httptestutil.Post(e, "/api/lakas/upload-csv", body, ctype)

		if err := handlers.UploadHandler(repo, t.TempDir())(c); err != nil {
			t.Fatal(err)
		}
		if repo.Calls.Load[0].ReplaceAll {
			t.Error("replaceAll should be false")
		}
		if !strings.Contains(resp.Body.String(), `"message":"LAKAS CSV file processed successfully"`) {
			t.Errorf("body = %s", resp.Body.String())
		}
	})

	for name, testcase := range map[string]struct {
		fields  map[string]string
		files   []httptestutil.FilePart
		message string
	}{
		"without file, it is a bad request": {
			fields:  map[string]string{"replaceAll": "true"},
			message: "No file uploaded",
		},
		"a file in another field is not the upload": {
			files: []httptestutil.FilePart{
				{Field: "csv", Filename: "gia.csv", Content: []byte(giaCSV)},
			},
			message: "No file uploaded",
		},
		"a file without .csv extension is rejected": {
			files: []httptestutil.FilePart{
				{Field: "file", Filename: "gia.xlsx", Content: []byte(giaCSV)},
			},
			message: "Please upload a valid CSV file",
		},
		"a file of a non csv content type is rejected": {
			files: []httptestutil.FilePart{
				{Field: "file", Filename: "gia.csv", ContentType: "image/png", Content: []byte(giaCSV)},
			},
			message: "Please upload a valid CSV file",
		},
		"an empty file is a parsing error": {
			files: []httptestutil.FilePart{
				{Field: "file", Filename: "gia.csv", ContentType: "text/csv", Content: []byte{}},
			},
			message: "CSV parsing error: malformed csv: no header row",
		},
	} {
		t.Run(name, func(t *testing.T) {
			spool := t.TempDir()
			repo := dbmock.NewGrantsInterface(grants.GIA)

			body, ctype := httptestutil.Multipart(t, testcase.fields, testcase.files...)
			e := echo.New()
			c, _ := httptestutil.Post(e, "/api/gia/upload-csv", body, ctype)

			err := handlers.UploadHandler(repo, spool)(c)

			assertHTTPError(t, err, http.StatusBadRequest, testcase.message)
			if repo.Calls.Load.Times() != 0 {
				t.Error("Load should not be called")
			}
			assertSpoolIsEmpty(t, spool)
		})
	}

	t.Run("a request which is not multipart is a bad request", func(t *testing.T) {
		repo := dbmock.NewGrantsInterface(grants.GIA)

		e := echo.New()
		c, _ := httptestutil.Post(
			e, "/api/gia/upload-csv", strings.NewReader(giaCSV), httptestutil.ContentType("text/csv"),
		)
		err := handlers.UploadHandler(repo, t.TempDir())(c)

		assertHTTPError(t, err, http.StatusBadRequest, "No file uploaded")
	})

	t.Run("a load failure is a database error, and the spooled file is removed", func(t *testing.T) {
		spool := t.TempDir()
		repo := dbmock.NewGrantsInterface(grants.GIA)
		repo.Impl.Load = func(ctx context.Context, records []grants.Record, replaceAll bool) (int, error) {
			return 0, errors.New("row 2 of gia_grants: value too long for region")
		}

		body, ctype := httptestutil.Multipart(
			t, nil,
			httptestutil.FilePart{Field: "file", Filename: "gia.csv", Content: []byte(giaCSV)},
		)
		e := echo.New()
		c, _ := httptestutil.Post(e, "/api/gia/upload-csv", body, ctype)

		err := handlers.UploadHandler(repo, spool)(c)

		assertHTTPError(
			t, err, http.StatusInternalServerError,
			"Database error: row 2 of gia_grants: value too long for region",
		)
		assertSpoolIsEmpty(t, spool)
	})
}
