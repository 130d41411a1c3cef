package handlers

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	apierr "github.com/rmd-dashboard/grants/pkg/api/types/errors"
	apigrants "github.com/rmd-dashboard/grants/pkg/api/types/grants"
	kdb "github.com/rmd-dashboard/grants/pkg/db"
	"github.com/rmd-dashboard/grants/pkg/grants"
	kio "github.com/rmd-dashboard/grants/pkg/io"
)

// content types browsers and spreadsheet tools send for .csv files.
var csvContentTypes = map[string]struct{}{
	"text/csv":                 {},
	"application/csv":          {},
	"application/vnd.ms-excel": {},
	"text/plain":               {},
	"application/octet-stream": {},
}

func isCSV(fh *multipart.FileHeader) bool {
	if !strings.HasSuffix(strings.ToLower(fh.Filename), ".csv") {
		return false
	}
	ctype := fh.Header.Get("Content-Type")
	if ctype == "" {
		return true
	}
	mediatype, _, err := mime.ParseMediaType(ctype)
	if err != nil {
		return false
	}
	_, ok := csvContentTypes[mediatype]
	return ok
}

// spool copies the uploaded file into dir. The caller should remove the returned path.
func spool(fh *multipart.FileHeader, dir string, id uuid.UUID) (string, error) {
	src, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	path := filepath.Join(dir, id.String()+".csv")
	dst, err := kio.CreateAll(path, os.FileMode(0o600), os.FileMode(0o755))
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(path)
		return "", err
	}
	return path, nil
}

func readSpooled(path string) ([]grants.Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return grants.ReadRows(f)
}

// UploadHandler imports a CSV file posted as multipart field "file" into repo.
//
// When the form value "replaceAll" is "true", existing rows are replaced.
//
// args:
//   - repo: repository of the program to be uploaded.
//   - spoolDir: directory where upload files are written while they are processed.
func UploadHandler(repo kdb.GrantsInterface, spoolDir string) echo.HandlerFunc {
	return func(c echo.Context) error {
		program := repo.Program()

		fh, err := c.FormFile("file")
		if err != nil {
			if he := new(echo.HTTPError); errors.As(err, &he) {
				return he // such as 413 from a body limit
			}
			return apierr.BadRequest("No file uploaded", err)
		}
		if !isCSV(fh) {
			return apierr.BadRequest("Please upload a valid CSV file", nil)
		}
		replaceAll := c.FormValue("replaceAll") == "true"

		id := uuid.New()
		path, err := spool(fh, spoolDir, id)
		if err != nil {
			if he := new(echo.HTTPError); errors.As(err, &he) {
				return he
			}
			return apierr.InternalServerError(err)
		}
		defer func() {
			if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
				c.Logger().Warnf("upload %s: fail to remove %s: %s", id, path, err)
			}
		}()

		rows, err := readSpooled(path)
		if err != nil {
			if errors.Is(err, grants.ErrMalformedCSV) {
				return apierr.BadRequest("CSV parsing error: "+err.Error(), err)
			}
			return apierr.InternalServerError(err)
		}
		c.Logger().Infof(
			"upload %s: %d rows of %s (%s, %d bytes, replaceAll = %v)",
			id, len(rows), program.Name, fh.Filename, fh.Size, replaceAll,
		)

		processed, err := repo.Load(c.Request().Context(), program.MapAll(rows), replaceAll)
		if err != nil {
			return apierr.NewErrorMessage(
				http.StatusInternalServerError,
				"Database error: "+err.Error(),
				apierr.WithError(err),
			)
		}
		c.Logger().Infof("upload %s: %d records are loaded into %s", id, processed, program.Table)

		return c.JSON(http.StatusOK, apigrants.UploadResult{
			Message:          fmt.Sprintf("%s CSV file processed successfully", program.Name),
			RecordsProcessed: processed,
			ReplaceAll:       replaceAll,
		})
	}
}
