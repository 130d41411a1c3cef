package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	apierr "github.com/rmd-dashboard/grants/pkg/api/types/errors"
	apigrants "github.com/rmd-dashboard/grants/pkg/api/types/grants"
	kdb "github.com/rmd-dashboard/grants/pkg/db"
	"github.com/rmd-dashboard/grants/pkg/grants"
)

// yearFilter reads the "year" query parameter.
func yearFilter(c echo.Context) (kdb.YearFilter, error) {
	year, err := kdb.ParseYearFilter(c.QueryParam("year"))
	if err != nil {
		return kdb.YearFilter{}, apierr.BadRequest(
			fmt.Sprintf("year should be a number or All: %q", c.QueryParam("year")), err,
		)
	}
	return year, nil
}

func OverviewHandler(repo kdb.GrantsInterface) echo.HandlerFunc {
	return func(c echo.Context) error {
		year, err := yearFilter(c)
		if err != nil {
			return err
		}

		ov, err := repo.Overview(c.Request().Context(), year)
		if err != nil {
			return apierr.InternalServerError(err)
		}
		return c.JSON(http.StatusOK, apigrants.Overview(ov))
	}
}

func GroupHandler(repo kdb.GrantsInterface, dim grants.Dimension) echo.HandlerFunc {
	return func(c echo.Context) error {
		group, ok := repo.Program().Report.Groups[dim]
		if !ok {
			return apierr.NotFound()
		}

		year, err := yearFilter(c)
		if err != nil {
			return err
		}

		buckets, err := repo.Group(c.Request().Context(), dim, year)
		if err != nil {
			if errors.Is(err, kdb.ErrUnknownDimension) {
				return apierr.NotFound()
			}
			return apierr.InternalServerError(err)
		}
		return c.JSON(http.StatusOK, apigrants.ComposeBuckets(group, buckets))
	}
}

func YearlyTrendsHandler(repo kdb.GrantsInterface) echo.HandlerFunc {
	return func(c echo.Context) error {
		trends, err := repo.YearlyTrends(c.Request().Context())
		if err != nil {
			return apierr.InternalServerError(err)
		}
		return c.JSON(http.StatusOK, apigrants.ComposeTrends(repo.Program(), trends))
	}
}

func HealthHandler() echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, apigrants.Health{
			Status:  "OK",
			Message: "RMD Dashboard API is running",
		})
	}
}
