package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"math"
	"net/http"
	"os"
	"os/signal"
	"path"
	"strconv"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	apierr "github.com/rmd-dashboard/grants/pkg/api/types/errors"
	kcs "github.com/rmd-dashboard/grants/pkg/configs/server"
	kdb "github.com/rmd-dashboard/grants/pkg/db"
	kpg "github.com/rmd-dashboard/grants/pkg/db/postgres"
	"github.com/rmd-dashboard/grants/pkg/grants"
	"github.com/rmd-dashboard/grants/pkg/utils/echoutil"
	"github.com/rmd-dashboard/grants/pkg/utils/filewatch"

	"github.com/rmd-dashboard/grants/cmd/grantsd/handlers"
)

func main() {
	configPath := flag.String("config-path", "", "server config path")
	loglevel := flag.String("loglevel", "info", "log level. debug|info|warn|error|off")
	pcert := flag.String("cert", "", "certification file for TLS")
	pkey := flag.String("certkey", "", "key of certification file for TLS")
	flag.Parse()

	e := echo.New()
	e.HideBanner = true
	e.Pre(middleware.AddTrailingSlash())

	// set log
	echoutil.SetLevel(e, *loglevel)
	e.HTTPErrorHandler = apierr.HTTPErrorHandler(e)
	e.Use(echoutil.LogHandlerFunc)

	// read configfile
	var conf *kcs.ServerConfig
	if *configPath != "" {
		c, err := kcs.LoadServerConfig(*configPath)
		if err != nil {
			log.Fatalf("can not read configration: %s", err)
		}
		conf = c
	} else {
		conf = kcs.TrySeal(nil, os.Getenv)
	}
	if conf.DBURI() == "" {
		log.Fatalf("database is not configured: set dbURI or DB_HOST")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdown := func(reason string) {
		log.Printf("%s. quit to restart server.", reason)
		graceful, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := e.Shutdown(graceful); err != nil {
			log.Printf("error on shutdown: %s", err)
		}
	}
	context.AfterFunc(ctx, func() { shutdown("signal is received") })

	if *configPath != "" {
		cctx, cancel, err := filewatch.UntilModifyContext(ctx, *configPath)
		if err != nil {
			log.Fatalf("can not watch configration: %s", err)
		}
		defer cancel()
		context.AfterFunc(cctx, func() {
			if ctx.Err() == nil {
				shutdown("config file is updated (" + context.Cause(cctx).Error() + ")")
			}
		})
	}

	// get dbaccesor
	db, err := getDBAccesor(ctx, conf)
	if err != nil {
		log.Fatalf("can not connect database: %s", err.Error())
	}
	defer db.Close()

	sctx, scancel := db.Schema().Context(ctx)
	defer scancel()
	context.AfterFunc(sctx, func() {
		if ctx.Err() == nil {
			shutdown("database schema is not up to date (" + context.Cause(sctx).Error() + ")")
		}
	})

	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: conf.CORS().AllowOrigins(),
	}))

	// handlers
	e.GET(api("health"), handlers.HealthHandler())

	uploadMiddlewares := uploadLimits(conf.Upload())
	for _, program := range grants.Programs.Sorted() {
		repo, ok := db.Program(program.Path)
		if !ok {
			log.Fatalf("%s: %s", kdb.ErrUnknownProgram, program.Path)
		}

		e.GET(api(program.Path, "overview"), handlers.OverviewHandler(repo))
		for _, dim := range grants.Dimensions {
			if _, ok := program.Report.Groups[dim]; !ok {
				continue
			}
			e.GET(api(program.Path, string(dim)), handlers.GroupHandler(repo, dim))
		}
		e.GET(api(program.Path, "yearly-trends"), handlers.YearlyTrendsHandler(repo))
		e.POST(
			api(program.Path, "upload-csv"),
			handlers.UploadHandler(repo, conf.Upload().Dir()),
			uploadMiddlewares...,
		)
	}

	log.Println("registred routes:")
	for _, r := range e.Routes() {
		log.Println(r.Method, r.Path)
	}

	cert, key := *pcert, *pkey
	if cert != "" && key != "" {
		err = e.StartTLS(":"+conf.Port(), cert, key)
	} else {
		err = e.Start(":" + conf.Port())
	}
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		e.Logger.Fatal(err)
	}
}

func getDBAccesor(ctx context.Context, conf *kcs.ServerConfig) (kdb.GrantsDatabase, error) {
	options := []kpg.Option{}
	if r := conf.SchemaRepository(); r != "" {
		options = append(options, kpg.WithSchemaRepository(r))
	}
	return kpg.New(ctx, conf.DBURI(), options...)
}

// api builds a route path under /api, terminated with "/".
func api(p ...string) string {
	return path.Join(append([]string{"/api"}, p...)...) + "/"
}

// uploadLimits returns middlewares guarding upload endpoints.
func uploadLimits(conf *kcs.UploadConfig) []echo.MiddlewareFunc {
	mws := []echo.MiddlewareFunc{
		middleware.BodyLimit(strconv.FormatInt(conf.MaxBytes(), 10)),
	}

	if perMinute := conf.RatePerMinute(); 0 < perMinute {
		store := middleware.NewRateLimiterMemoryStoreWithConfig(
			middleware.RateLimiterMemoryStoreConfig{
				Rate:      rate.Limit(perMinute / 60),
				Burst:     int(math.Ceil(perMinute)),
				ExpiresIn: 3 * time.Minute,
			},
		)
		mws = append(mws, middleware.RateLimiter(store))
	}
	return mws
}
