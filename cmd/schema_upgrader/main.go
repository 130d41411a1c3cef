package main

import (
	"context"
	"log"
	"net"
	"net/url"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/youta-t/flarc"

	"github.com/rmd-dashboard/grants/pkg/db/postgres"
	xe "github.com/rmd-dashboard/grants/pkg/errors"
	kio "github.com/rmd-dashboard/grants/pkg/io"
	"github.com/rmd-dashboard/grants/pkg/utils/try"
)

type Flag struct {
	Host     string `flag:"host" help:"The host of the database."`
	Port     int    `flag:"port" help:"The port of the database."`
	User     string `flag:"user" help:"The user of the database."`
	Password string `flag:"pass" help:"The password of the database."`
	Database string `flag:"database" help:"The name of the database."`

	Schema string `flag:"schema" help:"The path to the schema repository directory."`
}

const ARG_SCHEMA_DEST = "ARG_SCHEMA_DEST"

func connString(f Flag) string {
	u := url.URL{
		Scheme: "postgres",
		Host:   net.JoinHostPort(f.Host, strconv.Itoa(f.Port)),
		Path:   "/" + f.Database,
	}
	if f.Password != "" {
		u.User = url.UserPassword(f.User, f.Password)
	} else {
		u.User = url.User(f.User)
	}
	return u.String()
}

func main() {
	logger := log.Default()
	ctx, cancel := signal.NotifyContext(
		context.Background(),
		os.Interrupt, syscall.SIGTERM,
	)
	defer cancel()

	port := 5432
	if sp := os.Getenv("DB_PORT"); sp != "" {
		p, err := strconv.Atoi(sp)
		if err == nil {
			port = p
		}
	}

	cmd := try.To(flarc.NewCommand(
		"database schema upgrader for the grants dashboard",
		Flag{
			Host:     os.Getenv("DB_HOST"),
			Port:     port,
			User:     os.Getenv("DB_USER"),
			Password: os.Getenv("DB_PASSWORD"),
			Database: os.Getenv("DB_NAME"),

			Schema: os.Getenv("GRANTS_SCHEMA"),
		},
		flarc.Args{
			{
				Name: ARG_SCHEMA_DEST, Help: "The schema files are copied to this directory.",
				Required: false, Repeatable: false,
			},
		},
		func(ctx context.Context, c flarc.Commandline[Flag], a []any) error {
			flags := c.Flags()
			if flags.Schema == "" {
				return xe.New("schema repository is not given (--schema or GRANTS_SCHEMA)")
			}

			dest := c.Args()[ARG_SCHEMA_DEST]
			if len(dest) != 0 {
				logger.Println("copying schema files...")
				if err := kio.DirCopy(flags.Schema, dest[0]); err != nil {
					return xe.WrapWithNote("copying schema to "+dest[0], err)
				}
			}

			db, err := postgres.New(
				ctx, connString(flags),
				postgres.WithSchemaRepository(flags.Schema),
			)
			if err != nil {
				return xe.WrapWithNote("connecting database", err)
			}
			defer db.Close()

			if err := db.Schema().Upgrade(ctx); err != nil {
				return xe.WrapWithNote("upgrading schema", err)
			}
			v, err := db.Schema().Version(ctx)
			if err != nil {
				return xe.WrapWithNote("reading schema version", err)
			}
			logger.Printf("schema version: %d", v)
			return nil
		},
	)).OrFatal(logger)

	os.Exit(flarc.Run(ctx, cmd))
}
