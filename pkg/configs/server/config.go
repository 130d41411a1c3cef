package server

import (
	"net/url"
)

const (
	DefaultPort       = "5000"
	DefaultUploadDir  = "uploads"
	DefaultUploadSize = 32 << 20
)

type ServerConfig struct {
	port             string
	dbURI            string
	schemaRepository string
	upload           *UploadConfig
	cors             *CORSConfig
}

// port number to listen. default = "5000"
func (c *ServerConfig) Port() string {
	return c.port
}

// Connection string for database.
func (c *ServerConfig) DBURI() string {
	return c.dbURI
}

// directory of schema versions. If empty, schema is not checked.
func (c *ServerConfig) SchemaRepository() string {
	return c.schemaRepository
}

func (c *ServerConfig) Upload() *UploadConfig {
	return c.upload
}

func (c *ServerConfig) CORS() *CORSConfig {
	return c.cors
}

type UploadConfig struct {
	dir           string
	maxBytes      int64
	ratePerMinute float64
}

// directory where uploaded files are spooled. default = "uploads"
func (u *UploadConfig) Dir() string {
	return u.dir
}

// max size of a request body of uploads. default = 32MiB
func (u *UploadConfig) MaxBytes() int64 {
	return u.maxBytes
}

// uploads allowed per minute for each client. 0 means unlimited.
func (u *UploadConfig) RatePerMinute() float64 {
	return u.ratePerMinute
}

type CORSConfig struct {
	allowOrigins []string
}

// origins allowed. default = ["*"]
func (c *CORSConfig) AllowOrigins() []string {
	return append([]string(nil), c.allowOrigins...)
}

// Env is how configurations read environment variables. os.Getenv, typically.
type Env func(key string) string

// databaseURIFromEnv composes a connection string from DB_HOST, DB_PORT, DB_USER, DB_PASSWORD and DB_NAME.
//
// It returns "" when DB_HOST is not set.
func databaseURIFromEnv(getenv Env) string {
	host := getenv("DB_HOST")
	if host == "" {
		return ""
	}
	if port := getenv("DB_PORT"); port != "" {
		host = host + ":" + port
	}

	u := &url.URL{Scheme: "postgres", Host: host, Path: "/" + getenv("DB_NAME")}
	if user := getenv("DB_USER"); user != "" {
		if password := getenv("DB_PASSWORD"); password != "" {
			u.User = url.UserPassword(user, password)
		} else {
			u.User = url.User(user)
		}
	}
	return u.String()
}
