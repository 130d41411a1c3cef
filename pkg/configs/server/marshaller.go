package server

import (
	"os"

	"gopkg.in/yaml.v3"
)

type ServerConfigMarshall struct {
	Port             string                `yaml:"port"`
	DBURI            string                `yaml:"dbURI"`
	SchemaRepository string                `yaml:"schemaRepository"`
	Upload           *UploadConfigMarshall `yaml:"upload"`
	CORS             *CORSConfigMarshall   `yaml:"cors"`
}

type UploadConfigMarshall struct {
	Dir           string  `yaml:"dir"`
	MaxBytes      int64   `yaml:"maxBytes"`
	RatePerMinute float64 `yaml:"ratePerMinute"`
}

type CORSConfigMarshall struct {
	AllowOrigins []string `yaml:"allowOrigins"`
}

// load server config from a file.
//
// args:
//   - filepath: filepath refers a config file.
//
// returns *ServerConfig, error:
//
//	When loading success, returns `(*ServerConfig, nil)`.
//	Otherwise, returns `(nil, error)`.
//
// Environment variables PORT and DB_* are read as well.
func LoadServerConfig(filepath string) (*ServerConfig, error) {
	content, err := os.ReadFile(filepath)
	if err != nil {
		return nil, err
	}
	return Unmarshal(content, os.Getenv)
}

func Unmarshal(conf []byte, getenv Env) (*ServerConfig, error) {
	var out *ServerConfigMarshall
	if err := yaml.Unmarshal(conf, &out); err != nil {
		return nil, err
	}
	return TrySeal(out, getenv), nil
}

// TrySeal fills defaults and environment overrides into m.
func TrySeal(m *ServerConfigMarshall, getenv Env) *ServerConfig {
	if m == nil {
		m = &ServerConfigMarshall{}
	}

	port := m.Port
	if p := getenv("PORT"); p != "" {
		port = p
	}
	if port == "" {
		port = DefaultPort
	}

	dbURI := m.DBURI
	if dbURI == "" {
		dbURI = databaseURIFromEnv(getenv)
	}

	return &ServerConfig{
		port:             port,
		dbURI:            dbURI,
		schemaRepository: m.SchemaRepository,
		upload:           m.Upload.trySeal(),
		cors:             m.CORS.trySeal(),
	}
}

func (u *UploadConfigMarshall) trySeal() *UploadConfig {
	out := &UploadConfig{dir: DefaultUploadDir, maxBytes: DefaultUploadSize}
	if u == nil {
		return out
	}
	if u.Dir != "" {
		out.dir = u.Dir
	}
	if 0 < u.MaxBytes {
		out.maxBytes = u.MaxBytes
	}
	if 0 < u.RatePerMinute {
		out.ratePerMinute = u.RatePerMinute
	}
	return out
}

func (c *CORSConfigMarshall) trySeal() *CORSConfig {
	if c == nil || len(c.AllowOrigins) == 0 {
		return &CORSConfig{allowOrigins: []string{"*"}}
	}
	return &CORSConfig{allowOrigins: append([]string(nil), c.AllowOrigins...)}
}
