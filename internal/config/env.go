// Package config loads nullscan's settings.
//
// Secrets and connection details come from the environment (an optional
// .env file in the working directory is read first). Analysis options come
// from a YAML file and are overridden by CLI flags.
package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"

	"github.com/koustreak/nullscan/internal/database"
	"github.com/koustreak/nullscan/internal/errs"
)

// Env is everything nullscan reads from the environment.
type Env struct {
	Connection Connection
	Runtime    Runtime
	Storage    Storage
}

// Connection is the database connection descriptor.
type Connection struct {
	Driver   string `env:"DB_DRIVER" env-default:"oracle"`
	User     string `env:"DB_USER"`
	Password string `env:"DB_PASS"`
	Host     string `env:"DB_HOST"`
	Port     string `env:"DB_PORT"`
	Service  string `env:"DB_SERVICE"`
	SSLMode  string `env:"DB_SSLMODE"`
}

// Runtime holds process-wide knobs.
type Runtime struct {
	LogLevel     string        `env:"NULLSCAN_LOG_LEVEL" env-default:"info"`
	LogFormat    string        `env:"NULLSCAN_LOG_FORMAT" env-default:"console"`
	QueryTimeout time.Duration `env:"NULLSCAN_QUERY_TIMEOUT" env-default:"5m"`
}

// Storage configures the S3-compatible bucket reports are uploaded to.
// It is only validated when an upload is requested.
type Storage struct {
	Endpoint  string `env:"MINIO_ENDPOINT"`
	AccessKey string `env:"MINIO_ACCESS_KEY"`
	SecretKey string `env:"MINIO_SECRET_KEY"`
	UseSSL    bool   `env:"MINIO_USE_SSL" env-default:"false"`
	Bucket    string `env:"MINIO_BUCKET" env-default:"nullscan"`
}

// LoadEnv reads dotenvFile (when it exists) into the process environment
// and then decodes the environment. Variables already set in the process
// win over the file. An empty dotenvFile skips the file.
//
// LoadEnv does not validate the connection; call Connection.Validate.
func LoadEnv(dotenvFile string) (*Env, error) {
	if dotenvFile != "" {
		if err := godotenv.Load(dotenvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, errs.Wrap(errs.ErrKindConfig, "failed to read "+dotenvFile, err)
		}
	}

	var env Env
	if err := cleanenv.ReadEnv(&env); err != nil {
		return nil, errs.Wrap(errs.ErrKindConfig, "failed to read environment", err)
	}
	return &env, nil
}

// Validate reports every required variable that is missing or empty.
func (c Connection) Validate() error {
	var missing []string
	for _, v := range []struct{ name, value string }{
		{"DB_USER", c.User},
		{"DB_PASS", c.Password},
		{"DB_HOST", c.Host},
		{"DB_PORT", c.Port},
		{"DB_SERVICE", c.Service},
	} {
		if strings.TrimSpace(v.value) == "" {
			missing = append(missing, v.name)
		}
	}
	if len(missing) > 0 {
		return errs.Newf(errs.ErrKindConfig,
			"missing required database environment variables: %s", strings.Join(missing, ", "))
	}
	return nil
}

// Credentials converts the descriptor for the driver packages.
func (c Connection) Credentials() database.Credentials {
	return database.Credentials{
		User:     c.User,
		Password: c.Password,
		Host:     c.Host,
		Port:     c.Port,
		Service:  c.Service,
		SSLMode:  c.SSLMode,
	}
}

// Redacted renders the descriptor for logs, without the password.
func (c Connection) Redacted() string {
	return c.Driver + "://" + c.User + ":***@" + c.Host + ":" + c.Port + "/" + c.Service
}

// Validate checks the storage settings needed for an upload.
func (s Storage) Validate() error {
	if s.Endpoint == "" || s.AccessKey == "" || s.SecretKey == "" || s.Bucket == "" {
		return errs.New(errs.ErrKindConfig,
			"upload needs MINIO_ENDPOINT, MINIO_ACCESS_KEY, MINIO_SECRET_KEY and MINIO_BUCKET")
	}
	return nil
}
