// Package config provides functionality for managing configuration options
// for the application using command-line flags, a JSON config file and
// environment variables.
package config

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/atinyakov/FinTrack/internal/db"
	"github.com/joho/godotenv"
	"go.uber.org/multierr"
)

// Options holds the configuration values for the application.
type Options struct {
	// Address defines the server's listening address (ip:port).
	Address string `json:"address"`

	// LogLevel is a zap level name such as debug, info or warn.
	LogLevel string `json:"log_level"`

	// DB holds the database connection settings.
	DB db.Config `json:"database"`

	// SecretKey signs access tokens.
	SecretKey string `json:"secret_key"`

	// TokenTTL is the lifetime of an access token.
	TokenTTL time.Duration `json:"-"`

	// TokenTTLSeconds is TokenTTL as read from the config file.
	TokenTTLSeconds int `json:"token_ttl"`

	// CORSOrigins lists the origins allowed to call the API.
	CORSOrigins []string `json:"cors_origins"`

	// TLSCertFile and TLSKeyFile enable HTTPS when both are set.
	TLSCertFile string `json:"tls_cert_file"`
	TLSKeyFile  string `json:"tls_key_file"`

	// Config is the path to the Config file.
	Config string `json:"-"`
}

// Parse loads .env if present and reads the configuration from os.Args and
// the process environment.
func Parse() (*Options, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return ParseArgs(os.Args[1:], os.Getenv)
}

// ParseArgs builds Options from command-line args, then the JSON config file,
// then environment variables read with getenv. Later sources win.
func ParseArgs(args []string, getenv func(string) string) (*Options, error) {
	opts := &Options{}
	var ttlSeconds int
	var origins string

	fs := flag.NewFlagSet("fintrack", flag.ContinueOnError)
	fs.StringVar(&opts.Address, "a", "localhost:8000", "run on ip:port server")
	fs.StringVar(&opts.LogLevel, "l", "info", "log level")
	fs.StringVar(&opts.DB.DSN, "d", "", "database DSN")
	fs.StringVar(&opts.SecretKey, "s", "", "token signing secret")
	fs.IntVar(&ttlSeconds, "t", int(defaultTTL/time.Second), "access token lifetime in seconds")
	fs.StringVar(&origins, "cors", "", "comma separated allowed CORS origins")
	fs.StringVar(&opts.Config, "config", "config.json", "path to config file")
	fs.StringVar(&opts.Config, "c", "config.json", "path to config file (shorthand)")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	opts.TokenTTLSeconds = ttlSeconds
	opts.CORSOrigins = splitList(origins)

	if configPath := getenv("CONFIG"); configPath != "" {
		opts.Config = configPath
	}
	if err := opts.loadFile(); err != nil {
		return nil, err
	}

	if err := opts.applyEnv(getenv); err != nil {
		return nil, err
	}

	opts.TokenTTL = time.Duration(opts.TokenTTLSeconds) * time.Second
	if len(opts.CORSOrigins) == 0 {
		opts.CORSOrigins = []string{"http://localhost:5173"}
	}
	return opts, nil
}

const defaultTTL = time.Hour

func (o *Options) loadFile() error {
	if o.Config == "" {
		return nil
	}
	if _, err := os.Stat(o.Config); err != nil {
		return nil
	}
	data, err := os.ReadFile(o.Config)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := json.Unmarshal(data, o); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func (o *Options) applyEnv(getenv func(string) string) error {
	setString := func(dst *string, key string) {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}

	setString(&o.Address, "SERVER_ADDRESS")
	setString(&o.LogLevel, "LOG_LEVEL")
	setString(&o.SecretKey, "SECRET_KEY")
	setString(&o.DB.DSN, "DATABASE_DSN")
	setString(&o.DB.Host, "DB_HOST")
	setString(&o.DB.User, "DB_USER")
	setString(&o.DB.Password, "DB_PASSWORD")
	setString(&o.DB.Name, "DB_NAME")
	setString(&o.DB.SSLMode, "DB_SSLMODE")
	setString(&o.TLSCertFile, "TLS_CERT_FILE")
	setString(&o.TLSKeyFile, "TLS_KEY_FILE")

	var err error
	if v := getenv("DB_PORT"); v != "" {
		port, perr := strconv.Atoi(v)
		if perr != nil {
			err = multierr.Append(err, fmt.Errorf("DB_PORT: %w", perr))
		}
		o.DB.Port = port
	}
	if v := getenv("TOKEN_TTL"); v != "" {
		ttl, perr := strconv.Atoi(v)
		if perr != nil {
			err = multierr.Append(err, fmt.Errorf("TOKEN_TTL: %w", perr))
		}
		o.TokenTTLSeconds = ttl
	}
	if v := getenv("CORS_ORIGINS"); v != "" {
		o.CORSOrigins = splitList(v)
	}
	return err
}

// Validate reports every setting the server cannot start without.
func (o *Options) Validate() error {
	var err error
	if o.Address == "" {
		err = multierr.Append(err, errors.New("server address is required"))
	}
	if o.SecretKey == "" {
		err = multierr.Append(err, errors.New("SECRET_KEY is required"))
	}
	if o.TokenTTL <= 0 {
		err = multierr.Append(err, errors.New("TOKEN_TTL must be positive"))
	}
	if o.DB.DSN == "" && (o.DB.User == "" || o.DB.Name == "") {
		err = multierr.Append(err, errors.New("DATABASE_DSN or DB_USER and DB_NAME are required"))
	}
	if (o.TLSCertFile == "") != (o.TLSKeyFile == "") {
		err = multierr.Append(err, errors.New("TLS_CERT_FILE and TLS_KEY_FILE must be set together"))
	}
	return err
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
