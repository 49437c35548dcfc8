// Package config provides functionality for managing configuration options
// for the application using command-line flags, an optional JSON file,
// a .env file and environment variables.
package config

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Supported credential store drivers.
const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
)

// Options holds the configuration values for the application.
type Options struct {
	// Port defines the server's listening address (ip:port).
	Port string

	// StoreDriver selects the credential store backend: "mongo" or "postgres".
	StoreDriver string

	// DatabaseDSN holds the PostgreSQL connection string.
	DatabaseDSN string

	// MongoURI and MongoDatabase locate the MongoDB deployment.
	MongoURI      string
	MongoDatabase string

	// SecretKey is the HMAC key used to sign and verify session tokens.
	SecretKey string

	// TokenTTL is the lifetime of every issued session token.
	TokenTTL time.Duration

	// CookieSecure sets the Secure attribute on the session cookie.
	CookieSecure bool

	// RedisAddr, when set, moves the revocation set to Redis.
	RedisAddr string

	// TLSCert and TLSKey enable HTTPS when both are set.
	TLSCert string
	TLSKey  string

	// LogLevel is the minimum zap level to emit.
	LogLevel string

	// Config is the path to the Config file.
	Config string
}

// fileOptions mirrors Options for JSON config files. Durations are
// written as strings such as "90m".
type fileOptions struct {
	Port          string `json:"server_address"`
	StoreDriver   string `json:"store_driver"`
	DatabaseDSN   string `json:"database_dsn"`
	MongoURI      string `json:"mongo_uri"`
	MongoDatabase string `json:"mongo_database"`
	SecretKey     string `json:"secret_key"`
	TokenTTL      string `json:"token_ttl"`
	CookieSecure  *bool  `json:"cookie_secure"`
	RedisAddr     string `json:"redis_addr"`
	TLSCert       string `json:"tls_cert"`
	TLSKey        string `json:"tls_key"`
	LogLevel      string `json:"log_level"`
}

// Parse loads ./.env if present and then parses the process arguments and
// environment. Invalid configuration terminates the process.
func Parse() *Options {
	if err := LoadEnvFile(".env"); err != nil {
		log.Fatalf("error while loading .env file: %v", err)
	}

	options, err := ParseArgs(os.Args[1:])
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	return options
}

// LoadEnvFile copies variables from a dotenv file into the process
// environment without overriding variables that are already set.
// A missing file is not an error.
func LoadEnvFile(path string) error {
	err := godotenv.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// ParseArgs builds Options from flag defaults, then the JSON config file,
// then environment variables, and validates the result.
func ParseArgs(args []string) (*Options, error) {
	options := &Options{}

	fset := flag.NewFlagSet("cookieauth", flag.ContinueOnError)
	fset.StringVar(&options.Port, "a", "localhost:8080", "run on ip:port server")
	fset.StringVar(&options.StoreDriver, "store", DriverMongo, "credential store driver (mongo|postgres)")
	fset.StringVar(&options.DatabaseDSN, "d", "", "db address")
	fset.StringVar(&options.MongoURI, "m", "mongodb://localhost:27017", "mongo connection uri")
	fset.StringVar(&options.MongoDatabase, "mdb", "cookieauth", "mongo database name")
	fset.StringVar(&options.SecretKey, "s", "", "token signing key")
	fset.DurationVar(&options.TokenTTL, "t", time.Hour, "session token lifetime")
	fset.BoolVar(&options.CookieSecure, "secure", false, "set the Secure cookie attribute")
	fset.StringVar(&options.RedisAddr, "r", "", "redis address for the revocation set")
	fset.StringVar(&options.TLSCert, "cert", "", "path to TLS certificate")
	fset.StringVar(&options.TLSKey, "key", "", "path to TLS private key")
	fset.StringVar(&options.LogLevel, "l", "info", "log level")
	fset.StringVar(&options.Config, "config", "config.json", "path to config file")
	fset.StringVar(&options.Config, "c", "config.json", "path to config file (shorthand)")

	if err := fset.Parse(args); err != nil {
		return nil, err
	}

	// Override flags with environment variables if set
	if configPath := os.Getenv("CONFIG"); configPath != "" {
		options.Config = configPath
	}

	if options.Config != "" {
		if _, err := os.Stat(options.Config); err == nil {
			if err := options.loadFile(options.Config); err != nil {
				return nil, err
			}
		}
	}

	if err := options.loadEnv(); err != nil {
		return nil, err
	}

	if err := options.Validate(); err != nil {
		return nil, err
	}
	return options, nil
}

func (o *Options) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("error while reading config file: %w", err)
	}

	var f fileOptions
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("error while parsing config file: %w", err)
	}

	setString(&o.Port, f.Port)
	setString(&o.StoreDriver, f.StoreDriver)
	setString(&o.DatabaseDSN, f.DatabaseDSN)
	setString(&o.MongoURI, f.MongoURI)
	setString(&o.MongoDatabase, f.MongoDatabase)
	setString(&o.SecretKey, f.SecretKey)
	setString(&o.RedisAddr, f.RedisAddr)
	setString(&o.TLSCert, f.TLSCert)
	setString(&o.TLSKey, f.TLSKey)
	setString(&o.LogLevel, f.LogLevel)
	if f.CookieSecure != nil {
		o.CookieSecure = *f.CookieSecure
	}
	if f.TokenTTL != "" {
		ttl, err := time.ParseDuration(f.TokenTTL)
		if err != nil {
			return fmt.Errorf("config file token_ttl: %w", err)
		}
		o.TokenTTL = ttl
	}
	return nil
}

func (o *Options) loadEnv() error {
	setString(&o.Port, os.Getenv("SERVER_ADDRESS"))
	setString(&o.StoreDriver, os.Getenv("STORE_DRIVER"))
	setString(&o.DatabaseDSN, os.Getenv("DATABASE_DSN"))
	setString(&o.MongoURI, os.Getenv("MONGO_URI"))
	setString(&o.MongoDatabase, os.Getenv("MONGO_DATABASE"))
	setString(&o.SecretKey, os.Getenv("SECRET_KEY"))
	setString(&o.RedisAddr, os.Getenv("REDIS_ADDR"))
	setString(&o.TLSCert, os.Getenv("TLS_CERT"))
	setString(&o.TLSKey, os.Getenv("TLS_KEY"))
	setString(&o.LogLevel, os.Getenv("LOG_LEVEL"))

	if v := os.Getenv("TOKEN_TTL"); v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("TOKEN_TTL: %w", err)
		}
		o.TokenTTL = ttl
	}
	if v := os.Getenv("COOKIE_SECURE"); v != "" {
		secure, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("COOKIE_SECURE: %w", err)
		}
		o.CookieSecure = secure
	}
	return nil
}

// Validate reports the first configuration problem that would prevent the
// server from starting.
func (o *Options) Validate() error {
	if o.SecretKey == "" {
		return errors.New("secret key is required (-s or SECRET_KEY)")
	}
	if o.TokenTTL <= 0 {
		return fmt.Errorf("token ttl must be positive, got %s", o.TokenTTL)
	}
	switch o.StoreDriver {
	case DriverMongo:
		if o.MongoURI == "" || o.MongoDatabase == "" {
			return errors.New("mongo store needs both a uri and a database name")
		}
	case DriverPostgres:
		if o.DatabaseDSN == "" {
			return errors.New("postgres store needs a dsn (-d or DATABASE_DSN)")
		}
	default:
		return fmt.Errorf("unknown store driver %q", o.StoreDriver)
	}
	if (o.TLSCert == "") != (o.TLSKey == "") {
		return errors.New("tls needs both a certificate and a key")
	}
	return nil
}

// UseTLS reports whether the server should listen with HTTPS.
func (o *Options) UseTLS() bool {
	return o.TLSCert != "" && o.TLSKey != ""
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
