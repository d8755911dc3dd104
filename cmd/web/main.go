// Package main is the entry point for the reading log web server.
// It wires together configuration, the database connection, and the HTTP router.
package main

import (
	"context"
	"flag"
	"fmt"
	"html/template"
	"log/slog"
	"net"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/aoideee/booknotes/internal/data"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"

	_ "github.com/jackc/pgx/v5/stdlib" // Register the "pgx" driver with database/sql.
	_ "github.com/lib/pq"              // Register the PostgreSQL driver with database/sql.
	_ "github.com/mattn/go-sqlite3"    // Register the "sqlite3" driver with database/sql.
)

// appVersion is the current version of the server, shown in logs.
const appVersion = "1.0.0"

// serverConfig holds all the values that can be tweaked at startup via
// command-line flags. Every flag defaults to an environment variable.
type serverConfig struct {
	port        int    // TCP port the HTTP server listens on (default 3000)
	environment string // Runtime environment: development, staging, or production
	db          struct {
		driver       string // postgres, pgx or sqlite3
		dsn          string // Data Source Name; built from DB_* when empty
		maxOpenConns int
		maxIdleTime  time.Duration
		migrate      bool // create the books table on startup
	}
	limiter struct {
		rps     float64
		burst   int
		enabled bool
	}
	otel struct {
		endpoint string // OTLP/HTTP collector URL; tracing is off when empty
	}
}

// applicationDependencies bundles every shared resource that HTTP handlers need.
// A pointer to this struct is passed as the receiver on all handler and route methods.
type applicationDependencies struct {
	config        serverConfig                  // Server configuration loaded from flags
	logger        *slog.Logger                  // Structured logger that writes to stdout
	models        data.Models                   // Database model layer for all tables
	templateCache map[string]*template.Template // Parsed pages keyed by file name
}

func main() {
	// A missing .env file is fine; real environment variables still apply.
	_ = godotenv.Load()

	settings := parseFlags(os.Args[1:])

	// Create a structured logger that writes human-readable text to stdout.
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	shutdownTracing, err := setupTracing(context.Background(), settings.otel.endpoint)
	if err != nil {
		logger.Error(err.Error())
		os.Exit(1)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(ctx); err != nil {
			logger.Error("tracer shutdown failed", "error", err)
		}
	}()

	dialect, err := dialectFor(settings.db.driver)
	if err != nil {
		logger.Error(err.Error())
		os.Exit(1)
	}

	db, err := openDB(settings)
	if err != nil {
		logger.Error(err.Error())
		os.Exit(1)
	}
	defer db.Close()

	logger.Info("database connection established", "driver", settings.db.driver)

	if settings.db.migrate {
		if err := data.Migrate(context.Background(), db, dialect); err != nil {
			logger.Error(err.Error())
			os.Exit(1)
		}
	}

	templateCache, err := newTemplateCache()
	if err != nil {
		logger.Error(err.Error())
		os.Exit(1)
	}

	appInstance := &applicationDependencies{
		config:        settings,
		logger:        logger,
		models:        data.NewModels(db, dialect),
		templateCache: templateCache,
	}

	logger.Info("booknotes", "version", appVersion)

	if err := appInstance.serve(); err != nil {
		logger.Error(err.Error())
		os.Exit(1)
	}
}

// parseFlags registers the command-line flags and parses args. Defaults come
// from the environment so the server runs unchanged from a .env file.
func parseFlags(args []string) serverConfig {
	var settings serverConfig

	fs := flag.NewFlagSet("booknotes", flag.ExitOnError)

	fs.IntVar(&settings.port, "port", envInt("PORT", 3000), "Server port")
	fs.StringVar(&settings.environment, "env", envString("ENV", "development"), "Environment(development|staging|production)")

	fs.StringVar(&settings.db.driver, "db-driver", envString("DB_DRIVER", "postgres"), "Database driver (postgres|pgx|sqlite3)")
	fs.StringVar(&settings.db.dsn, "db-dsn", envString("DB_DSN", postgresDSNFromEnv()), "Database DSN")
	fs.IntVar(&settings.db.maxOpenConns, "db-max-open-conns", envInt("DB_MAX_OPEN_CONNS", 1), "Maximum open database connections")
	fs.DurationVar(&settings.db.maxIdleTime, "db-max-idle-time", 15*time.Minute, "Maximum connection idle time")
	fs.BoolVar(&settings.db.migrate, "db-migrate", envBool("DB_MIGRATE", true), "Create the books table if missing")

	fs.Float64Var(&settings.limiter.rps, "limiter-rps", envFloat("LIMITER_RPS", 10), "Rate limiter maximum requests per second")
	fs.IntVar(&settings.limiter.burst, "limiter-burst", envInt("LIMITER_BURST", 40), "Rate limiter maximum burst")
	fs.BoolVar(&settings.limiter.enabled, "limiter-enabled", envBool("LIMITER_ENABLED", true), "Enable rate limiter")

	fs.StringVar(&settings.otel.endpoint, "otel-endpoint", envString("OTEL_EXPORTER_OTLP_ENDPOINT", ""), "OTLP/HTTP trace collector URL")

	_ = fs.Parse(args)
	return settings
}

// postgresDSNFromEnv assembles a postgres URL from DB_USER, DB_PASSWORD,
// DB_HOST, DB_PORT and DB_NAME.
func postgresDSNFromEnv() string {
	u := url.URL{
		Scheme:   "postgres",
		Host:     net.JoinHostPort(envString("DB_HOST", "localhost"), strconv.Itoa(envInt("DB_PORT", 5432))),
		Path:     "/" + envString("DB_NAME", "booknotes"),
		RawQuery: "sslmode=" + envString("DB_SSLMODE", "disable"),
	}
	user := envString("DB_USER", "booknotes")
	if password := envString("DB_PASSWORD", ""); password != "" {
		u.User = url.UserPassword(user, password)
	} else {
		u.User = url.User(user)
	}
	return u.String()
}

// dialectFor maps a database/sql driver name onto the SQL dialect it speaks.
func dialectFor(driver string) (string, error) {
	switch driver {
	case "postgres", "pgx":
		return data.DialectPostgres, nil
	case "sqlite3":
		return data.DialectSQLite, nil
	default:
		return "", fmt.Errorf("unsupported database driver %q", driver)
	}
}

// openDB opens a database handle using the configured driver and DSN,
// then pings the database with a 5-second timeout to confirm it is reachable.
func openDB(settings serverConfig) (*sqlx.DB, error) {
	// sqlx.Open only validates the DSN format; it does not actually connect yet.
	db, err := sqlx.Open(settings.db.driver, settings.db.dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(settings.db.maxOpenConns)
	db.SetMaxIdleConns(settings.db.maxOpenConns)
	db.SetConnMaxIdleTime(settings.db.maxIdleTime)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// PingContext performs a real round-trip to verify the database is reachable.
	err = db.PingContext(ctx)
	if err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

func envString(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}

func envInt(key string, defaultValue int) int {
	i, err := strconv.Atoi(envString(key, ""))
	if err != nil {
		return defaultValue
	}
	return i
}

func envFloat(key string, defaultValue float64) float64 {
	f, err := strconv.ParseFloat(envString(key, ""), 64)
	if err != nil {
		return defaultValue
	}
	return f
}

func envBool(key string, defaultValue bool) bool {
	b, err := strconv.ParseBool(envString(key, ""))
	if err != nil {
		return defaultValue
	}
	return b
}
