package config

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"swadiq-lms/app/database"
	"swadiq-lms/app/database/memstore"
	"swadiq-lms/app/models"
	"swadiq-lms/app/services"
)

const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

type Config struct {
	Server  ServerConfig
	DB      DBConfig
	Auth    AuthConfig
	Payroll PayrollConfig
	Rollbar RollbarConfig
}

type ServerConfig struct {
	Address  string
	Timezone string
}

type DBConfig struct {
	Driver       string
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type AuthConfig struct {
	JWTSecret string
}

type PayrollConfig struct {
	DefaultBaseAmount int64
	PayModel          models.PayModel
	CloseSchedule     string
	AutoClose         bool
}

type RollbarConfig struct {
	Token       string
	Environment string
}

// DSN builds the lib/pq connection string
func (c DBConfig) DSN() string {
	dsn := fmt.Sprintf("host=%s port=%d user=%s dbname=%s sslmode=%s connect_timeout=60",
		c.Host, c.Port, c.User, c.Name, c.SSLMode)
	if c.Password != "" {
		dsn += " password=" + c.Password
	}
	return dsn
}

// Location loads the configured time zone, falling back to East Africa Time
func (c ServerConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		log.Printf("Warning: Failed to load %s location, falling back to UTC+3: %v", c.Timezone, err)
		return time.FixedZone("EAT", 3*60*60)
	}
	return loc
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetTypeByDefaultValue(true)

	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.timezone", "Africa/Kampala")
	v.SetDefault("db.driver", DriverPostgres)
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "postgres")
	v.SetDefault("db.password", "")
	v.SetDefault("db.name", "swadiq")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open_conns", 25)
	v.SetDefault("db.max_idle_conns", 5)
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("payroll.default_base_amount", models.DefaultBaseAmount)
	v.SetDefault("payroll.pay_model", string(models.PayModelRetainerPlusPerClass))
	v.SetDefault("payroll.close_schedule", services.DefaultCloseSchedule)
	v.SetDefault("payroll.auto_close", true)
	v.SetDefault("rollbar.token", "")
	v.SetDefault("rollbar.environment", "development")

	v.SetEnvPrefix("LMS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads configuration from defaults, an optional .env file and LMS_* variables
func Load(envFile string) (*Config, error) {
	if envFile == "" {
		envFile = ".env"
	}
	// load .env if it exists (ignore if it does not)
	if _, err := os.Stat(envFile); err == nil {
		if err := godotenv.Load(envFile); err != nil {
			return nil, errors.Wrapf(err, "loading %s", envFile)
		}
	} else if !os.IsNotExist(err) {
		return nil, errors.Wrapf(err, "stat %s", envFile)
	}

	cfg := fromViper(newViper())
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func fromViper(v *viper.Viper) *Config {
	return &Config{
		Server: ServerConfig{
			Address:  v.GetString("server.address"),
			Timezone: v.GetString("server.timezone"),
		},
		DB: DBConfig{
			Driver:       strings.ToLower(v.GetString("db.driver")),
			Host:         v.GetString("db.host"),
			Port:         v.GetInt("db.port"),
			User:         v.GetString("db.user"),
			Password:     v.GetString("db.password"),
			Name:         v.GetString("db.name"),
			SSLMode:      v.GetString("db.sslmode"),
			MaxOpenConns: v.GetInt("db.max_open_conns"),
			MaxIdleConns: v.GetInt("db.max_idle_conns"),
		},
		Auth: AuthConfig{
			JWTSecret: v.GetString("auth.jwt_secret"),
		},
		Payroll: PayrollConfig{
			DefaultBaseAmount: v.GetInt64("payroll.default_base_amount"),
			PayModel:          models.PayModel(v.GetString("payroll.pay_model")),
			CloseSchedule:     v.GetString("payroll.close_schedule"),
			AutoClose:         v.GetBool("payroll.auto_close"),
		},
		Rollbar: RollbarConfig{
			Token:       v.GetString("rollbar.token"),
			Environment: v.GetString("rollbar.environment"),
		},
	}
}

func (c *Config) validate() error {
	switch c.DB.Driver {
	case DriverPostgres, DriverMemory:
	default:
		return errors.Errorf("unknown db.driver %q", c.DB.Driver)
	}
	if !c.Payroll.PayModel.Valid() {
		return errors.Errorf("unknown payroll.pay_model %q", c.Payroll.PayModel)
	}
	if c.Payroll.DefaultBaseAmount <= 0 {
		return errors.New("payroll.default_base_amount must be positive")
	}
	if c.Auth.JWTSecret == "" {
		return errors.New("auth.jwt_secret is required")
	}
	return nil
}

// ServiceOptions maps the payroll settings onto the service
func (c *Config) ServiceOptions() services.Options {
	return services.Options{
		DefaultBaseAmount: c.Payroll.DefaultBaseAmount,
		PayModel:          c.Payroll.PayModel,
		Location:          c.Server.Location(),
	}
}

// OpenDB opens and pings the Postgres pool
func OpenDB(ctx context.Context, c DBConfig) (*sqlx.DB, error) {
	log.Printf("Attempting to connect to database at %s:%d", c.Host, c.Port)
	db, err := sqlx.Open("postgres", c.DSN())
	if err != nil {
		return nil, errors.Wrap(err, "opening database connection")
	}

	// Set connection pool settings
	db.SetMaxOpenConns(c.MaxOpenConns)
	db.SetMaxIdleConns(c.MaxIdleConns)

	log.Println("Testing database connection...")
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "database connection failed")
	}
	log.Println("Database connected successfully")
	return db, nil
}

// OpenStore returns the store selected by db.driver along with its close func.
// Postgres stores are migrated before use.
func OpenStore(ctx context.Context, c DBConfig) (services.Store, func() error, error) {
	if c.Driver == DriverMemory {
		log.Println("Using in-memory store; data is lost on restart")
		return memstore.New(), func() error { return nil }, nil
	}

	db, err := OpenDB(ctx, c)
	if err != nil {
		return nil, nil, err
	}
	if err := database.RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, nil, err
	}
	return database.NewStore(db), db.Close, nil
}
