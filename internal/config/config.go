package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// ConfigFileEnv names an env file to load instead of the default locations.
// Set but empty disables config files altogether.
const ConfigFileEnv = "BOOK_SERVER_CONFIG"

const (
	DriverSqlite   = "sqlite"
	DriverPostgres = "postgres"

	AuthPassthrough = "passthrough"

	SessionRedis  = "redis"
	SessionMemory = "memory"
)

// ErrCredentialsNotSupported is returned when credentials are given for a
// sqlite book.
var ErrCredentialsNotSupported = errors.New("DB_DRIVER sqlite does not accept credentials (maybe AUTH_MECHANISM passthrough is set?)")

type Config struct {
	SecretKey []byte
	LogLevel  string

	DBDriver string
	DBName   string
	DBHost   string

	AuthMechanism            string
	TransactionPageLength    int
	PreselectedContraAccount string

	SessionType   string
	RedisHost     string
	RedisPort     string
	RedisPassword string

	Port            string
	OperatorWorkers int
}

// DefaultConfigFiles are read, in order, when ConfigFileEnv is not set.
func DefaultConfigFiles() []string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		if home, err := os.UserHomeDir(); err == nil {
			configHome = filepath.Join(home, ".config")
		}
	}
	files := []string{"/etc/book-server/config.env"}
	if configHome != "" {
		files = append(files, filepath.Join(configHome, "book-server", "config.env"))
	}
	return files
}

func ProcessEnvironmentVariables() (*Config, error) {
	if err := loadConfigFiles(); err != nil {
		return nil, err
	}

	env := Config{
		LogLevel:                 getEnvOrDefault("LOG_LEVEL", "warning"),
		DBDriver:                 getEnvOrDefault("DB_DRIVER", DriverSqlite),
		DBName:                   getEnvOrDefault("DB_NAME", "db/gnucash.sqlite"),
		DBHost:                   getEnvOrDefault("DB_HOST", "localhost"),
		AuthMechanism:            os.Getenv("AUTH_MECHANISM"),
		PreselectedContraAccount: os.Getenv("PRESELECTED_CONTRA_ACCOUNT"),
		SessionType:              getEnvOrDefault("SESSION_TYPE", SessionRedis),
		RedisHost:                getEnvOrDefault("REDIS_HOST", "localhost"),
		RedisPort:                getEnvOrDefault("REDIS_PORT", "6379"),
		RedisPassword:            os.Getenv("REDIS_PASSWORD"),
		Port:                     getEnvOrDefault("PORT", "9446"),
	}

	secretKey, err := hex.DecodeString(getEnvOrDefault("SECRET_KEY", "00000000"))
	if err != nil {
		return nil, fmt.Errorf("invalid SECRET_KEY: %w", err)
	}
	env.SecretKey = secretKey

	if env.TransactionPageLength, err = parsePositiveInt("TRANSACTION_PAGE_LENGTH", 25); err != nil {
		return nil, err
	}
	if env.OperatorWorkers, err = parsePositiveInt("OPERATOR_WORKERS", 1); err != nil {
		return nil, err
	}

	if env.DBDriver == "postgresql" {
		env.DBDriver = DriverPostgres
	}
	if env.DBDriver != DriverSqlite && env.DBDriver != DriverPostgres {
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", env.DBDriver)
	}
	if env.AuthMechanism != "" && env.AuthMechanism != AuthPassthrough {
		return nil, fmt.Errorf("unsupported AUTH_MECHANISM %q", env.AuthMechanism)
	}
	if env.SessionType != SessionRedis && env.SessionType != SessionMemory {
		return nil, fmt.Errorf("unsupported SESSION_TYPE %q", env.SessionType)
	}

	return &env, nil
}

// DBURI builds the URI of the book, including credentials when given.
func (c *Config) DBURI(user, password string) (string, error) {
	if c.DBDriver == DriverSqlite {
		if user != "" || password != "" {
			return "", ErrCredentialsNotSupported
		}
		return DriverSqlite + ":///" + c.DBName, nil
	}

	var auth string
	switch {
	case password != "":
		auth = url.UserPassword(user, password).String()
	case user != "":
		auth = url.User(user).String()
	}
	location := joinNonEmpty("/", c.DBHost, c.DBName)
	return c.DBDriver + "://" + joinNonEmpty("@", auth, location), nil
}

func loadConfigFiles() error {
	if path, ok := os.LookupEnv(ConfigFileEnv); ok {
		if path == "" {
			return nil
		}
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("failed to load config file: %w", err)
		}
		return nil
	}

	for _, path := range DefaultConfigFiles() {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}
	return nil
}

func getEnvOrDefault(key, def string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return def
}

func parsePositiveInt(key string, def int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 1 {
		return 0, fmt.Errorf("invalid %s %q: must be a positive integer", key, raw)
	}
	return value, nil
}

func joinNonEmpty(sep string, elems ...string) string {
	parts := make([]string, 0, len(elems))
	for _, elem := range elems {
		if elem != "" {
			parts = append(parts, elem)
		}
	}
	return strings.Join(parts, sep)
}
