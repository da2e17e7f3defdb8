package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNoDatabase means neither DATABASE_URL nor POSTGRES_* is configured. The
// game service runs without persistence in that case.
var ErrNoDatabase = errors.New("no database configured")

type Database struct {
	Username string
	Password string
	Host     string
	Port     uint16
	DBName   string
	SSLMode  string
}

func loadPassword() (string, error) {
	password, ok := os.LookupEnv("POSTGRES_PASSWORD")
	if ok {
		return password, nil
	}

	passwordFile, ok := os.LookupEnv("POSTGRES_PASSWORD_FILE")
	if !ok {
		return "", fmt.Errorf("no POSTGRES_PASSWORD or POSTGRES_PASSWORD_FILE env variable set")
	}

	data, err := os.ReadFile(passwordFile)
	if err != nil {
		return "", fmt.Errorf("unable to read from password file: %w", err)
	}

	return strings.TrimSpace(string(data)), nil
}

func lookupRequired(names ...string) (map[string]string, error) {
	values := make(map[string]string, len(names))
	for _, name := range names {
		v, ok := os.LookupEnv(name)
		if !ok {
			return nil, fmt.Errorf("no %s env variable set", name)
		}
		values[name] = v
	}
	return values, nil
}

func NewDatabase() (*Database, error) {
	if _, ok := os.LookupEnv("POSTGRES_USER"); !ok {
		return nil, ErrNoDatabase
	}

	env, err := lookupRequired(
		"POSTGRES_USER", "POSTGRES_HOST", "POSTGRES_PORT", "POSTGRES_DB",
	)
	if err != nil {
		return nil, err
	}

	password, err := loadPassword()
	if err != nil {
		return nil, fmt.Errorf("unable to load password: %w", err)
	}

	port, err := strconv.ParseUint(env["POSTGRES_PORT"], 10, 16)
	if err != nil {
		return nil, fmt.Errorf("unable to convert port to int: %w", err)
	}

	sslMode, ok := os.LookupEnv("POSTGRES_SSLMODE")
	if !ok {
		sslMode = "disable"
	}

	return &Database{
		Username: env["POSTGRES_USER"],
		Password: password,
		Host:     env["POSTGRES_HOST"],
		Port:     uint16(port),
		DBName:   env["POSTGRES_DB"],
		SSLMode:  sslMode,
	}, nil
}

func (c Database) URL() string {
	return fmt.Sprintf(
		"postgresql://%s:%s@%s:%d/%s?sslmode=%s",
		url.QueryEscape(c.Username),
		url.QueryEscape(c.Password),
		c.Host,
		c.Port,
		c.DBName,
		c.SSLMode,
	)
}

// DbURL prefers DATABASE_URL and falls back to POSTGRES_* variables.
func DbURL() (string, error) {
	if dbURL, ok := os.LookupEnv("DATABASE_URL"); ok {
		return dbURL, nil
	}

	cfg, err := NewDatabase()
	if err != nil {
		return "", err
	}
	return cfg.URL(), nil
}

func NewPgxpoolConfig() (*pgxpool.Config, error) {
	dbURL, err := DbURL()
	if err != nil {
		return nil, err
	}
	return pgxpool.ParseConfig(dbURL)
}
