package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
)

type Config struct {
	AppPort string

	MySQLHost string
	MySQLPort string
	MySQLDB   string
	MySQLUser string
	MySQLPass string

	RedisAddr string
	RedisDB   int

	// Daraja (Safaricom M-Pesa) gateway settings.
	DarajaConsumerKey    string
	DarajaConsumerSecret string
	DarajaShortCode      string
	DarajaPasskey        string
	DarajaCallbackURL    string
	DarajaEnvironment    string // "sandbox" or "production"
	DarajaInitiatorName  string
	DarajaSecurityCred   string
	BaseURL              string // public base URL for result/timeout callbacks

	TokenTTLSecs int
}

func getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func Load() *Config {
	c := &Config{
		AppPort:   getenv("APP_PORT", "8080"),
		MySQLHost: getenv("MYSQL_HOST", "mysql"),
		MySQLPort: getenv("MYSQL_PORT", "3306"),
		MySQLDB:   getenv("MYSQL_DB", "loans"),
		MySQLUser: getenv("MYSQL_USER", "loans"),
		MySQLPass: getenv("MYSQL_PASS", "loans"),

		RedisAddr: getenv("REDIS_ADDR", "redis:6379"),

		DarajaConsumerKey:    os.Getenv("DARAJA_CONSUMER_KEY"),
		DarajaConsumerSecret: os.Getenv("DARAJA_CONSUMER_SECRET"),
		DarajaShortCode:      getenv("DARAJA_BUSINESS_SHORTCODE", "174379"),
		DarajaPasskey:        os.Getenv("DARAJA_PASSKEY"),
		DarajaCallbackURL:    os.Getenv("DARAJA_CALLBACK_URL"),
		DarajaEnvironment:    getenv("DARAJA_ENVIRONMENT", "sandbox"),
		DarajaInitiatorName:  os.Getenv("B2C_INITIATOR_NAME"),
		DarajaSecurityCred:   os.Getenv("SECURITY_CREDENTIAL"),
		BaseURL:              os.Getenv("BASE_URL"),

		// Daraja tokens expire after 3599s; keep a margin.
		TokenTTLSecs: 3300,
	}
	if v := os.Getenv("REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.RedisDB = n
		}
	}
	if v := os.Getenv("TOKEN_TTL_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.TokenTTLSecs = n
		}
	}
	return c
}

func (c *Config) Validate() error {
	if c.MySQLHost == "" || c.MySQLPort == "" || c.MySQLDB == "" || c.MySQLUser == "" {
		return errors.New("missing MySQL config (MYSQL_HOST/PORT/DB/USER)")
	}
	// ensure port is valid
	if _, err := net.LookupPort("tcp", c.MySQLPort); err != nil {
		return fmt.Errorf("invalid MYSQL_PORT %q: %w", c.MySQLPort, err)
	}
	if c.AppPort == "" {
		return errors.New("missing APP_PORT")
	}
	if c.DarajaConsumerKey == "" || c.DarajaConsumerSecret == "" {
		return errors.New("missing Daraja credentials (DARAJA_CONSUMER_KEY/DARAJA_CONSUMER_SECRET)")
	}
	if c.DarajaEnvironment != "sandbox" && c.DarajaEnvironment != "production" {
		return fmt.Errorf("invalid DARAJA_ENVIRONMENT %q (want sandbox or production)", c.DarajaEnvironment)
	}
	return nil
}

func (c *Config) mysqlAddr() string { return net.JoinHostPort(c.MySQLHost, c.MySQLPort) }

func (c *Config) MySQLDSN() string {
	// multiStatements=true is handy for migrations; parseTime needed for DATETIME
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?multiStatements=true&parseTime=true&charset=utf8mb4,utf8",
		c.MySQLUser, c.MySQLPass, c.mysqlAddr(), c.MySQLDB)
}
