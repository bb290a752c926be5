package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/time/rate"

	"sberbank-acquiring/internal/logger"
	"sberbank-acquiring/pkg/acquiring"
	"sberbank-acquiring/pkg/transport"
)

type Config struct {
	UserName   string
	Password   string
	APIURI     string
	HTTPMethod string
	Timeout    time.Duration
	VerifyTLS  bool
	Verbose    bool
	// RateLimit is requests per second; zero disables limiting.
	RateLimit float64
	Breaker   bool
	Tracing   bool
	AppEnv    string
}

// LoadConfig reads an optional .env file and then the environment.
// Missing credentials are left empty for acquiring.NewClient to reject.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		UserName:   os.Getenv("ACQUIRING_USERNAME"),
		Password:   os.Getenv("ACQUIRING_PASSWORD"),
		APIURI:     os.Getenv("ACQUIRING_API_URI"),
		HTTPMethod: os.Getenv("ACQUIRING_HTTP_METHOD"),
		AppEnv:     os.Getenv("APP_ENV"),
	}

	var err error
	if cfg.Timeout, err = durationEnv("ACQUIRING_TIMEOUT"); err != nil {
		return nil, err
	}
	if cfg.VerifyTLS, err = boolEnv("ACQUIRING_VERIFY_TLS"); err != nil {
		return nil, err
	}
	if cfg.Verbose, err = boolEnv("ACQUIRING_VERBOSE"); err != nil {
		return nil, err
	}
	if cfg.Breaker, err = boolEnv("ACQUIRING_CIRCUIT_BREAKER"); err != nil {
		return nil, err
	}
	if cfg.Tracing, err = boolEnv("ACQUIRING_TRACING"); err != nil {
		return nil, err
	}
	if v := os.Getenv("ACQUIRING_RATE_LIMIT"); v != "" {
		cfg.RateLimit, err = strconv.ParseFloat(v, 64)
		if err != nil || cfg.RateLimit < 0 {
			return nil, fmt.Errorf("invalid ACQUIRING_RATE_LIMIT %q", v)
		}
	}

	return cfg, nil
}

func durationEnv(key string) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func boolEnv(key string) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}

// customTransport reports whether the defaults of the lazily created
// transport are not enough.
func (c *Config) customTransport() bool {
	return c.Timeout > 0 || c.VerifyTLS || c.Verbose || c.RateLimit > 0 || c.Breaker || c.Tracing
}

// Transport assembles the transport stack: HTTP, then rate limit, circuit
// breaker and tracing from the inside out.
func (c *Config) Transport() transport.Transport {
	var tr transport.Transport = transport.NewHTTPTransport(
		transport.WithTLSVerification(c.VerifyTLS),
		transport.WithVerbose(c.Verbose),
		transport.WithTimeout(c.Timeout),
		transport.WithLogger(logger.L()),
	)
	if c.RateLimit > 0 {
		burst := int(c.RateLimit)
		if burst < 1 {
			burst = 1
		}
		tr = transport.RateLimited(tr, rate.NewLimiter(rate.Limit(c.RateLimit), burst))
	}
	if c.Breaker {
		tr = transport.CircuitBreaker(tr, "acquiring", transport.BreakerConfig{})
	}
	if c.Tracing {
		tr = transport.Traced(tr)
	}
	return tr
}

// Settings maps the config onto the client settings. The transport is left
// nil, so the client creates its default lazily, unless an option needs a
// custom one.
func (c *Config) Settings() acquiring.Settings {
	s := acquiring.Settings{
		UserName:   c.UserName,
		Password:   c.Password,
		APIURI:     c.APIURI,
		HTTPMethod: c.HTTPMethod,
		Logger:     logger.L(),
	}
	if c.customTransport() {
		s.HTTPClient = c.Transport()
	}
	return s
}
