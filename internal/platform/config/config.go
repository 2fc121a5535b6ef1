package config

import (
	"fmt"
	"net/netip"
	"os"
	"strconv"
	"strings"
	"time"

	pstrings "agency/pkg/platform/strings"
)

// Store backends for consent snapshots.
const (
	StoreMemory   = "memory"
	StoreRedis    = "redis"
	StorePostgres = "postgres"
)

// Server captures HTTP server level configuration.
type Server struct {
	Addr            string
	ShutdownTimeout time.Duration
	RequestTimeout  time.Duration
	LogLevel        string

	JWTSigningKey   string
	JWTIssuer       string
	JWTAudience     string
	VisitorTokenTTL time.Duration
	SecureCookie    bool

	ConsentSnapshotTTL time.Duration
	// TrustedProxies are peers allowed to set X-Forwarded-For and X-Real-IP.
	TrustedProxies []netip.Prefix

	AdminToken   string
	IPHashKey    string
	StoreBackend string

	Catalog   CatalogConfig
	Redis     RedisConfig
	Postgres  PostgresConfig
	Telemetry TelemetryConfig
	RateLimit RateLimitConfig
}

// RateLimitConfig selects where request budgets are counted.
type RateLimitConfig struct {
	Disabled bool
	// Backend is StoreMemory or StoreRedis.
	Backend string
}

// CatalogConfig points the service at authored catalog data.
type CatalogConfig struct {
	// Dir is a directory of YAML files. Empty means the embedded sample.
	Dir          string
	BaseURL      string
	ProviderName string
	FeatureLimit int
}

// RedisConfig configures the go-redis client.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// PostgresConfig configures the database/sql pool.
type PostgresConfig struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// TelemetryConfig configures event delivery.
type TelemetryConfig struct {
	KafkaBrokers     []string
	KafkaTopic       string
	KafkaPartitions  int32
	BufferSize       int
	SampleRate       float64
	BreakerThreshold int
	BreakerCooldown  time.Duration
}

// DefaultConsentSnapshotTTL bounds how long a consent snapshot is trusted.
const DefaultConsentSnapshotTTL = 180 * 24 * time.Hour

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() (Server, error) {
	e := envReader{}
	cfg := Server{
		Addr:            e.str("AGENCY_ADDR", ":8080"),
		ShutdownTimeout: e.duration("SHUTDOWN_TIMEOUT", 10*time.Second),
		RequestTimeout:  e.duration("REQUEST_TIMEOUT", 15*time.Second),
		LogLevel:        e.str("LOG_LEVEL", "info"),

		// Use a default for development - should be overridden in production
		JWTSigningKey:   e.str("JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		JWTIssuer:       e.str("JWT_ISSUER", "agency"),
		JWTAudience:     e.str("JWT_AUDIENCE", "agency-site"),
		VisitorTokenTTL: e.duration("VISITOR_TOKEN_TTL", DefaultConsentSnapshotTTL),
		SecureCookie:    e.boolean("SECURE_COOKIE", true),

		ConsentSnapshotTTL: e.duration("CONSENT_SNAPSHOT_TTL", DefaultConsentSnapshotTTL),
		TrustedProxies:     e.prefixes("TRUSTED_PROXIES"),

		AdminToken:   os.Getenv("ADMIN_TOKEN"),
		IPHashKey:    os.Getenv("IP_HASH_KEY"),
		StoreBackend: strings.ToLower(e.str("CONSENT_STORE", StoreMemory)),

		Catalog: CatalogConfig{
			Dir:          os.Getenv("CATALOG_DIR"),
			BaseURL:      e.str("SITE_BASE_URL", "http://localhost:3000"),
			ProviderName: e.str("SITE_PROVIDER_NAME", "Agency"),
			FeatureLimit: e.integer("CARD_FEATURE_LIMIT", 5),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     e.integer("REDIS_POOL_SIZE", 10),
			MinIdleConns: e.integer("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  e.duration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  e.duration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: e.duration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Postgres: PostgresConfig{
			DSN:             os.Getenv("DATABASE_URL"),
			MaxOpenConns:    e.integer("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    e.integer("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: e.duration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
		},
		Telemetry: TelemetryConfig{
			KafkaBrokers:     pstrings.SplitCSV(os.Getenv("KAFKA_BROKERS")),
			KafkaTopic:       e.str("KAFKA_TOPIC", "agency.events"),
			KafkaPartitions:  int32(e.integer("KAFKA_PARTITIONS", 3)),
			BufferSize:       e.integer("TELEMETRY_BUFFER_SIZE", 1024),
			SampleRate:       e.float("TELEMETRY_SAMPLE_RATE", 1),
			BreakerThreshold: e.integer("TELEMETRY_BREAKER_THRESHOLD", 5),
			BreakerCooldown:  e.duration("TELEMETRY_BREAKER_COOLDOWN", 30*time.Second),
		},
		RateLimit: RateLimitConfig{
			Disabled: e.boolean("RATE_LIMIT_DISABLED", false),
			Backend:  strings.ToLower(e.str("RATE_LIMIT_STORE", StoreMemory)),
		},
	}
	if e.err != nil {
		return Server{}, e.err
	}
	if err := cfg.validate(); err != nil {
		return Server{}, err
	}
	return cfg, nil
}

// NeedsRedis reports whether any component is configured to use Redis.
func (c Server) NeedsRedis() bool {
	return c.StoreBackend == StoreRedis || c.RateLimit.Backend == StoreRedis
}

func (c Server) validate() error {
	switch c.StoreBackend {
	case StoreMemory:
	case StoreRedis:
		if c.Redis.URL == "" {
			return fmt.Errorf("CONSENT_STORE=redis requires REDIS_URL")
		}
	case StorePostgres:
		if c.Postgres.DSN == "" {
			return fmt.Errorf("CONSENT_STORE=postgres requires DATABASE_URL")
		}
	default:
		return fmt.Errorf("unknown CONSENT_STORE %q", c.StoreBackend)
	}
	switch c.RateLimit.Backend {
	case StoreMemory:
	case StoreRedis:
		if c.Redis.URL == "" {
			return fmt.Errorf("RATE_LIMIT_STORE=redis requires REDIS_URL")
		}
	default:
		return fmt.Errorf("unknown RATE_LIMIT_STORE %q", c.RateLimit.Backend)
	}
	if c.ConsentSnapshotTTL <= 0 {
		return fmt.Errorf("CONSENT_SNAPSHOT_TTL must be positive, got %v", c.ConsentSnapshotTTL)
	}
	if c.Telemetry.SampleRate < 0 || c.Telemetry.SampleRate > 1 {
		return fmt.Errorf("TELEMETRY_SAMPLE_RATE must be within [0,1], got %v", c.Telemetry.SampleRate)
	}
	return nil
}

// envReader remembers the first parse failure so FromEnv reads linearly.
type envReader struct {
	err error
}

func (e *envReader) str(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func (e *envReader) duration(key string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		e.fail(key, err)
		return fallback
	}
	return d
}

func (e *envReader) integer(key string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		e.fail(key, err)
		return fallback
	}
	return n
}

func (e *envReader) float(key string, fallback float64) float64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		e.fail(key, err)
		return fallback
	}
	return f
}

func (e *envReader) boolean(key string, fallback bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		e.fail(key, err)
		return fallback
	}
	return b
}

// prefixes reads a CSV of CIDRs or bare addresses. A bare address is a
// single-host prefix.
func (e *envReader) prefixes(key string) []netip.Prefix {
	var out []netip.Prefix
	for _, raw := range pstrings.SplitCSV(os.Getenv(key)) {
		if p, err := netip.ParsePrefix(raw); err == nil {
			out = append(out, p.Masked())
			continue
		}
		addr, err := netip.ParseAddr(raw)
		if err != nil {
			e.fail(key, fmt.Errorf("%q is neither a CIDR nor an IP address", raw))
			return nil
		}
		out = append(out, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return out
}

func (e *envReader) fail(key string, err error) {
	if e.err == nil {
		e.err = fmt.Errorf("parse %s: %w", key, err)
	}
}
