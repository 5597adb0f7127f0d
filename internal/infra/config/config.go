package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type AppConfig struct {
	App       AppSettings       `mapstructure:"app"`
	Postgres  PostgresSettings  `mapstructure:"postgres"`
	Redis     RedisSettings     `mapstructure:"redis"`
	Kafka     KafkaSettings     `mapstructure:"kafka"`
	Auth      AuthSettings      `mapstructure:"auth"`
	Session   SessionSettings   `mapstructure:"session"`
	Monitor   MonitorSettings   `mapstructure:"monitor"`
	Risk      RiskSettings      `mapstructure:"risk"`
	RateLimit RateLimitSettings `mapstructure:"rate_limit"`
	Telemetry TelemetrySettings `mapstructure:"telemetry"`
}

type AppSettings struct {
	Name string `mapstructure:"name"`
	Env  string `mapstructure:"env"`
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

type PostgresSettings struct {
	// DSN enables the durable audit trail when non-empty.
	DSN               string        `mapstructure:"dsn"`
	MaxConns          int32         `mapstructure:"max_conns"`
	MinConns          int32         `mapstructure:"min_conns"`
	MaxConnLifetime   time.Duration `mapstructure:"max_conn_lifetime"`
	HealthCheckPeriod time.Duration `mapstructure:"health_check_period"`
}

// RedisSettings configures the Redis connection used for rate limiting.
type RedisSettings struct {
	Host       string `mapstructure:"host"`
	Port       int    `mapstructure:"port"`
	DB         int    `mapstructure:"db"`
	Password   string `mapstructure:"password"`
	TLSEnabled bool   `mapstructure:"tls_enabled"`
}

// KafkaSettings configures the audit event publisher. Empty brokers fall
// back to the logging stub publisher.
type KafkaSettings struct {
	Brokers     []string `mapstructure:"brokers"`
	TopicPrefix string   `mapstructure:"topic_prefix"`
	Async       bool     `mapstructure:"async"`
}

// AuthSettings configures credential verification and the master path.
type AuthSettings struct {
	// Timeout bounds calls to the external authenticator and second-factor
	// verification. Timeouts surface as an AuthTimeout error, never as
	// invalid credentials.
	Timeout time.Duration `mapstructure:"timeout"`
	// MasterKeyDigest is the hex SHA-256 digest of the provisioned master
	// secret. Grants at the master level require it.
	MasterKeyDigest string        `mapstructure:"master_key_digest"`
	TokenSecret     string        `mapstructure:"token_secret"`
	TokenTTL        time.Duration `mapstructure:"token_ttl"`
}

type SessionSettings struct {
	TTL           time.Duration `mapstructure:"ttl"`
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
}

// MonitorSettings drives metric collection and alert-rule evaluation.
type MonitorSettings struct {
	CollectInterval  time.Duration `mapstructure:"collect_interval"`
	EvaluateInterval time.Duration `mapstructure:"evaluate_interval"`
	RetentionWindow  time.Duration `mapstructure:"retention_window"`
}

// RiskSettings drives the suspicious-activity scan.
type RiskSettings struct {
	ScanInterval        time.Duration `mapstructure:"scan_interval"`
	ActivityWindow      time.Duration `mapstructure:"activity_window"`
	EscalationThreshold float64       `mapstructure:"escalation_threshold"`
	Weights             RiskWeights   `mapstructure:"weights"`
}

// RiskWeights are the policy-configurable factor weights. They are summed
// and clamped to [0,1].
type RiskWeights struct {
	AuthFailure       float64 `mapstructure:"auth_failure"`
	LevelEscalation   float64 `mapstructure:"level_escalation"`
	RestrictedAttempt float64 `mapstructure:"restricted_attempt"`
	LocationAnomaly   float64 `mapstructure:"location_anomaly"`
	DeviceAnomaly     float64 `mapstructure:"device_anomaly"`
	RequestVelocity   float64 `mapstructure:"request_velocity"`
}

// RateLimitSettings configures the sliding-window grant limiter.
type RateLimitSettings struct {
	WindowDuration   time.Duration `mapstructure:"window_duration"`
	GrantMaxAttempts int           `mapstructure:"grant_max_attempts"`
}

type TelemetrySettings struct {
	Namespace string `mapstructure:"namespace"`
}

func Load() (*AppConfig, error) {
	v := viper.New()

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetEnvPrefix("AEGIS")

	setDefaults(v)

	if err := bindEnvs(v, []string{
		"app.name",
		"app.env",
		"app.host",
		"app.port",
		"postgres.dsn",
		"postgres.max_conns",
		"postgres.min_conns",
		"postgres.max_conn_lifetime",
		"postgres.health_check_period",
		"redis.host",
		"redis.port",
		"redis.db",
		"redis.password",
		"redis.tls_enabled",
		"kafka.brokers",
		"kafka.topic_prefix",
		"kafka.async",
		"auth.timeout",
		"auth.master_key_digest",
		"auth.token_secret",
		"auth.token_ttl",
		"session.ttl",
		"session.sweep_interval",
		"monitor.collect_interval",
		"monitor.evaluate_interval",
		"monitor.retention_window",
		"risk.scan_interval",
		"risk.activity_window",
		"risk.escalation_threshold",
		"risk.weights.auth_failure",
		"risk.weights.level_escalation",
		"risk.weights.restricted_attempt",
		"risk.weights.location_anomaly",
		"risk.weights.device_anomaly",
		"risk.weights.request_velocity",
		"rate_limit.window_duration",
		"rate_limit.grant_max_attempts",
		"telemetry.namespace",
	}); err != nil {
		return nil, err
	}

	v.AutomaticEnv()

	var cfg AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "aegis-core")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.host", "0.0.0.0")
	v.SetDefault("app.port", 8080)

	v.SetDefault("postgres.dsn", "")
	v.SetDefault("postgres.max_conns", 10)
	v.SetDefault("postgres.min_conns", 2)
	v.SetDefault("postgres.max_conn_lifetime", "60m")
	v.SetDefault("postgres.health_check_period", "30s")

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.tls_enabled", false)

	v.SetDefault("kafka.brokers", []string{})
	v.SetDefault("kafka.topic_prefix", "aegis")
	v.SetDefault("kafka.async", true)

	v.SetDefault("auth.timeout", "5s")
	v.SetDefault("auth.master_key_digest", "")
	v.SetDefault("auth.token_secret", "")
	v.SetDefault("auth.token_ttl", "15m")

	v.SetDefault("session.ttl", "24h")
	v.SetDefault("session.sweep_interval", "60s")

	v.SetDefault("monitor.collect_interval", "60s")
	v.SetDefault("monitor.evaluate_interval", "30s")
	v.SetDefault("monitor.retention_window", "24h")

	v.SetDefault("risk.scan_interval", "1s")
	v.SetDefault("risk.activity_window", "15m")
	v.SetDefault("risk.escalation_threshold", 0.8)
	v.SetDefault("risk.weights.auth_failure", 0.15)
	v.SetDefault("risk.weights.level_escalation", 0.25)
	v.SetDefault("risk.weights.restricted_attempt", 0.2)
	v.SetDefault("risk.weights.location_anomaly", 0.2)
	v.SetDefault("risk.weights.device_anomaly", 0.15)
	v.SetDefault("risk.weights.request_velocity", 0.1)

	v.SetDefault("rate_limit.window_duration", "1m")
	v.SetDefault("rate_limit.grant_max_attempts", 5)

	v.SetDefault("telemetry.namespace", "aegis")
}

func bindEnvs(v *viper.Viper, keys []string) error {
	for _, key := range keys {
		envKey := strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, "AEGIS_"+envKey, envKey); err != nil {
			return fmt.Errorf("bind env for %s: %w", key, err)
		}
	}
	return nil
}
