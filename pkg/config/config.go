package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database     DatabaseConfig
	Redis        RedisConfig
	JWT          JWTConfig
	CORS         CORSConfig
	Log          LogConfig
	Verification VerificationConfig
	Roles        RolesConfig
	Mentorship   MentorshipConfig
	Events       EventsConfig
}

type DatabaseConfig struct {
	Host           string
	Port           int
	User           string
	Password       string
	Name           string
	SSLMode        string
	MaxOpenConns   int
	MaxIdleConns   int
	AutoMigrate    bool
	TxRetries      int
	TxRetryBackoff time.Duration
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

// JWTConfig holds the verification key for bearer tokens issued by the identity provider.
type JWTConfig struct {
	Secret string
	Issuer string
}

type CORSConfig struct {
	AllowedOrigins []string
	MaxAge         time.Duration
}

type LogConfig struct {
	Level  string
	Format string
}

// VerificationConfig tunes alumni verification scoring.
type VerificationConfig struct {
	AutoApprovalThreshold int
	OrganizationCode      string
	DepartmentCode        string
	InstitutionNames      []string
	MinGraduationYear     int
	RecentYearsWindow     int
}

// RolesConfig names the capability tags granted by the registration workflow.
type RolesConfig struct {
	Admin          string
	Alumni         string
	ApprovedAlumni string
	Student        string
}

// MentorshipConfig controls mentor defaults and directory caching.
type MentorshipConfig struct {
	DefaultCapacity int
	CacheTTL        time.Duration
}

// EventsConfig configures the domain event publisher.
type EventsConfig struct {
	Enabled      bool
	Brokers      []string
	Topic        string
	Username     string
	Password     string
	TLS          bool
	Workers      int
	MaxRetries   int
	RetryDelay   time.Duration
	WriteTimeout time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	return fromViper(v), nil
}

func fromViper(v *viper.Viper) *Config {
	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:           v.GetString("DB_HOST"),
		Port:           v.GetInt("DB_PORT"),
		User:           v.GetString("DB_USER"),
		Password:       v.GetString("DB_PASSWORD"),
		Name:           v.GetString("DB_NAME"),
		SSLMode:        v.GetString("DB_SSL_MODE"),
		MaxOpenConns:   v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns:   v.GetInt("DB_MAX_IDLE_CONNS"),
		AutoMigrate:    v.GetBool("DB_AUTO_MIGRATE"),
		TxRetries:      v.GetInt("DB_TX_RETRIES"),
		TxRetryBackoff: parseDuration(v.GetString("DB_TX_RETRY_BACKOFF"), 25*time.Millisecond),
	}

	cfg.Redis = RedisConfig{
		Enabled:  v.GetBool("REDIS_ENABLED"),
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Secret: v.GetString("JWT_SECRET"),
		Issuer: v.GetString("JWT_ISSUER"),
	}

	cfg.CORS = CORSConfig{
		AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS")),
		MaxAge:         parseDuration(v.GetString("CORS_MAX_AGE"), 10*time.Minute),
	}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	threshold := v.GetInt("VERIFICATION_AUTO_APPROVAL_THRESHOLD")
	if threshold <= 0 {
		threshold = 5
	}
	cfg.Verification = VerificationConfig{
		AutoApprovalThreshold: threshold,
		OrganizationCode:      strings.ToUpper(v.GetString("VERIFICATION_ORG_CODE")),
		DepartmentCode:        strings.ToUpper(v.GetString("VERIFICATION_DEPT_CODE")),
		InstitutionNames:      splitAndTrim(strings.ToLower(v.GetString("VERIFICATION_INSTITUTION_NAMES"))),
		MinGraduationYear:     v.GetInt("VERIFICATION_MIN_GRADUATION_YEAR"),
		RecentYearsWindow:     v.GetInt("VERIFICATION_RECENT_YEARS"),
	}

	cfg.Roles = RolesConfig{
		Admin:          v.GetString("ROLE_ADMIN_NAME"),
		Alumni:         v.GetString("ROLE_ALUMNI_NAME"),
		ApprovedAlumni: v.GetString("ROLE_APPROVED_ALUMNI_NAME"),
		Student:        v.GetString("ROLE_STUDENT_NAME"),
	}
	if cfg.Roles.ApprovedAlumni == "" {
		cfg.Roles.ApprovedAlumni = cfg.Roles.Alumni
	}

	cfg.Mentorship = MentorshipConfig{
		DefaultCapacity: v.GetInt("MENTOR_DEFAULT_CAPACITY"),
		CacheTTL:        parseDuration(v.GetString("MENTORS_CACHE_TTL"), 5*time.Minute),
	}

	cfg.Events = EventsConfig{
		Enabled:      v.GetBool("EVENTS_ENABLED"),
		Brokers:      splitAndTrim(v.GetString("KAFKA_BROKERS")),
		Topic:        v.GetString("KAFKA_TOPIC"),
		Username:     v.GetString("KAFKA_USERNAME"),
		Password:     v.GetString("KAFKA_PASSWORD"),
		TLS:          v.GetBool("KAFKA_TLS"),
		Workers:      v.GetInt("EVENTS_WORKERS"),
		MaxRetries:   v.GetInt("EVENTS_MAX_RETRIES"),
		RetryDelay:   parseDuration(v.GetString("EVENTS_RETRY_DELAY"), time.Second),
		WriteTimeout: parseDuration(v.GetString("KAFKA_WRITE_TIMEOUT"), 10*time.Second),
	}

	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "alumni_portal")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_AUTO_MIGRATE", true)
	v.SetDefault("DB_TX_RETRIES", 3)
	v.SetDefault("DB_TX_RETRY_BACKOFF", "25ms")

	v.SetDefault("REDIS_ENABLED", false)
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_ISSUER", "")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("CORS_MAX_AGE", "10m")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("VERIFICATION_AUTO_APPROVAL_THRESHOLD", 5)
	v.SetDefault("VERIFICATION_ORG_CODE", "VIPS")
	v.SetDefault("VERIFICATION_DEPT_CODE", "TC")
	v.SetDefault("VERIFICATION_INSTITUTION_NAMES", "vips,vivekananda")
	v.SetDefault("VERIFICATION_MIN_GRADUATION_YEAR", 2000)
	v.SetDefault("VERIFICATION_RECENT_YEARS", 5)

	v.SetDefault("ROLE_ADMIN_NAME", "Admin")
	v.SetDefault("ROLE_ALUMNI_NAME", "Alumni")
	v.SetDefault("ROLE_APPROVED_ALUMNI_NAME", "")
	v.SetDefault("ROLE_STUDENT_NAME", "Student")

	v.SetDefault("MENTOR_DEFAULT_CAPACITY", 3)
	v.SetDefault("MENTORS_CACHE_TTL", "5m")

	v.SetDefault("EVENTS_ENABLED", false)
	v.SetDefault("KAFKA_BROKERS", "localhost:9092")
	v.SetDefault("KAFKA_TOPIC", "alumni.lifecycle")
	v.SetDefault("KAFKA_USERNAME", "")
	v.SetDefault("KAFKA_PASSWORD", "")
	v.SetDefault("KAFKA_TLS", false)
	v.SetDefault("KAFKA_WRITE_TIMEOUT", "10s")
	v.SetDefault("EVENTS_WORKERS", 2)
	v.SetDefault("EVENTS_MAX_RETRIES", 3)
	v.SetDefault("EVENTS_RETRY_DELAY", "1s")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
