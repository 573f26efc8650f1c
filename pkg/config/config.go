package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Backends de armazenamento suportados
const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

// Config contém as configurações da aplicação
type Config struct {
	HTTPPort        string
	BasePath        string
	GinMode         string
	LogLevel        string
	StorageBackend  string
	DatabaseURL     string
	RedisAddr       string
	RedisPassword   string
	RedisDB         int
	RedisPrefix     string
	EventsRelay     string
	JWTSecretKey    string
	JWTExpiration   time.Duration
	CORSOrigins     []string
	ShutdownTimeout time.Duration
	Timezone        string
}

// Load carrega o arquivo .env (se existir) e monta a configuração a partir do ambiente
func Load(files ...string) (*Config, error) {
	if err := godotenv.Load(files...); err != nil && len(files) > 0 {
		return nil, fmt.Errorf("erro ao carregar arquivo de ambiente: %w", err)
	}
	return FromEnv()
}

// FromEnv monta a configuração somente a partir de variáveis de ambiente
func FromEnv() (*Config, error) {
	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("REDIS_DB inválido: %w", err)
	}

	expirationHours, err := strconv.Atoi(getEnv("JWT_EXPIRATION_HOURS", "24"))
	if err != nil {
		return nil, fmt.Errorf("JWT_EXPIRATION_HOURS inválido: %w", err)
	}

	shutdownTimeout, err := time.ParseDuration(getEnv("SHUTDOWN_TIMEOUT", "15s"))
	if err != nil {
		return nil, fmt.Errorf("SHUTDOWN_TIMEOUT inválido: %w", err)
	}

	cfg := &Config{
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		BasePath:        getEnv("API_BASE_PATH", "/api/v1"),
		GinMode:         getEnv("GIN_MODE", "debug"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		StorageBackend:  strings.ToLower(getEnv("STORAGE_BACKEND", BackendMemory)),
		DatabaseURL:     DatabaseURL(),
		RedisAddr:       getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		RedisDB:         redisDB,
		RedisPrefix:     getEnv("REDIS_PREFIX", "warung:"),
		EventsRelay:     strings.ToLower(getEnv("EVENTS_RELAY", "none")),
		JWTSecretKey:    getEnv("JWT_SECRET_KEY", ""),
		JWTExpiration:   time.Duration(expirationHours) * time.Hour,
		CORSOrigins:     splitList(getEnv("CORS_ORIGINS", "*")),
		ShutdownTimeout: shutdownTimeout,
		Timezone:        getEnv("APP_TIMEZONE", ""),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate verifica combinações inválidas de configuração
func (c *Config) Validate() error {
	switch c.StorageBackend {
	case BackendMemory, BackendPostgres, BackendRedis:
	default:
		return fmt.Errorf("STORAGE_BACKEND desconhecido: %q", c.StorageBackend)
	}

	switch c.EventsRelay {
	case "none", BackendRedis:
	default:
		return fmt.Errorf("EVENTS_RELAY desconhecido: %q", c.EventsRelay)
	}

	if c.JWTSecretKey == "" {
		return fmt.Errorf("JWT_SECRET_KEY não configurada")
	}

	if c.Timezone != "" {
		if _, err := time.LoadLocation(c.Timezone); err != nil {
			return fmt.Errorf("APP_TIMEZONE inválido: %w", err)
		}
	}
	return nil
}

// Location retorna o fuso usado para agrupar vendas por dia (padrão: fuso local)
func (c *Config) Location() *time.Location {
	if c.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// UsesRedis indica se algum componente precisa de conexão com o Redis
func (c *Config) UsesRedis() bool {
	return c.StorageBackend == BackendRedis || c.EventsRelay == BackendRedis
}

// DatabaseURL usa DATABASE_URL ou monta a URL a partir das variáveis DB_*
func DatabaseURL() string {
	if url := os.Getenv("DATABASE_URL"); url != "" {
		return url
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		getEnv("DB_USER", "postgres"),
		getEnv("DB_PASSWORD", "postgres"),
		getEnv("DB_HOST", "localhost"),
		getEnv("DB_PORT", "5432"),
		getEnv("DB_NAME", "warung_digital"),
		getEnv("DB_SSL_MODE", "disable"),
	)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// getEnv retorna o valor de uma variável de ambiente ou um valor padrão
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
