package config

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/glossa-labs/glossa-backend/internal/validation"
)

// Deployment описывает один деплоймент пары контрактов (контракт задач +
// арбитражный контракт) для одного платёжного актива.
type Deployment struct {
	// Key — имя актива, оно же ключ контракта в составных идентификаторах.
	Key string `json:"key"`
	// Native помечает деплоймент нативного актива — дефолт маршрутизации.
	Native             bool   `json:"native"`
	TaskContract       string `json:"taskContract"`
	ArbitratorContract string `json:"arbitratorContract"`
}

// Config хранит все параметры запуска приложения.
type Config struct {
	Env      string
	HTTPPort string

	ChainGatewayURL    string
	EvidenceAPIURL     string
	EvidenceGatewayURL string
	Deployments        []Deployment
	DepositHorizon     time.Duration

	DatabaseURL    string
	MigrationsPath string

	AllowedOrigins  []string
	RateLimitLimit  int64
	RateLimitPeriod time.Duration
}

// Load читает переменные окружения и возвращает готовую конфигурацию.
func Load() (*Config, error) {
	// Загружаем .env только если он существует, иначе используем системные переменные.
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("config: .env не найден, используем переменные окружения: %v", err)
	}

	cfg := &Config{
		Env:                getEnv("APP_ENV", "development"),
		HTTPPort:           getEnv("HTTP_PORT", "8080"),
		ChainGatewayURL:    getEnv("CHAIN_GATEWAY_URL", ""),
		EvidenceAPIURL:     getEnv("EVIDENCE_API_URL", ""),
		EvidenceGatewayURL: getEnv("EVIDENCE_GATEWAY_URL", ""),
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		MigrationsPath:     getEnv("MIGRATIONS_PATH", "./migrations"),
	}

	if cfg.ChainGatewayURL == "" {
		return nil, fmt.Errorf("config: CHAIN_GATEWAY_URL обязателен")
	}
	if cfg.EvidenceAPIURL == "" || cfg.EvidenceGatewayURL == "" {
		return nil, fmt.Errorf("config: EVIDENCE_API_URL и EVIDENCE_GATEWAY_URL обязательны")
	}

	deployments, err := parseDeployments(getEnv("DEPLOYMENTS", ""))
	if err != nil {
		return nil, err
	}
	cfg.Deployments = deployments

	cfg.DepositHorizon = mustParseDuration(getEnv("DEPOSIT_HORIZON", "1h"))

	// CORS allowed origins
	originsStr := getEnv("CORS_ALLOWED_ORIGINS", "")
	if originsStr == "" {
		if cfg.Env == "production" {
			return nil, fmt.Errorf("config: CORS_ALLOWED_ORIGINS обязателен в production")
		}
		cfg.AllowedOrigins = []string{"http://localhost:3000", "http://localhost:3001"}
	} else {
		cfg.AllowedOrigins = strings.Split(originsStr, ",")
		for i, origin := range cfg.AllowedOrigins {
			cfg.AllowedOrigins[i] = strings.TrimSpace(origin)
		}
	}

	cfg.RateLimitLimit = mustParseInt64(getEnv("RATE_LIMIT_LIMIT", "60"))
	cfg.RateLimitPeriod = mustParseDuration(getEnv("RATE_LIMIT_PERIOD", "1m"))

	return cfg, nil
}

// parseDeployments разбирает и валидирует JSON со списком деплойментов.
// Ровно один деплоймент должен быть нативным, ключи уникальны, адреса
// приводятся к EIP-55 записи.
func parseDeployments(raw string) ([]Deployment, error) {
	if raw == "" {
		return nil, fmt.Errorf("config: DEPLOYMENTS обязателен (JSON со списком деплойментов)")
	}

	var deployments []Deployment
	if err := json.Unmarshal([]byte(raw), &deployments); err != nil {
		return nil, fmt.Errorf("config: некорректный DEPLOYMENTS: %w", err)
	}
	if len(deployments) == 0 {
		return nil, fmt.Errorf("config: DEPLOYMENTS пуст")
	}

	seen := make(map[string]bool, len(deployments))
	nativeCount := 0
	for i := range deployments {
		d := &deployments[i]
		if d.Key == "" || strings.Contains(d.Key, "/") {
			return nil, fmt.Errorf("config: некорректный ключ деплоймента %q", d.Key)
		}
		if seen[d.Key] {
			return nil, fmt.Errorf("config: дублирующийся ключ деплоймента %q", d.Key)
		}
		seen[d.Key] = true
		if d.Native {
			nativeCount++
		}

		task, err := validation.NormalizeAddress(d.TaskContract)
		if err != nil {
			return nil, fmt.Errorf("config: адрес контракта задач %q: %w", d.TaskContract, err)
		}
		arbitrator, err := validation.NormalizeAddress(d.ArbitratorContract)
		if err != nil {
			return nil, fmt.Errorf("config: адрес арбитражного контракта %q: %w", d.ArbitratorContract, err)
		}
		d.TaskContract = task
		d.ArbitratorContract = arbitrator
	}

	if nativeCount != 1 {
		return nil, fmt.Errorf("config: ровно один деплоймент должен быть нативным, найдено %d", nativeCount)
	}
	return deployments, nil
}

// getEnv возвращает значение переменной окружения или дефолт.
func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func mustParseDuration(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		log.Printf("config: некорректная длительность %q, используем 1h", s)
		return time.Hour
	}
	return d
}

func mustParseInt64(s string) int64 {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		log.Printf("config: некорректное число %q, используем 0", s)
		return 0
	}
	return n
}
