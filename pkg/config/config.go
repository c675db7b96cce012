package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

type DBConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	MaxOpenConns int
	MaxIdleConns int
}

type ServerConfig struct {
	Addr string
}

type QueueConfig struct {
	RedisAddr   string
	Concurrency int
}

// PayoutConfig - настройки конвейера выплат.
type PayoutConfig struct {
	// MinAmount - нижняя граница суммы; проходит только сумма строго больше
	MinAmount decimal.Decimal
	// ProcessingDelay - имитация обращения к платёжному рейлу
	ProcessingDelay     time.Duration
	CardNumberLength    int
	AccountNumberLength int
}

func loadDotenv() error {
	err := godotenv.Load(filepath.Join("config.env"))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func LoadConfigDB() (*DBConfig, error) {
	if err := loadDotenv(); err != nil {
		return nil, err
	}

	port, err := strconv.Atoi(os.Getenv("DB_PORT"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	maxOpen, err := strconv.Atoi(os.Getenv("DB_MAX_OPEN_CONNS"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MAX_OPEN_CONNS: %w", err)
	}

	maxIdle, err := strconv.Atoi(os.Getenv("DB_MAX_IDLE_CONNS"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MAX_IDLE_CONNS: %w", err)
	}

	return &DBConfig{
		Host:         os.Getenv("DB_HOST"),
		Port:         port,
		User:         os.Getenv("DB_USER"),
		Password:     os.Getenv("DB_PASSWORD"),
		Name:         os.Getenv("DB_NAME"),
		MaxOpenConns: maxOpen,
		MaxIdleConns: maxIdle,
	}, nil
}

func LoadConfigServer() (*ServerConfig, error) {
	if err := loadDotenv(); err != nil {
		return nil, err
	}

	return &ServerConfig{
		Addr: envString("HTTP_ADDR", ":8080"),
	}, nil
}

func LoadConfigQueue() (*QueueConfig, error) {
	if err := loadDotenv(); err != nil {
		return nil, err
	}

	concurrency, err := envInt("WORKER_CONCURRENCY", 10)
	if err != nil {
		return nil, err
	}

	return &QueueConfig{
		RedisAddr:   envString("REDIS_ADDR", "localhost:6379"),
		Concurrency: concurrency,
	}, nil
}

func LoadConfigPayouts() (*PayoutConfig, error) {
	if err := loadDotenv(); err != nil {
		return nil, err
	}

	minAmount := decimal.Zero
	if raw := os.Getenv("MIN_AMOUNT"); raw != "" {
		parsed, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid MIN_AMOUNT: %w", err)
		}
		minAmount = parsed
	}

	delay := 5 * time.Second
	if raw := os.Getenv("PROCESSING_DELAY"); raw != "" {
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid PROCESSING_DELAY: %w", err)
		}
		delay = parsed
	}

	cardLen, err := envInt("CARD_NUMBER_LENGTH", 16)
	if err != nil {
		return nil, err
	}

	accountLen, err := envInt("ACCOUNT_NUMBER_LENGTH", 20)
	if err != nil {
		return nil, err
	}

	return &PayoutConfig{
		MinAmount:           minAmount,
		ProcessingDelay:     delay,
		CardNumberLength:    cardLen,
		AccountNumberLength: accountLen,
	}, nil
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}
