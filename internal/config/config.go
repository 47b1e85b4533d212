package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Auth      AuthConfig
	Engine    EngineConfig
	Synthesis SynthesisConfig
	Storage   StorageConfig
}

type ServerConfig struct {
	Host string
	Port int
}

type DatabaseConfig struct {
	URL      string
	MaxConns int
	MinConns int
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type AuthConfig struct {
	// JWTSecret enables bearer-token auth on the API when non-empty.
	JWTSecret string
}

type EngineConfig struct {
	BaseURL string        // Kokoro sidecar, default "http://localhost:8880"
	Timeout time.Duration
}

type SynthesisConfig struct {
	ChunkSize       int     // characters per synthesis chunk
	MaxRetries      int     // token-limit re-chunk depth budget
	DefaultVoice    string
	DefaultLanguage string
	DefaultSpeed    float64
}

type StorageConfig struct {
	DataDir    string // uploads and generated artifacts
	FFmpegPath string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	port, err := getEnvInt("SERVER_PORT", 8080)
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT: %w", err)
	}
	maxConns, err := getEnvInt("DB_MAX_CONNS", 10)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MAX_CONNS: %w", err)
	}
	minConns, err := getEnvInt("DB_MIN_CONNS", 2)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MIN_CONNS: %w", err)
	}
	redisDB, err := getEnvInt("REDIS_DB", 0)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}
	engineTimeout, err := getEnvInt("ENGINE_TIMEOUT_SECONDS", 300)
	if err != nil {
		return nil, fmt.Errorf("invalid ENGINE_TIMEOUT_SECONDS: %w", err)
	}
	chunkSize, err := getEnvInt("TTS_CHUNK_SIZE", 1000)
	if err != nil {
		return nil, fmt.Errorf("invalid TTS_CHUNK_SIZE: %w", err)
	}
	maxRetries, err := getEnvInt("TTS_MAX_RETRIES", 3)
	if err != nil {
		return nil, fmt.Errorf("invalid TTS_MAX_RETRIES: %w", err)
	}
	speed, err := getEnvFloat("TTS_DEFAULT_SPEED", 1.0)
	if err != nil {
		return nil, fmt.Errorf("invalid TTS_DEFAULT_SPEED: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: port,
		},
		Database: DatabaseConfig{
			URL:      getEnv("DATABASE_URL", ""),
			MaxConns: maxConns,
			MinConns: minConns,
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("JWT_SECRET", ""),
		},
		Engine: EngineConfig{
			BaseURL: getEnv("ENGINE_BASE_URL", "http://localhost:8880"),
			Timeout: time.Duration(engineTimeout) * time.Second,
		},
		Synthesis: SynthesisConfig{
			ChunkSize:       chunkSize,
			MaxRetries:      maxRetries,
			DefaultVoice:    getEnv("TTS_DEFAULT_VOICE", "af_sarah"),
			DefaultLanguage: getEnv("TTS_DEFAULT_LANGUAGE", "en-us"),
			DefaultSpeed:    speed,
		},
		Storage: StorageConfig{
			DataDir:    getEnv("DATA_DIR", "data"),
			FFmpegPath: getEnv("FFMPEG_PATH", "ffmpeg"),
		},
	}

	if cfg.Synthesis.ChunkSize <= 0 {
		return nil, fmt.Errorf("TTS_CHUNK_SIZE must be positive, got %d", cfg.Synthesis.ChunkSize)
	}

	return cfg, nil
}

func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// Validate checks the variables the worker cannot run without.
func (c *Config) Validate() error {
	var missing []string
	if c.Database.URL == "" {
		missing = append(missing, "DATABASE_URL")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required env vars: %s", strings.Join(missing, ", "))
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	return strconv.Atoi(v)
}

func getEnvFloat(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	return strconv.ParseFloat(v, 64)
}
