package config

import (
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration
type Config struct {
	App      AppConfig
	Server   ServerConfig
	Database DatabaseConfig
	MinIO    MinIOConfig
	Media    MediaConfig
	Log      LogConfig
}

type AppConfig struct {
	Name string
}

type ServerConfig struct {
	Port            string
	Host            string
	Environment     string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// DatabaseConfig describes the document store target. URL is the single
// connection string; its scheme selects the backend.
type DatabaseConfig struct {
	URL             string
	Name            string
	Timeout         time.Duration
	ConnectAttempts int
}

// MinIOConfig holds MinIO connection configuration
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Bucket    string
}

type MediaConfig struct {
	MaxUploadBytes int64
	PresignExpiry  time.Duration
}

type LogConfig struct {
	Level string
}

// Production reports whether the server runs with the production profile.
func (c ServerConfig) Production() bool {
	return c.Environment == "production"
}

// LoadConfig loads configuration from environment variables and .env file.
// Missing optional settings never make it fail; an absent DATABASE_URL only
// leaves the store disconnected.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load(".env")

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("APP_NAME", "Portfolio API")
	v.SetDefault("PORT", "8000")
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_ENVIRONMENT", "development")
	v.SetDefault("SERVER_READ_TIMEOUT", 30)
	v.SetDefault("SERVER_WRITE_TIMEOUT", 30)
	v.SetDefault("SERVER_SHUTDOWN_TIMEOUT", 10)
	v.SetDefault("DATABASE_NAME", "portfolio")
	v.SetDefault("DATABASE_TIMEOUT", 10)
	v.SetDefault("DATABASE_CONNECT_ATTEMPTS", 1)
	v.SetDefault("MINIO_BUCKET", "portfolio-media")
	v.SetDefault("MEDIA_MAX_UPLOAD_MB", 10)
	v.SetDefault("MEDIA_PRESIGN_MINUTES", 60)
	v.SetDefault("LOG_LEVEL", "info")

	attempts := v.GetInt("DATABASE_CONNECT_ATTEMPTS")
	if attempts < 1 {
		attempts = 1
	}

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("APP_NAME"),
		},
		Server: ServerConfig{
			Port:            v.GetString("PORT"),
			Host:            v.GetString("SERVER_HOST"),
			Environment:     v.GetString("SERVER_ENVIRONMENT"),
			ReadTimeout:     time.Duration(v.GetInt("SERVER_READ_TIMEOUT")) * time.Second,
			WriteTimeout:    time.Duration(v.GetInt("SERVER_WRITE_TIMEOUT")) * time.Second,
			ShutdownTimeout: time.Duration(v.GetInt("SERVER_SHUTDOWN_TIMEOUT")) * time.Second,
		},
		Database: DatabaseConfig{
			URL:             v.GetString("DATABASE_URL"),
			Name:            v.GetString("DATABASE_NAME"),
			Timeout:         time.Duration(v.GetInt("DATABASE_TIMEOUT")) * time.Second,
			ConnectAttempts: attempts,
		},
		MinIO: MinIOConfig{
			Endpoint:  v.GetString("MINIO_ENDPOINT"),
			AccessKey: v.GetString("MINIO_ACCESS_KEY"),
			SecretKey: v.GetString("MINIO_SECRET_KEY"),
			UseSSL:    v.GetBool("MINIO_USE_SSL"),
			Bucket:    v.GetString("MINIO_BUCKET"),
		},
		Media: MediaConfig{
			MaxUploadBytes: v.GetInt64("MEDIA_MAX_UPLOAD_MB") << 20,
			PresignExpiry:  time.Duration(v.GetInt("MEDIA_PRESIGN_MINUTES")) * time.Minute,
		},
		Log: LogConfig{
			Level: v.GetString("LOG_LEVEL"),
		},
	}

	return cfg, nil
}
