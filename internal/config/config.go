package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr     string
	GRPCAddr     string
	StoreDriver  string
	MySQLDSN     string
	PostgresDSN  string
	RedisAddr    string
	KafkaBrokers []string
	KafkaTopic   string
	LogLevel     string
	WorkerCount  int
	QueueSize    int
	TraceStdout  bool
}

// LoadEnv reads a .env file into the environment if one exists. It reports
// whether a file was loaded.
func LoadEnv(filenames ...string) bool {
	return godotenv.Load(filenames...) == nil
}

// Load builds the configuration from environment variables.
func Load() Config {
	return Config{
		HTTPAddr:     GetEnv("HTTP_ADDR", ":8080"),
		GRPCAddr:     GetEnv("GRPC_ADDR", ":50051"),
		StoreDriver:  strings.ToLower(GetEnv("STORE_DRIVER", "")),
		MySQLDSN:     GetEnv("MYSQL_DSN", "root:root@tcp(localhost:3306)/orderledger?parseTime=true"),
		PostgresDSN:  GetEnv("DATABASE_URL", "postgres://localhost:5432/orderledger?sslmode=disable"),
		RedisAddr:    GetEnv("REDIS_ADDR", ""),
		KafkaBrokers: splitList(GetEnv("KAFKA_BROKERS", "")),
		KafkaTopic:   GetEnv("KAFKA_TOPIC", "order-events"),
		LogLevel:     GetEnv("LOG_LEVEL", "info"),
		WorkerCount:  GetEnvInt("WORKER_COUNT", 4),
		QueueSize:    GetEnvInt("QUEUE_SIZE", 1024),
		TraceStdout:  GetEnvBool("TRACE_STDOUT", false),
	}
}

func GetEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func GetEnvInt(key string, fallback int) int {
	n, err := strconv.Atoi(GetEnv(key, ""))
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func GetEnvBool(key string, fallback bool) bool {
	b, err := strconv.ParseBool(GetEnv(key, ""))
	if err != nil {
		return fallback
	}
	return b
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
