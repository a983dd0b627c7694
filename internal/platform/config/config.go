package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Server captures process-level configuration.
type Server struct {
	Addr        string
	DatabaseURL string
	Redis       RedisConfig
	Kafka       KafkaConfig
	// LockWait bounds how long an operation waits for its owner lock before
	// failing with a contention error.
	LockWait time.Duration
}

// RedisConfig captures Redis connection settings. An empty URL means Redis is
// not configured and the in-process owner locker is used instead.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig captures audit event publishing settings. Empty seeds disable
// the Kafka publisher.
type KafkaConfig struct {
	Seeds      []string
	AuditTopic string
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	addr := os.Getenv("TAGDEX_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	lockWait := 5 * time.Second
	if raw := os.Getenv("TAGDEX_LOCK_WAIT_MS"); raw != "" {
		if ms, err := strconv.Atoi(raw); err == nil && ms > 0 {
			lockWait = time.Duration(ms) * time.Millisecond
		}
	}

	var seeds []string
	if raw := os.Getenv("TAGDEX_KAFKA_SEEDS"); raw != "" {
		seeds = splitComma(raw)
	}
	topic := os.Getenv("TAGDEX_AUDIT_TOPIC")
	if topic == "" {
		topic = "tagdex.audit"
	}

	return Server{
		Addr:        addr,
		DatabaseURL: os.Getenv("TAGDEX_DATABASE_URL"),
		Redis: RedisConfig{
			URL:          os.Getenv("TAGDEX_REDIS_URL"),
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		Kafka: KafkaConfig{
			Seeds:      seeds,
			AuditTopic: topic,
		},
		LockWait: lockWait,
	}
}

func splitComma(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
