package database

import (
	"context"
	"log"

	config "github.com/bkoskei/classroom_exams/configs"
	"github.com/redis/go-redis/v9"
)

// RDB caches the student-facing exam paper. A nil client means redis is not
// configured and callers fall back to the database.
var RDB *redis.Client

func ConnectRedis() {
	redisURL := config.Config("REDIS_URL")
	if redisURL == "" {
		log.Println("⚠️ REDIS_URL not set, exam paper caching disabled")
		return
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		log.Printf("⚠️ Invalid REDIS_URL, exam paper caching disabled: %v", err)
		return
	}

	client := redis.NewClient(opts)
	if err := client.Ping(context.Background()).Err(); err != nil {
		log.Printf("⚠️ Redis unreachable, exam paper caching disabled: %v", err)
		return
	}

	RDB = client
	log.Println("✅ Redis connected successfully")
}
