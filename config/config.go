package config

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

type Config struct {
	Port      string
	DBName    string
	JWTSecret string

	// Simulated gateway delay; kept configurable so tests and local runs
	// don't wait the full production-like pause.
	PaymentDelay time.Duration

	MongoClient *mongo.Client
	Redis       *redis.Client
	Logger      *zap.Logger
}

// Load reads the environment (optionally from .env), connects Mongo and
// Redis, and builds the shared logger.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:         getEnv("PORT", "8080"),
		DBName:       getEnv("DB_NAME", "crowdfund"),
		JWTSecret:    os.Getenv("JWT_SECRET"),
		PaymentDelay: 2 * time.Second,
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET not set")
	}
	if d := os.Getenv("PAYMENT_DELAY"); d != "" {
		parsed, err := time.ParseDuration(d)
		if err != nil {
			return nil, fmt.Errorf("invalid PAYMENT_DELAY: %v", err)
		}
		cfg.PaymentDelay = parsed
	}

	logger, err := zap.NewProduction()
	if err != nil {
		return nil, err
	}
	cfg.Logger = logger

	client, err := connectMongo(cfg.DBName)
	if err != nil {
		return nil, err
	}
	cfg.MongoClient = client

	cfg.Redis = redis.NewClient(&redis.Options{
		Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       0,
	})

	return cfg, nil
}

func connectMongo(dbName string) (*mongo.Client, error) {
	uri := os.Getenv("MONGO_URI")
	if uri == "" {
		return nil, fmt.Errorf("MONGO_URI not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, err
	}

	if err := ensureIndexes(ctx, client.Database(dbName)); err != nil {
		return nil, err
	}

	return client, nil
}

func ensureIndexes(ctx context.Context, db *mongo.Database) error {
	// users.email must be unique
	_, err := db.Collection("users").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.M{"email": 1},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return err
	}

	// donations.receipt is a small random code; uniqueness is enforced here
	// and the insert path regenerates on a duplicate key
	_, err = db.Collection("donations").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.M{"receipt": 1},
		Options: options.Index().SetUnique(true).SetSparse(true),
	})
	if err != nil {
		return err
	}

	// campaigns are mostly listed by status
	_, err = db.Collection("campaigns").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.M{"status": 1},
	})
	return err
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
