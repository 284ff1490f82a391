package config

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Config struct {
	Port        string
	DBName      string
	JWTSecret   string
	MongoClient *mongo.Client
}

// Load reads the .env file (if present), connects to MongoDB and returns the
// application config.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment")
	}

	uri := getEnv("MONGO_URI", "mongodb://localhost:27017")
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	cfg := &Config{
		Port:        getEnv("PORT", "3000"),
		DBName:      getEnv("DB_NAME", "fundraiser"),
		JWTSecret:   secret,
		MongoClient: client,
	}

	if err := cfg.EnsureIndexes(ctx); err != nil {
		return nil, fmt.Errorf("ensure indexes: %w", err)
	}

	return cfg, nil
}

// EnsureIndexes creates the unique indexes the registration path relies on.
// Duplicate username/email writes fail at the storage boundary even if the
// pre-insert check races.
func (cfg *Config) EnsureIndexes(ctx context.Context) error {
	users := cfg.MongoClient.Database(cfg.DBName).Collection("users")
	_, err := users.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "username", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	})
	if err != nil {
		return err
	}

	categories := cfg.MongoClient.Database(cfg.DBName).Collection("categories")
	_, err = categories.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "slug", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}
