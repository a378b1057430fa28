package database

import (
	"context"
	"log"
	"time"

	"clipbook/config"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoClient is the global MongoDB client instance. It stays nil when no
// MONGO_URI is configured; the record log then degrades to a no-op.
var MongoClient *mongo.Client

// InitDB initializes the MongoDB connection.
func InitDB() {
	if config.AppConfig.MongoURI == "" {
		log.Println("No MONGO_URI configured, booking record log disabled")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	clientOptions := options.Client().ApplyURI(config.AppConfig.MongoURI)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		log.Printf("failed to connect to MongoDB, booking record log disabled: %v", err)
		return
	}
	if err := client.Ping(ctx, nil); err != nil {
		log.Printf("failed to ping MongoDB, booking record log disabled: %v", err)
		return
	}
	MongoClient = client
	log.Println("Connected to MongoDB successfully!")
}
