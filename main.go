package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/spf13/viper"
	"github.com/streadway/amqp"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"produk/internal/handlers"
	"produk/internal/middleware"
	"produk/internal/models"
	"produk/internal/repositories"
	"produk/internal/services"
	"produk/pkg/rabbitmq"
)

func main() {
	// --- Configuration ---
	// Set up Viper to read configuration from environment variables
	viper.SetDefault("APP_PORT", ":8080")
	viper.SetDefault("DB_DRIVER", "memory")
	viper.SetDefault("DATABASE_DSN", "")
	viper.SetDefault("MONGODB_URI", "mongodb://localhost:27017")
	viper.SetDefault("MONGODB_DATABASE", "produk")
	viper.SetDefault("RABBITMQ_URL", "") // empty disables event publishing
	viper.AutomaticEnv()

	appPort := viper.GetString("APP_PORT")
	rabbitMQURL := viper.GetString("RABBITMQ_URL")

	// --- Initialize RabbitMQ Client ---
	// The client is built once per process and injected into the service; a
	// missing URL simply disables product event publishing.
	var mqClient *rabbitmq.Client
	if rabbitMQURL != "" {
		var err error
		mqClient, err = rabbitmq.NewClient(rabbitmq.Config{URL: rabbitMQURL})
		if err != nil {
			log.Fatalf("Failed to initialize RabbitMQ client: %v", err)
		}
		defer mqClient.Close() // Ensure the connection is closed on exit
	} else {
		log.Println("RABBITMQ_URL not set, product events disabled")
	}

	// --- Start RabbitMQ Consumer in a Goroutine ---
	// This consumer listens for product lifecycle events. Downstream work
	// (cache invalidation, search reindexing) hangs off this handler.
	if mqClient != nil {
		go func() {
			log.Println("Starting RabbitMQ consumer for product events...")
			messageHandler := func(msg amqp.Delivery) error {
				log.Printf("Received Product Event (Key: %s, Tag: %d): %s", msg.RoutingKey, msg.DeliveryTag, string(msg.Body))
				return nil // Return nil to acknowledge
			}
			if consumerErr := mqClient.ConsumeProductEvents(messageHandler); consumerErr != nil {
				log.Printf("Failed to start RabbitMQ consumer: %v", consumerErr)
			}
		}()
	}

	// --- Initialize Repository ---
	// The store client is a process-wide singleton shared by every request.
	productRepo, cleanup, err := newProductRepository(viper.GetString("DB_DRIVER"))
	if err != nil {
		log.Fatalf("Failed to initialize product repository: %v", err)
	}
	defer cleanup()

	// --- Initialize Services ---
	productService := services.NewProductService(productRepo, eventPublisher(mqClient))

	// --- Initialize Handlers ---
	productHandler := handlers.NewProductHandler(productService)

	// --- Initialize Fiber App ---
	app := fiber.New()

	// --- Middleware ---
	app.Use(logger.New()) // Request logger

	// --- Health Check Endpoint ---
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// --- API Routes ---
	// The gateway has already authenticated the caller; the identity
	// middleware only decodes the forwarded token for request attribution.
	apiV1 := app.Group("/api/v1", middleware.GatewayIdentity())
	productHandler.RegisterRoutes(apiV1)

	// --- Start HTTP Server ---
	log.Printf("Starting server on port %s", appPort)

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := app.Listen(appPort); err != nil {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	<-quit
	log.Println("Shutting down server...")

	if err := app.Shutdown(); err != nil {
		log.Printf("Error during Fiber shutdown: %v", err)
	}

	log.Println("Server gracefully stopped")
}

// eventPublisher converts a possibly-nil concrete client into the service's
// publisher dependency. A plain nil *rabbitmq.Client must not leak into the
// interface value, or the service's nil check would pass and publishing would
// panic.
func eventPublisher(mqClient *rabbitmq.Client) services.EventPublisher {
	if mqClient == nil {
		return nil
	}
	return mqClient
}

// newProductRepository builds the configured store backend and returns it
// along with a cleanup function for process shutdown.
func newProductRepository(driver string) (repositories.ProductRepository, func(), error) {
	noop := func() {}

	switch driver {
	case "memory":
		return repositories.NewMemoryProductRepository(), noop, nil

	case "sqlite":
		dsn := viper.GetString("DATABASE_DSN")
		if dsn == "" {
			dsn = "file::memory:?cache=shared"
		}
		db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
		if err != nil {
			return nil, noop, fmt.Errorf("failed to open sqlite database: %w", err)
		}
		if err := db.AutoMigrate(&models.Product{}); err != nil {
			return nil, noop, fmt.Errorf("failed to migrate products table: %w", err)
		}
		return repositories.NewGORMProductRepository(db), noop, nil

	case "postgres":
		db, err := gorm.Open(postgres.Open(viper.GetString("DATABASE_DSN")), &gorm.Config{})
		if err != nil {
			return nil, noop, fmt.Errorf("failed to open postgres database: %w", err)
		}
		if err := db.AutoMigrate(&models.Product{}); err != nil {
			return nil, noop, fmt.Errorf("failed to migrate products table: %w", err)
		}
		return repositories.NewGORMProductRepository(db), noop, nil

	case "mongo":
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		client, err := mongo.Connect(ctx, options.Client().ApplyURI(viper.GetString("MONGODB_URI")))
		if err != nil {
			return nil, noop, fmt.Errorf("failed to connect to mongodb: %w", err)
		}
		cleanup := func() {
			if err := client.Disconnect(context.Background()); err != nil {
				log.Printf("Error disconnecting mongodb client: %v", err)
			}
		}
		db := client.Database(viper.GetString("MONGODB_DATABASE"))
		return repositories.NewMongoProductRepository(db), cleanup, nil

	default:
		return nil, noop, fmt.Errorf("unknown DB_DRIVER %q", driver)
	}
}
