package integration

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"stylecore/internal/config"
	"stylecore/internal/handler"
	"stylecore/internal/repository"
	"stylecore/internal/router"
	"stylecore/internal/service"
	"stylecore/internal/store"

	"github.com/rs/zerolog"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

const testAPIKey = "integration-key"

// TestDB represents a test database instance.
type TestDB struct {
	Container *postgres.PostgresContainer
	Config    config.DatabaseConfig
}

// SetupTestDB starts a PostgreSQL test container. The schema is created by
// the backend itself when the dispatcher opens it.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	ctx := context.Background()

	postgresContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	t.Cleanup(func() {
		if err := postgresContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	host, err := postgresContainer.Host(ctx)
	if err != nil {
		t.Fatalf("failed to get container host: %v", err)
	}
	port, err := postgresContainer.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("failed to get container port: %v", err)
	}

	return &TestDB{
		Container: postgresContainer,
		Config: config.DatabaseConfig{
			Host:            host,
			Port:            port.Int(),
			User:            "testuser",
			Password:        "testpass",
			Database:        "testdb",
			SSLMode:         "disable",
			MaxConnections:  10,
			MinConnections:  2,
			MaxConnLifetime: 300,
		},
	}
}

// TestServer is the full API over a dispatcher.
type TestServer struct {
	*httptest.Server
	Dispatcher *store.Dispatcher
	TxManager  repository.TxManager
}

// SetupTestServer wires the API over a dispatcher trying PostgreSQL with
// dbConfig first and the JSON file at dataFile second.
func SetupTestServer(t *testing.T, dbConfig config.DatabaseConfig, dataFile string) *TestServer {
	t.Helper()

	logger := zerolog.Nop()

	dispatcher := store.NewDispatcher(logger,
		store.PostgresOpener(dbConfig, logger),
		store.FileOpener(dataFile, logger),
	)
	if err := dispatcher.Open(context.Background()); err != nil {
		t.Fatalf("failed to open storage: %v", err)
	}
	t.Cleanup(dispatcher.Close)

	repos := repository.New(dispatcher, logger)
	txm := repository.NewTxManager(dispatcher, logger)

	handlers := router.Handlers{
		Products: handler.NewProductHandler(service.NewProductService(repos.Products, logger), logger),
		Cart: handler.NewCartHandler(
			service.NewCartService(repos.Cart, repos.Products, logger),
			service.NewWishlistService(repos.Users, repos.Products, logger),
			logger,
		),
		Orders: handler.NewOrderHandler(service.NewOrderService(txm, repos.Orders, logger), logger),
		Users:  handler.NewUserHandler(service.NewUserService(repos.Users, repos.Addresses, logger), handler.LogNotifier{Logger: logger}, logger),
	}

	srv := httptest.NewServer(router.New(handlers, dispatcher, nil, testAPIKey, logger))
	t.Cleanup(srv.Close)

	return &TestServer{Server: srv, Dispatcher: dispatcher, TxManager: txm}
}
