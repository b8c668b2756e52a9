package integration

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"onehealth-labs/internal/database"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestDB represents a test database instance.
type TestDB struct {
	Container *postgres.PostgresContainer
	Pool      *pgxpool.Pool
	ConnStr   string
}

// SetupTestDB creates a PostgreSQL test container, a connection pool and
// the application schema.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	ctx := context.Background()

	postgresContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("labs_test"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	poolConfig, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		t.Fatalf("failed to parse connection string: %v", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		t.Fatalf("failed to create connection pool: %v", err)
	}

	if err := pool.Ping(ctx); err != nil {
		t.Fatalf("failed to ping database: %v", err)
	}

	if err := database.Migrate(ctx, pool, zerolog.Nop()); err != nil {
		t.Fatalf("failed to apply schema: %v", err)
	}

	t.Cleanup(func() {
		pool.Close()
		if err := postgresContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	return &TestDB{
		Container: postgresContainer,
		Pool:      pool,
		ConnStr:   connStr,
	}
}

// CleanupDB removes all rows from the application tables.
func CleanupDB(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	ctx := context.Background()

	tables := []string{"lab_cart_items", "lab_carts", "lab_order_items", "lab_orders"}
	for _, table := range tables {
		_, err := pool.Exec(ctx, fmt.Sprintf("DELETE FROM %s", table))
		if err != nil {
			t.Logf("failed to clean table %s: %v", table, err)
		}
	}
}

// FakeGateway stands in for the API gateway fronting the patient service,
// the test catalog service and this application's own cart endpoints. The
// cart paths are forwarded straight into the application handler so the
// order engine's remote cart reads resolve against the real store.
type FakeGateway struct {
	Server *httptest.Server

	// App is the application handler cart requests are forwarded to. Set
	// after the application is constructed; the gateway URL is needed first.
	App http.Handler

	// APIKey is attached to forwarded cart requests.
	APIKey string
}

// Known fixtures served by the fake patient and catalog services.
const (
	fixturePatientBody = `{"id": %s, "first_name": "Asha", "last_name": "Rao"}`

	fixtureCBC = `{"id": 7, "name": "Complete Blood Count", "price": 250.0,
		"lab_id": 3, "lab_name": "City Diagnostics", "lab_address": "12 MG Road",
		"category": "Hematology"}`

	fixtureLipid = `{"id": 9, "name": "Lipid Profile", "price": 400.0,
		"lab_id": 5, "lab_name": "Metro Labs", "lab_address": "4 Park Street",
		"category": "Biochemistry"}`
)

// StartFakeGateway starts the fake gateway. Patients 42 and 43 and tests 7
// and 9 exist; everything else is a 404.
func StartFakeGateway(t *testing.T, apiKey string) *FakeGateway {
	t.Helper()

	gw := &FakeGateway{APIKey: apiKey}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /patients/{id}", func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		if id != "42" && id != "43" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, fixturePatientBody, id)
	})
	mux.HandleFunc("GET /tests/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.PathValue("id") {
		case "7":
			w.Write([]byte(fixtureCBC))
		case "9":
			w.Write([]byte(fixtureLipid))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
	mux.HandleFunc("/lab-carts/", func(w http.ResponseWriter, r *http.Request) {
		if gw.App == nil {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		r.URL.Path = "/api" + r.URL.Path
		r.Header.Set("X-API-Key", gw.APIKey)
		gw.App.ServeHTTP(w, r)
	})

	gw.Server = httptest.NewServer(mux)
	t.Cleanup(gw.Server.Close)

	return gw
}
