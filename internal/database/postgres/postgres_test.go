//go:build integration

package postgres

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/kozaktomas/face-kiosk/internal/config"
	"github.com/kozaktomas/face-kiosk/internal/web/middleware"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupTestContainer(t *testing.T) (*Pool, func()) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "testdb",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Skipf("Docker not available or container failed to start, skipping integration test: %v", err)
		return nil, func() {}
	}
	if container == nil {
		t.Skip("Docker not available, skipping integration test")
		return nil, func() {}
	}

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}

	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}

	cfg := &config.DatabaseConfig{
		URL:          fmt.Sprintf("postgres://test:test@%s:%s/testdb?sslmode=disable", host, port.Port()),
		MaxOpenConns: 5,
		MaxIdleConns: 2,
	}

	pool, err := NewPool(cfg)
	if err != nil {
		container.Terminate(ctx)
		t.Fatalf("Failed to create pool: %v", err)
	}

	if err := pool.Migrate(ctx); err != nil {
		pool.Close()
		container.Terminate(ctx)
		t.Fatalf("Failed to run migrations: %v", err)
	}

	cleanup := func() {
		pool.Close()
		container.Terminate(ctx)
	}

	return pool, cleanup
}

func TestSessionRepository(t *testing.T) {
	pool, cleanup := setupTestContainer(t)
	if pool == nil {
		return
	}
	defer cleanup()

	ctx := context.Background()
	repo := NewSessionRepository(pool)

	t.Run("SaveAndGet", func(t *testing.T) {
		stored := middleware.StoredSession{
			ID:        "session-1",
			Label:     "lobby display",
			CreatedAt: time.Now(),
			ExpiresAt: time.Now().Add(time.Hour),
		}
		if err := repo.Save(ctx, stored); err != nil {
			t.Fatalf("Failed to save session: %v", err)
		}

		got, err := repo.Get(ctx, "session-1")
		if err != nil {
			t.Fatalf("Failed to get session: %v", err)
		}
		if got == nil {
			t.Fatal("Expected session, got nil")
		}
		if got.Label != "lobby display" {
			t.Errorf("Expected label 'lobby display', got '%s'", got.Label)
		}
	})

	t.Run("GetExpiredReturnsNil", func(t *testing.T) {
		stored := middleware.StoredSession{
			ID:        "session-expired",
			CreatedAt: time.Now().Add(-2 * time.Hour),
			ExpiresAt: time.Now().Add(-time.Hour),
		}
		if err := repo.Save(ctx, stored); err != nil {
			t.Fatalf("Failed to save session: %v", err)
		}

		got, err := repo.Get(ctx, "session-expired")
		if err != nil {
			t.Fatalf("Failed to get session: %v", err)
		}
		if got != nil {
			t.Errorf("Expected nil for expired session, got %+v", got)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		stored := middleware.StoredSession{
			ID:        "session-2",
			CreatedAt: time.Now(),
			ExpiresAt: time.Now().Add(time.Hour),
		}
		if err := repo.Save(ctx, stored); err != nil {
			t.Fatalf("Failed to save session: %v", err)
		}
		if err := repo.Delete(ctx, "session-2"); err != nil {
			t.Fatalf("Failed to delete session: %v", err)
		}

		got, err := repo.Get(ctx, "session-2")
		if err != nil {
			t.Fatalf("Failed to get session: %v", err)
		}
		if got != nil {
			t.Error("Expected session to be deleted")
		}
	})

	t.Run("DeleteExpired", func(t *testing.T) {
		count, err := repo.DeleteExpired(ctx)
		if err != nil {
			t.Fatalf("Failed to delete expired sessions: %v", err)
		}
		if count < 1 {
			t.Errorf("Expected at least 1 expired session deleted, got %d", count)
		}
	})
}
