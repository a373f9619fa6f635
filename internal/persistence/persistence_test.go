package persistence

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/spec-kit/haf/internal/config"
)

func TestMigrationNames(t *testing.T) {
	names, err := MigrationNames()
	if err != nil {
		t.Fatalf("MigrationNames() failed: %v", err)
	}
	if len(names) == 0 || names[0] != "001_ticket_log.sql" {
		t.Errorf("unexpected migrations %v", names)
	}
}

func TestRunMigrationsWithoutPool(t *testing.T) {
	if err := RunMigrations(context.Background(), nil, zap.NewNop()); err != nil {
		t.Fatalf("expected nil pool to be skipped, got %v", err)
	}
}

func TestNewPostgresWithoutDSN(t *testing.T) {
	pg, err := NewPostgres(context.Background(), config.PostgresConfig{}, zap.NewNop())
	if err != nil {
		t.Fatalf("NewPostgres() failed: %v", err)
	}
	if pg.PoolHandle() != nil {
		t.Error("expected no pool without a DSN")
	}
	pg.Close()
}

func TestNewRedisWithoutAddr(t *testing.T) {
	r := NewRedis(config.RedisConfig{}, zap.NewNop())
	if r.Enabled() {
		t.Error("expected redis to be disabled without an address")
	}
	if err := r.Ping(context.Background()); err == nil {
		t.Error("expected ping on disabled redis to fail")
	}
	r.Close()
}
