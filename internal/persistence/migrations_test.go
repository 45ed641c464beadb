package persistence

import (
	"context"
	"testing"

	"go.uber.org/zap"
)

func TestRunMigrationsSkipsWithoutPool(t *testing.T) {
	if err := RunMigrations(context.Background(), nil, zap.NewNop()); err != nil {
		t.Fatalf("RunMigrations without a pool: %v", err)
	}
}
