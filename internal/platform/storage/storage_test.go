package storage_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/SscSPs/school_ledger/internal/platform/config"
	"github.com/SscSPs/school_ledger/internal/platform/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_InMemorySQLite(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	repos, closeFn, err := storage.Open(context.Background(), &config.Config{DBDriver: config.DriverSQLite}, logger)
	require.NoError(t, err)
	defer closeFn()

	assert.NotNil(t, repos.AccountRepo)
	assert.NotNil(t, repos.TxManager)
}

func TestOpen_UnknownDriver(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	_, _, err := storage.Open(context.Background(), &config.Config{DBDriver: "oracle"}, logger)
	assert.Error(t, err)
}
