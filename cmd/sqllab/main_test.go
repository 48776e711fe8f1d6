package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBaseURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		listenAddr string
		tls        bool
		want       string
	}{
		{name: "port only", listenAddr: ":8080", want: "http://localhost:8080"},
		{name: "ipv4 host and port", listenAddr: "127.0.0.1:8080", want: "http://127.0.0.1:8080"},
		{name: "wildcard ipv4", listenAddr: "0.0.0.0:8080", want: "http://localhost:8080"},
		{name: "wildcard ipv6", listenAddr: "[::]:8080", want: "http://localhost:8080"},
		{name: "ipv6 loopback", listenAddr: "[::1]:8080", want: "http://[::1]:8080"},
		{name: "trimmed", listenAddr: " localhost:9090 ", want: "http://localhost:9090"},
		{name: "tls", listenAddr: ":8443", tls: true, want: "https://localhost:8443"},
		{name: "empty falls back", listenAddr: "", want: "http://localhost:8080"},
		{name: "malformed passes through", listenAddr: "localhost", want: "http://localhost"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, baseURL(tt.listenAddr, tt.tls))
		})
	}
}

func TestRootCmd_Subcommands(t *testing.T) {
	t.Parallel()
	root := newRootCmd()

	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	assert.ElementsMatch(t, []string{"serve", "worker", "migrate", "sync-databases"}, names)

	serve, _, err := root.Find([]string{"serve"})
	require.NoError(t, err)
	assert.NotNil(t, serve.Flags().Lookup("no-worker"))
	assert.NotNil(t, root.PersistentFlags().Lookup("env-file"))

	_, ok := flagOverride(serve.Flags(), "listen")
	assert.False(t, ok)
	require.NoError(t, serve.Flags().Set("listen", "127.0.0.1:9000"))
	addr, ok := flagOverride(serve.Flags(), "listen")
	assert.True(t, ok)
	assert.Equal(t, "127.0.0.1:9000", addr)
	_, ok = flagOverride(serve.Flags(), "missing")
	assert.False(t, ok)
}

func TestMigrateAndSyncDatabases(t *testing.T) {
	dir := t.TempDir()
	metaPath := filepath.Join(dir, "meta.sqlite")
	dbFile := filepath.Join(dir, "databases.yaml")
	require.NoError(t, os.WriteFile(dbFile, []byte("databases:\n  - name: scratch\n    engine: duckdb\n"), 0o600))

	t.Setenv("META_DB_PATH", metaPath)
	t.Setenv("RESULTS_BACKEND", "none")
	t.Setenv("DATABASES_FILE", "")
	t.Setenv("LOG_LEVEL", "error")
	envFile := filepath.Join(dir, "missing.env")

	root := newRootCmd()
	root.SetArgs([]string{"--env-file", envFile, "migrate"})
	require.NoError(t, root.Execute())
	_, err := os.Stat(metaPath)
	require.NoError(t, err)

	root = newRootCmd()
	root.SetArgs([]string{"--env-file", envFile, "sync-databases"})
	require.ErrorIs(t, root.Execute(), errNoDatabasesFile)

	root = newRootCmd()
	root.SetArgs([]string{"--env-file", envFile, "sync-databases", "--file", dbFile})
	require.NoError(t, root.Execute())
}

func TestExternalWorkersRefuseProcessLocalResults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("META_DB_PATH", filepath.Join(dir, "meta.sqlite"))
	t.Setenv("RESULTS_BACKEND", "badger")
	t.Setenv("RESULTS_BADGER_DIR", "")
	t.Setenv("FEATURE_ASYNC_QUEUE", "true")
	t.Setenv("DATABASES_FILE", "")
	t.Setenv("LOG_LEVEL", "error")
	envFile := filepath.Join(dir, "missing.env")

	for _, args := range [][]string{
		{"worker"},
		{"serve", "--no-worker", "--listen", "127.0.0.1:0"},
	} {
		root := newRootCmd()
		root.SetArgs(append([]string{"--env-file", envFile}, args...))
		err := root.Execute()
		require.Error(t, err, args)
		assert.Contains(t, err.Error(), "cannot be shared between serve and separate worker processes")
	}
}
