package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/umputun/nsnt/app/snapshot"
	"github.com/umputun/nsnt/app/web/enums"
	"github.com/umputun/nsnt/app/web/persistence"
)

func Test_setupLogsWithLogsDisabled(t *testing.T) {
	opts.Log.Enabled = false
	assert.Equal(t, os.Stdout, setupLogs())
}

func Test_setupLogsToFile(t *testing.T) {
	tmpfile, err := os.CreateTemp(t.TempDir(), "nsnt-log")
	require.NoError(t, err)
	require.NoError(t, tmpfile.Close())

	opts.Log.Enabled = true
	opts.Log.Filename = tmpfile.Name()
	opts.Log.MaxSize = 100
	opts.Log.MaxBackups = 7
	opts.Log.MaxAge = 0
	opts.Log.EnabledCompress = false
	defer func() {
		opts.Log.Enabled = false
		setupLogs()
	}()

	out := setupLogs()
	assert.IsType(t, &lumberjack.Logger{}, out)

	logger := out.(*lumberjack.Logger)
	assert.Equal(t, tmpfile.Name(), logger.Filename)
	assert.Equal(t, 100, logger.MaxSize)
	assert.Equal(t, 7, logger.MaxBackups)
	assert.Equal(t, 0, logger.MaxAge)
	assert.False(t, logger.Compress)
}

func Test_closeLogs(t *testing.T) {
	fname := filepath.Join(t.TempDir(), "nsnt.log")
	opts.Log.Enabled = true
	opts.Log.Filename = fname
	defer func() {
		opts.Log.Enabled = false
		setupLogs()
	}()

	out := setupLogs()
	_, err := out.Write([]byte("some line\n"))
	require.NoError(t, err)
	closeLogs(out)

	data, err := os.ReadFile(fname) //nolint:gosec // test file
	require.NoError(t, err)
	assert.Equal(t, "some line\n", string(data))

	closeLogs(os.Stdout)
	_, err = os.Stdout.Write(nil)
	assert.NoError(t, err, "stdout stays open")
}

func Test_validateBaseURL(t *testing.T) {
	tests := []struct{ name, input, want string }{
		{"empty string", "", ""},
		{"root path", "/", ""},
		{"path without trailing slash", "/nsnt", "/nsnt"},
		{"path with trailing slash", "/nsnt/", "/nsnt"},
		{"multi-segment path", "/app/nsnt", "/app/nsnt"},
		{"multi-segment with trailing slash", "/app/nsnt/", "/app/nsnt"},
		{"missing leading slash", "nsnt", "/nsnt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, validateBaseURL(tt.input))
		})
	}
}

func Test_importSnapshots(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "first.json")
	require.NoError(t, os.WriteFile(first,
		[]byte(`{"watched_items":[{"url":"a","title":"A"}],"ignored_items":[{"url":"b","title":"B"}]}`), 0o600))
	second := filepath.Join(dir, "second.yaml")
	require.NoError(t, os.WriteFile(second, []byte("ignored_items:\n  - url: a\n    title: A\n"), 0o600))

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"watched_items":[{"url":"c","title":"C"}]}`))
	}))
	defer ts.Close()

	t.Run("applied in order", func(t *testing.T) {
		store := newTestStore(t)
		err := importSnapshots(context.Background(), store, []string{first, second, ts.URL + "/third.json"}, 2)
		require.NoError(t, err)

		watched, err := store.List(context.Background(), enums.PartitionWatched, 0)
		require.NoError(t, err)
		require.Len(t, watched, 2)
		assert.Equal(t, "a", watched[0].URL, "the first import wins for duplicate a")
		assert.Equal(t, "c", watched[1].URL)

		ignored, err := store.List(context.Background(), enums.PartitionIgnored, 0)
		require.NoError(t, err)
		require.Len(t, ignored, 1)
		assert.Equal(t, "b", ignored[0].URL)
	})

	t.Run("invalid snapshot stops before any import", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte(`{"watched_items":[{"title":"no url"}]}`), 0o600))

		store := newTestStore(t)
		err := importSnapshots(context.Background(), store, []string{first, bad}, 4)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid snapshot")

		counts, err := store.Counts(context.Background())
		require.NoError(t, err)
		assert.Equal(t, persistence.Counts{}, counts)
	})

	t.Run("missing file", func(t *testing.T) {
		store := newTestStore(t)
		err := importSnapshots(context.Background(), store, []string{filepath.Join(dir, "nope.json")}, 0)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to load")
	})
}

func Test_exportSnapshot(t *testing.T) {
	store := newTestStore(t)
	_, err := store.Import(context.Background(), persistence.ImportRequest{
		Watched: []persistence.Item{{URL: "a", Title: "A"}},
		Ignored: []persistence.Item{{URL: "b", Title: "B"}},
		Cached:  []persistence.Item{{URL: "c", Title: "C"}},
	})
	require.NoError(t, err)

	t.Run("json", func(t *testing.T) {
		fname := filepath.Join(t.TempDir(), "sub", "export.json")
		require.NoError(t, exportSnapshot(context.Background(), store, fname))

		data, err := os.ReadFile(fname) //nolint:gosec // test file
		require.NoError(t, err)
		var exp snapshot.ExportDocument
		require.NoError(t, json.Unmarshal(data, &exp))
		require.Len(t, exp.WatchedData, 1)
		assert.Equal(t, "a", exp.WatchedData[0].URL)
		require.Len(t, exp.IgnoreData, 1)
		assert.Equal(t, "b", exp.IgnoreData[0].URL)
		assert.Empty(t, exp.CachedData)
	})

	t.Run("yaml", func(t *testing.T) {
		fname := filepath.Join(t.TempDir(), "export.yml")
		require.NoError(t, exportSnapshot(context.Background(), store, fname))
		data, err := os.ReadFile(fname) //nolint:gosec // test file
		require.NoError(t, err)
		doc, err := snapshot.Parse(data, enums.FormatYAML)
		require.NoError(t, err)
		assert.Len(t, doc.WatchedItems, 1)
		assert.Len(t, doc.IgnoredItems, 1)
	})
}

func Test_makeBackup(t *testing.T) {
	opts.Backup.Dir = "/tmp/nsnt-backups"
	opts.Backup.Schedule = "@hourly"
	opts.Backup.Keep = 3
	opts.Backup.MinFreePercent = 10
	opts.Backup.Attempts = 2
	opts.Backup.Duration = time.Millisecond
	opts.Backup.Factor = 1.5

	opts.Backup.Webhook = ""
	svc := makeBackup(newTestStore(t))
	assert.Equal(t, "/tmp/nsnt-backups", svc.Dir)
	assert.Equal(t, "@hourly", svc.Schedule)
	assert.Equal(t, 3, svc.Keep)
	assert.InDelta(t, 10.0, svc.MinFreePercent, 0.001)
	assert.NotNil(t, svc.Repeater)
	assert.Nil(t, svc.Notifier)

	opts.Backup.Webhook = "https://example.com/hook"
	svc = makeBackup(newTestStore(t))
	assert.NotNil(t, svc.Notifier)
	assert.Equal(t, "https://example.com/hook", svc.NotifyDest)
	opts.Backup.Webhook = ""
}

func Test_run(t *testing.T) {
	dir := t.TempDir()
	snap := filepath.Join(dir, "in.json")
	require.NoError(t, os.WriteFile(snap, []byte(`{"watched_items":[{"url":"a","title":"A"}],"ignored_items":[]}`), 0o600))

	opts.DB = filepath.Join(dir, "nsnt.db")
	opts.Import = []string{snap}
	opts.Export = filepath.Join(dir, "out.json")
	opts.Concurrency = 2
	defer func() { opts.Import, opts.Export = nil, "" }()

	require.NoError(t, run(context.Background()))

	data, err := os.ReadFile(opts.Export)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"url": "a"`)

	t.Run("server stops on cancel", func(t *testing.T) {
		opts.Import, opts.Export = nil, ""
		opts.Web.Address = "127.0.0.1:0"
		opts.Backup.Enabled = true
		opts.Backup.Dir = filepath.Join(dir, "backups")
		opts.Backup.Schedule = "@hourly"
		defer func() { opts.Backup.Enabled = false }()

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- run(ctx) }()
		time.Sleep(200 * time.Millisecond)
		cancel()

		select {
		case err := <-done:
			require.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Fatal("run did not stop")
		}
		assert.DirExists(t, opts.Backup.Dir)
	})

	t.Run("bad db path", func(t *testing.T) {
		opts.DB = filepath.Join(dir, "no-such-dir", "x", "nsnt.db")
		err := run(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to open store")
	})
}

func newTestStore(t *testing.T) *persistence.SQLiteStore {
	t.Helper()
	store, err := persistence.NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}
