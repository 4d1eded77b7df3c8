package export

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStorage(t *testing.T) (*FileSystemStorage, string) {
	t.Helper()
	dir := t.TempDir()
	storage, err := NewFileSystemStorage(&FileSystemStorageConfig{BasePath: dir})
	require.NoError(t, err)
	storage.now = func() time.Time { return time.Date(2024, time.March, 15, 10, 0, 0, 0, time.UTC) }
	return storage, dir
}

func TestFileSystemStorage_Store(t *testing.T) {
	ctx := context.Background()
	storage, dir := newTestStorage(t)
	tenantID := uuid.New()

	t.Run("writes under tenant, year and month", func(t *testing.T) {
		data := []byte("workbook")
		result, err := storage.Store(ctx, &StoreRequest{TenantID: tenantID, Name: "statement", Data: data})
		require.NoError(t, err)

		assert.Equal(t, filepath.Join(tenantID.String(), "2024", "03", "statement.xlsx"), result.Path)
		assert.Equal(t, filepath.Join(dir, result.Path), result.FullPath)
		assert.Equal(t, int64(len(data)), result.Size)

		content, err := os.ReadFile(result.FullPath)
		require.NoError(t, err)
		assert.Equal(t, data, content)
	})

	t.Run("nil request", func(t *testing.T) {
		_, err := storage.Store(ctx, nil)
		assert.ErrorContains(t, err, "nil")
	})

	t.Run("missing tenant", func(t *testing.T) {
		_, err := storage.Store(ctx, &StoreRequest{Name: "x.xlsx", Data: []byte("x")})
		assert.ErrorContains(t, err, "tenant")
	})

	t.Run("empty data", func(t *testing.T) {
		_, err := storage.Store(ctx, &StoreRequest{TenantID: tenantID, Name: "x.xlsx"})
		assert.ErrorContains(t, err, "empty")
	})

	t.Run("names cannot carry directories", func(t *testing.T) {
		for _, name := range []string{"../escape.xlsx", "a/b.xlsx", "..", ""} {
			_, err := storage.Store(ctx, &StoreRequest{TenantID: tenantID, Name: name, Data: []byte("x")})
			var exportErr *ExportError
			require.ErrorAs(t, err, &exportErr, name)
			assert.Equal(t, ErrCodeInvalidName, exportErr.Code, name)
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		_, err := storage.Store(cancelled, &StoreRequest{TenantID: tenantID, Name: "x.xlsx", Data: []byte("x")})
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestFileSystemStorage_OpenAndDelete(t *testing.T) {
	ctx := context.Background()
	storage, _ := newTestStorage(t)

	result, err := storage.Store(ctx, &StoreRequest{TenantID: uuid.New(), Name: "s.xlsx", Data: []byte("content")})
	require.NoError(t, err)

	t.Run("opens a stored file", func(t *testing.T) {
		rc, err := storage.Open(ctx, result.Path)
		require.NoError(t, err)
		defer rc.Close()
		content, err := io.ReadAll(rc)
		require.NoError(t, err)
		assert.Equal(t, "content", string(content))
	})

	t.Run("rejects paths outside the base directory", func(t *testing.T) {
		for _, path := range []string{"../etc/passwd", "/etc/passwd", "a/../../b"} {
			_, err := storage.Open(ctx, path)
			assert.Error(t, err, path)
		}
	})

	t.Run("missing files are not found", func(t *testing.T) {
		_, err := storage.Open(ctx, "nope.xlsx")
		var exportErr *ExportError
		require.ErrorAs(t, err, &exportErr)
		assert.Equal(t, ErrCodeNotFound, exportErr.Code)
	})

	t.Run("delete is idempotent", func(t *testing.T) {
		require.NoError(t, storage.Delete(ctx, result.Path))
		require.NoError(t, storage.Delete(ctx, result.Path))
		_, err := storage.Open(ctx, result.Path)
		assert.Error(t, err)
	})
}

func TestFileSystemStorage_Cleanup(t *testing.T) {
	ctx := context.Background()
	storage, dir := newTestStorage(t)
	storage.now = time.Now

	oldFile := filepath.Join(dir, "old.xlsx")
	newFile := filepath.Join(dir, "new.xlsx")
	other := filepath.Join(dir, "keep.txt")
	for _, p := range []string{oldFile, newFile, other} {
		require.NoError(t, os.WriteFile(p, []byte("x"), 0644))
	}
	past := time.Now().Add(-48 * time.Hour)
	require.NoError(t, os.Chtimes(oldFile, past, past))
	require.NoError(t, os.Chtimes(other, past, past))

	t.Run("zero retention keeps everything", func(t *testing.T) {
		deleted, err := storage.CleanupExpired(ctx)
		require.NoError(t, err)
		assert.Zero(t, deleted)
	})

	t.Run("removes only old workbooks", func(t *testing.T) {
		deleted, err := storage.CleanupOlderThan(ctx, 24*time.Hour)
		require.NoError(t, err)
		assert.Equal(t, 1, deleted)
		assert.NoFileExists(t, oldFile)
		assert.FileExists(t, newFile)
		assert.FileExists(t, other)
	})
}
