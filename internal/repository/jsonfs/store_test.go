package jsonfs

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/creamcroissant/sub2xray/internal/link"
	"github.com/creamcroissant/sub2xray/internal/repository"
	"github.com/creamcroissant/sub2xray/internal/support/logging"
)

func sampleRecords() []link.ServerRecord {
	return []link.ServerRecord{
		{Protocol: link.ProtocolShadowsocks, Method: "aes-256-gcm", UUID: "pw", Addr: "1.2.3.4", Port: "8388", Note: "香港 01"},
		{Protocol: link.ProtocolTrojan, UUID: "t", Addr: "t.example.com", Port: "443", Note: "JP", Options: map[string]any{"allowInsecure": true, "sni": "a"}},
	}
}

func TestSaveRecordsNumbering(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "out")
	store := NewStore(dir, logging.Discard())

	saved, err := store.SaveRecords(ctx, sampleRecords())
	require.NoError(t, err)
	require.Len(t, saved, 2)
	assert.Equal(t, filepath.Join(dir, "server01.json"), saved[0].Path)
	assert.Equal(t, 2, saved[1].Index)
	assert.Equal(t, "JP", saved[1].Note)

	data, err := os.ReadFile(saved[0].Path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "香港 01")
	assert.Contains(t, string(data), "\n    \"")
	assert.Equal(t, int64(1), gjson.GetBytes(data, "index").Int())
	assert.Equal(t, "aes-256-gcm", gjson.GetBytes(data, "method").String())

	rec, err := store.LoadIndex(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, rec.Index)
	assert.True(t, rec.BoolOption("allowInsecure"))

	byPath, err := store.LoadRecord(ctx, saved[1].Path)
	require.NoError(t, err)
	assert.Equal(t, rec, byPath)
}

func TestSaveRecordsKeepsHTMLCharacters(t *testing.T) {
	tests := []struct {
		name string
		note string
	}{
		{"ampersand", "A&B"},
		{"angle brackets", "<vip> HK"},
		{"mixed", "日本 & <x>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			store := NewStore(t.TempDir(), logging.Discard())
			rec := link.ServerRecord{Protocol: link.ProtocolTrojan, UUID: "t", Addr: "t.example.com", Port: "443", Note: tt.note}

			saved, err := store.SaveRecords(ctx, []link.ServerRecord{rec})
			require.NoError(t, err)
			data, err := os.ReadFile(saved[0].Path)
			require.NoError(t, err)
			assert.Contains(t, string(data), tt.note)
			assert.NotContains(t, string(data), `\u00`)

			loaded, err := store.LoadIndex(ctx, 1)
			require.NoError(t, err)
			assert.Equal(t, tt.note, loaded.Note)
		})
	}
}

func TestSaveRecordsPrunesStale(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store := NewStore(dir, logging.Discard())

	_, err := store.SaveRecords(ctx, append(sampleRecords(), sampleRecords()...))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.json"), []byte("{}"), 0o644))

	_, err = store.SaveRecords(ctx, sampleRecords()[:1])
	require.NoError(t, err)

	all, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, 1, all[0].Index)
	assert.FileExists(t, filepath.Join(dir, "notes.json"))

	_, err = store.LoadIndex(ctx, 2)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestListEmptyDir(t *testing.T) {
	all, err := NewStore(filepath.Join(t.TempDir(), "missing"), nil).List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestRawCache(t *testing.T) {
	ctx := context.Background()
	store := NewStore(t.TempDir(), logging.Discard())

	_, err := store.LoadRaw(ctx)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	path, err := store.SaveRaw(ctx, []byte("c3M6Ly8="))
	require.NoError(t, err)
	assert.Equal(t, RawFileName, filepath.Base(path))

	data, err := store.LoadRaw(ctx)
	require.NoError(t, err)
	assert.Equal(t, "c3M6Ly8=", string(data))
}

func TestLoadRecordInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server01.json")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0o644))
	_, err := NewStore(filepath.Dir(path), nil).LoadRecord(context.Background(), path)
	require.Error(t, err)
	assert.NotErrorIs(t, err, repository.ErrNotFound)
}
