// Package jsonfs 以每条记录一个 JSON 文件的形式实现仓储接口。
package jsonfs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"

	"github.com/tidwall/sjson"

	"github.com/creamcroissant/sub2xray/internal/link"
	"github.com/creamcroissant/sub2xray/internal/repository"
)

// RawFileName 是订阅原文缓存的文件名。
const RawFileName = "subscribe.data"

var recordFile = regexp.MustCompile(`^server(\d{2,})\.json$`)

var (
	_ repository.ServerRepository       = (*Store)(nil)
	_ repository.SubscriptionRepository = (*Store)(nil)
)

// Store 把记录写为 dir/server{NN}.json。
type Store struct {
	dir    string
	logger *slog.Logger
}

// NewStore 创建目录存储；目录在首次写入时创建。
func NewStore(dir string, logger *slog.Logger) *Store {
	if dir == "" {
		dir = "."
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{dir: dir, logger: logger}
}

// Dir returns the storage directory.
func (s *Store) Dir() string { return s.dir }

// RecordPath 返回序号对应的文件路径。
func (s *Store) RecordPath(index int) string {
	return filepath.Join(s.dir, fmt.Sprintf("server%02d.json", index))
}

// SaveRecords 保存记录并清理上一轮遗留的多余文件。
func (s *Store) SaveRecords(ctx context.Context, records []link.ServerRecord) ([]repository.SavedRecord, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return nil, fmt.Errorf("jsonfs: create dir: %w", err)
	}

	saved := make([]repository.SavedRecord, 0, len(records))
	for i, rec := range records {
		if err := ctx.Err(); err != nil {
			return saved, err
		}
		index := i + 1
		data, err := encodeRecord(rec, index)
		if err != nil {
			return saved, fmt.Errorf("jsonfs: encode record %d: %w", index, err)
		}
		path := s.RecordPath(index)
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return saved, fmt.Errorf("jsonfs: write %s: %w", path, err)
		}
		saved = append(saved, repository.SavedRecord{Index: index, Path: path, Note: rec.Note})
	}

	if err := s.prune(len(records)); err != nil {
		s.logger.Warn("stale record cleanup failed", "dir", s.dir, "error", err)
	}
	return saved, nil
}

// LoadRecord 读取任意路径下的记录文档。
func (s *Store) LoadRecord(_ context.Context, path string) (link.ServerRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return link.ServerRecord{}, fmt.Errorf("%w: %s", repository.ErrNotFound, path)
		}
		return link.ServerRecord{}, fmt.Errorf("jsonfs: read %s: %w", path, err)
	}
	var rec link.ServerRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return link.ServerRecord{}, fmt.Errorf("jsonfs: parse %s: %w", path, err)
	}
	return rec, nil
}

// LoadIndex 读取 server{NN}.json。
func (s *Store) LoadIndex(ctx context.Context, index int) (link.ServerRecord, error) {
	if index <= 0 {
		return link.ServerRecord{}, fmt.Errorf("%w: index %d", repository.ErrNotFound, index)
	}
	rec, err := s.LoadRecord(ctx, s.RecordPath(index))
	if err != nil {
		return link.ServerRecord{}, err
	}
	if rec.Index == 0 {
		rec.Index = index
	}
	return rec, nil
}

// List 按序号升序返回目录中全部记录。
func (s *Store) List(ctx context.Context) ([]link.ServerRecord, error) {
	indexes, err := s.indexes()
	if err != nil {
		return nil, err
	}
	records := make([]link.ServerRecord, 0, len(indexes))
	for _, index := range indexes {
		rec, err := s.LoadIndex(ctx, index)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

// SaveRaw 写入订阅原文缓存，返回文件路径。
func (s *Store) SaveRaw(_ context.Context, data []byte) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("jsonfs: create dir: %w", err)
	}
	path := filepath.Join(s.dir, RawFileName)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("jsonfs: write %s: %w", path, err)
	}
	return path, nil
}

// LoadRaw 读取订阅原文缓存。
func (s *Store) LoadRaw(_ context.Context) ([]byte, error) {
	path := filepath.Join(s.dir, RawFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", repository.ErrNotFound, path)
		}
		return nil, fmt.Errorf("jsonfs: read %s: %w", path, err)
	}
	return data, nil
}

func (s *Store) indexes() ([]int, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("jsonfs: list %s: %w", s.dir, err)
	}
	var out []int
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		m := recordFile.FindStringSubmatch(entry.Name())
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil || n <= 0 || entry.Name() != filepath.Base(s.RecordPath(n)) {
			continue
		}
		out = append(out, n)
	}
	sort.Ints(out)
	return out, nil
}

func (s *Store) prune(keep int) error {
	indexes, err := s.indexes()
	if err != nil {
		return err
	}
	for _, index := range indexes {
		if index <= keep {
			continue
		}
		if err := os.Remove(s.RecordPath(index)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		s.logger.Debug("stale record removed", "index", index)
	}
	return nil
}

// encodeRecord 输出 4 空格缩进的记录文档，非 ASCII 与 &<> 原样保留。
func encodeRecord(rec link.ServerRecord, index int) ([]byte, error) {
	rec.Index = 0
	var raw bytes.Buffer
	enc := json.NewEncoder(&raw)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(rec); err != nil {
		return nil, err
	}
	data, err := sjson.SetBytes(bytes.TrimSpace(raw.Bytes()), "index", index)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, data, "", "    "); err != nil {
		return nil, err
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}
