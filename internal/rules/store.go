package rules

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultPath 是规则文件的默认位置。
const DefaultPath = "~/.v2rules.json"

// ErrInvalidRules indicates the rules file exists but cannot be parsed.
var ErrInvalidRules = errors.New("rules: invalid rules file")

// Store 负责规则文件的读取与首次创建；组装器本身从不接触文件。
type Store struct {
	path   string
	logger *slog.Logger
}

// NewStore 创建规则文件存储，path 支持 ~ 开头。
func NewStore(path string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	if strings.TrimSpace(path) == "" {
		path = DefaultPath
	}
	return &Store{path: path, logger: logger}
}

// Path returns the resolved file path.
func (s *Store) Path() (string, error) {
	return ExpandHome(s.path)
}

// Load 读取规则文件；文件不存在时先写入默认规则。
func (s *Store) Load() (RuleSet, error) {
	path, err := s.Path()
	if err != nil {
		return RuleSet{}, err
	}

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := s.write(path, Default()); err != nil {
			return RuleSet{}, err
		}
		s.logger.Info("rules file created with defaults", "path", path)
	} else if err != nil {
		return RuleSet{}, fmt.Errorf("stat rules file: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return RuleSet{}, fmt.Errorf("read rules file: %w", err)
	}

	var rs RuleSet
	if isYAML(path) {
		err = yaml.Unmarshal(data, &rs)
	} else {
		err = json.Unmarshal(data, &rs)
	}
	if err != nil {
		return RuleSet{}, fmt.Errorf("%w: %s: %v", ErrInvalidRules, path, err)
	}
	return rs, nil
}

// Reset 用默认规则覆盖现有文件。
func (s *Store) Reset() error {
	path, err := s.Path()
	if err != nil {
		return err
	}
	return s.write(path, Default())
}

func (s *Store) write(path string, rs RuleSet) error {
	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(rs)
	} else {
		data, err = json.MarshalIndent(rs, "", "    ")
	}
	if err != nil {
		return fmt.Errorf("encode rules: %w", err)
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create rules dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write rules file: %w", err)
	}
	return nil
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// ExpandHome 把开头的 ~ 替换为当前用户主目录。
func ExpandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
