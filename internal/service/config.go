package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/creamcroissant/sub2xray/internal/link"
	"github.com/creamcroissant/sub2xray/internal/repository"
	"github.com/creamcroissant/sub2xray/internal/rules"
	"github.com/creamcroissant/sub2xray/internal/xray"
)

// RulesSource 提供路由规则。rules.Store 即为默认实现。
type RulesSource interface {
	Load() (rules.RuleSet, error)
	Path() (string, error)
}

// ConfigService 把一条服务器记录与路由规则组装成 Xray 客户端配置。
type ConfigService interface {
	Build(ctx context.Context, req BuildRequest) (*BuildResult, error)
	Write(path string, document []byte) error
}

// BuildRequest 指定记录来源：Record、InputPath、Index 按此优先级取第一个非空值。
type BuildRequest struct {
	Record    *link.ServerRecord
	InputPath string
	Index     int
	Options   xray.Options
}

// BuildResult 携带组装结果与其 JSON 文档。
type BuildResult struct {
	Record    link.ServerRecord
	Config    *xray.ClientConfig
	Document  []byte
	RulesPath string
}

type configService struct {
	servers   repository.ServerRepository
	rules     RulesSource
	assembler *xray.Assembler
	logger    *slog.Logger
}

// NewConfigService 构建配置服务。
func NewConfigService(servers repository.ServerRepository, rulesSrc RulesSource, logger *slog.Logger) ConfigService {
	if logger == nil {
		logger = slog.Default()
	}
	return &configService{
		servers:   servers,
		rules:     rulesSrc,
		assembler: xray.NewAssembler(logger),
		logger:    logger,
	}
}

func (s *configService) Build(ctx context.Context, req BuildRequest) (*BuildResult, error) {
	rec, err := s.resolveRecord(ctx, req)
	if err != nil {
		return nil, err
	}

	rs, err := s.rules.Load()
	if err != nil {
		return nil, err
	}

	cfg, err := s.assembler.Assemble(rec, rs, req.Options)
	if err != nil {
		return nil, err
	}
	doc, err := EncodeDocument(cfg)
	if err != nil {
		return nil, err
	}
	rulesPath, err := s.rules.Path()
	if err != nil {
		return nil, err
	}
	s.logger.Debug("client config built", "protocol", rec.Protocol, "note", rec.Note, "rules", rulesPath)
	return &BuildResult{Record: rec, Config: cfg, Document: doc, RulesPath: rulesPath}, nil
}

func (s *configService) resolveRecord(ctx context.Context, req BuildRequest) (link.ServerRecord, error) {
	if req.Record != nil {
		return *req.Record, nil
	}
	if s.servers == nil {
		return link.ServerRecord{}, fmt.Errorf("service: server repository not configured")
	}

	var (
		rec link.ServerRecord
		err error
	)
	switch {
	case req.InputPath != "":
		rec, err = s.servers.LoadRecord(ctx, req.InputPath)
	case req.Index > 0:
		rec, err = s.servers.LoadIndex(ctx, req.Index)
	default:
		return link.ServerRecord{}, fmt.Errorf("%w: no record selected", ErrNotFound)
	}
	if errors.Is(err, repository.ErrNotFound) {
		return link.ServerRecord{}, fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	return rec, err
}

// Write 写出配置文档，必要时创建父目录。
func (s *configService) Write(path string, document []byte) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("service: create %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, document, 0o644); err != nil {
		return fmt.Errorf("service: write %s: %w", path, err)
	}
	return nil
}

// EncodeDocument 以 2 空格缩进输出配置文档，不转义 HTML 字符。
func EncodeDocument(cfg *xray.ClientConfig) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(cfg); err != nil {
		return nil, fmt.Errorf("service: encode config: %w", err)
	}
	return buf.Bytes(), nil
}
