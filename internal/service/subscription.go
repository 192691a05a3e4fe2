package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/creamcroissant/sub2xray/internal/link"
	"github.com/creamcroissant/sub2xray/internal/repository"
)

// Fetcher 拉取订阅原文。
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// DecodeObserver 接收每一批解码结果，用于指标统计。
type DecodeObserver interface {
	ObserveDecode(res *link.Result)
}

// SubscriptionService 负责 拉取 → 解码 → 保存 的流程。
type SubscriptionService interface {
	Sync(ctx context.Context, src Source) (*SyncResult, error)
	Decode(ctx context.Context, raw []byte) (*link.Result, error)
}

// Source 指定订阅来源，URL 与 Raw 必须且只能设置一个。
type Source struct {
	URL string
	Raw []byte
}

// SyncResult 汇总一次同步的产出。
type SyncResult struct {
	// RawPath 仅在从网络拉取时非空。
	RawPath  string
	Raw      []byte
	Records  []link.ServerRecord
	Failures []error
	Saved    []repository.SavedRecord
}

// SubscriptionDeps 聚合订阅服务的依赖。
type SubscriptionDeps struct {
	Fetcher  Fetcher
	Decoder  *link.Decoder
	Servers  repository.ServerRepository
	Raw      repository.SubscriptionRepository
	Observer DecodeObserver
	Logger   *slog.Logger
}

type subscriptionService struct {
	fetcher  Fetcher
	decoder  *link.Decoder
	servers  repository.ServerRepository
	raw      repository.SubscriptionRepository
	observer DecodeObserver
	logger   *slog.Logger
}

// NewSubscriptionService 构建订阅服务。
func NewSubscriptionService(deps SubscriptionDeps) SubscriptionService {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	decoder := deps.Decoder
	if decoder == nil {
		decoder = link.NewDecoder(link.WithLogger(logger))
	}
	return &subscriptionService{
		fetcher:  deps.Fetcher,
		decoder:  decoder,
		servers:  deps.Servers,
		raw:      deps.Raw,
		observer: deps.Observer,
		logger:   logger,
	}
}

func (s *subscriptionService) Sync(ctx context.Context, src Source) (*SyncResult, error) {
	hasURL := src.URL != ""
	hasRaw := len(src.Raw) > 0
	if hasURL == hasRaw {
		return nil, ErrSourceRequired
	}

	out := &SyncResult{Raw: src.Raw}
	if hasURL {
		if s.fetcher == nil {
			return nil, fmt.Errorf("service: fetcher not configured")
		}
		data, err := s.fetcher.Fetch(ctx, src.URL)
		if err != nil {
			return nil, err
		}
		out.Raw = data
		if s.raw != nil {
			path, err := s.raw.SaveRaw(ctx, data)
			if err != nil {
				return nil, err
			}
			out.RawPath = path
			s.logger.Info("subscription cached", "path", path, "bytes", len(data))
		}
	}

	res, err := s.Decode(ctx, out.Raw)
	if err != nil {
		return nil, err
	}
	out.Records = res.Records
	out.Failures = res.Failures

	if s.servers != nil {
		saved, err := s.servers.SaveRecords(ctx, res.Records)
		if err != nil {
			return out, err
		}
		out.Saved = saved
	}
	return out, nil
}

func (s *subscriptionService) Decode(ctx context.Context, raw []byte) (*link.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	links, err := link.DecodeEnvelope(raw)
	if err != nil {
		return nil, err
	}
	res, err := s.decoder.DecodeAll(links)
	if res != nil && s.observer != nil {
		s.observer.ObserveDecode(res)
	}
	if err != nil {
		return res, err
	}
	s.logger.Debug("subscription decoded", "links", len(links), "records", len(res.Records), "failures", len(res.Failures))
	return res, nil
}
