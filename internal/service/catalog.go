package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/creamcroissant/sub2xray/internal/cache"
	"github.com/creamcroissant/sub2xray/internal/link"
	"github.com/creamcroissant/sub2xray/internal/repository"
	"github.com/creamcroissant/sub2xray/internal/xray"
)

const snapshotKey = "snapshot"

// Snapshot 是 serve 模式对外提供的不可变服务器列表。
type Snapshot struct {
	ID        string              `json:"id"`
	Source    string              `json:"source"`
	UpdatedAt time.Time           `json:"updated_at"`
	Servers   []link.ServerRecord `json:"servers"`
	Failures  []string            `json:"failures"`
}

// Snapshot sources.
const (
	SourceRemote = "remote"
	SourceCache  = "cache"
	SourceDisk   = "disk"
)

// ConfigDocument 是某个快照下单条记录的配置文档。
type ConfigDocument struct {
	SnapshotID string
	Index      int
	Document   []byte
}

// CatalogService 维护 serve 模式的快照并按需生成配置。
type CatalogService interface {
	Refresh(ctx context.Context) (*Snapshot, error)
	Current(ctx context.Context) (*Snapshot, error)
	Config(ctx context.Context, index int, opts xray.Options) (*ConfigDocument, error)
}

// CatalogDeps 聚合目录服务的依赖。
type CatalogDeps struct {
	URL           string
	Subscriptions SubscriptionService
	Configs       ConfigService
	Servers       repository.ServerRepository
	Raw           repository.SubscriptionRepository
	Cache         cache.Store
	TTL           time.Duration
	Logger        *slog.Logger
}

type catalogService struct {
	url           string
	subscriptions SubscriptionService
	configs       ConfigService
	servers       repository.ServerRepository
	raw           repository.SubscriptionRepository
	snapshots     cache.Store
	documents     cache.Store
	ttl           time.Duration
	logger        *slog.Logger

	// refreshMu 串行化刷新，避免定时任务与手动刷新同时写文件。
	refreshMu sync.Mutex
}

// NewCatalogService 构建目录服务。
func NewCatalogService(deps CatalogDeps) CatalogService {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	store := deps.Cache
	if store == nil {
		store = cache.NewStore(cache.Options{DefaultTTL: deps.TTL})
	}
	return &catalogService{
		url:           deps.URL,
		subscriptions: deps.Subscriptions,
		configs:       deps.Configs,
		servers:       deps.Servers,
		raw:           deps.Raw,
		snapshots:     store.Namespace("snapshot"),
		documents:     store.Namespace("config"),
		ttl:           deps.TTL,
		logger:        logger,
	}
}

// Refresh 优先从订阅地址拉取；未配置地址时重新解码本地 subscribe.data。
func (s *catalogService) Refresh(ctx context.Context) (*Snapshot, error) {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()
	return s.refresh(ctx)
}

// refresh 要求调用方已持有 refreshMu。
func (s *catalogService) refresh(ctx context.Context) (*Snapshot, error) {
	src := Source{URL: s.url}
	origin := SourceRemote
	if s.url == "" {
		if s.raw == nil {
			return nil, ErrNoSubscription
		}
		data, err := s.raw.LoadRaw(ctx)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, fmt.Errorf("%w: %v", ErrNoSubscription, err)
			}
			return nil, err
		}
		src = Source{Raw: data}
		origin = SourceCache
	}

	res, err := s.subscriptions.Sync(ctx, src)
	if err != nil {
		return nil, err
	}

	records := make([]link.ServerRecord, len(res.Records))
	for i, rec := range res.Records {
		rec.Index = i + 1
		records[i] = rec
	}
	snap := s.publish(ctx, origin, records, res.Failures)
	s.logger.Info("subscription snapshot refreshed",
		"snapshot", snap.ID,
		"source", origin,
		"servers", len(snap.Servers),
		"failures", len(snap.Failures),
	)
	return snap, nil
}

// Current 返回缓存的快照；缓存过期后从磁盘记录重建，磁盘也为空时触发刷新。
func (s *catalogService) Current(ctx context.Context) (*Snapshot, error) {
	if snap, ok := cache.Load[*Snapshot](ctx, s.snapshots, snapshotKey); ok {
		return snap, nil
	}

	// 读盘前持锁，避免读到刷新过程中写了一半的记录文件。
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()
	if snap, ok := cache.Load[*Snapshot](ctx, s.snapshots, snapshotKey); ok {
		return snap, nil
	}
	if s.servers != nil {
		records, err := s.servers.List(ctx)
		if err != nil {
			return nil, err
		}
		if len(records) > 0 {
			return s.publish(ctx, SourceDisk, records, nil), nil
		}
	}
	return s.refresh(ctx)
}

func (s *catalogService) Config(ctx context.Context, index int, opts xray.Options) (*ConfigDocument, error) {
	snap, err := s.Current(ctx)
	if err != nil {
		return nil, err
	}

	key := snap.ID + ":" + strconv.Itoa(index) + ":" + strconv.FormatBool(opts.AllowLAN) + ":" + strconv.Itoa(opts.HTTPPort)
	if doc, ok := s.documents.GetBytes(ctx, key); ok {
		return &ConfigDocument{SnapshotID: snap.ID, Index: index, Document: doc}, nil
	}

	var rec *link.ServerRecord
	for i := range snap.Servers {
		if snap.Servers[i].Index == index {
			rec = &snap.Servers[i]
			break
		}
	}
	if rec == nil {
		return nil, fmt.Errorf("%w: index %d", ErrNotFound, index)
	}

	built, err := s.configs.Build(ctx, BuildRequest{Record: rec, Options: opts})
	if err != nil {
		return nil, err
	}
	s.documents.SetBytes(ctx, key, built.Document, s.ttl)
	return &ConfigDocument{SnapshotID: snap.ID, Index: index, Document: built.Document}, nil
}

func (s *catalogService) publish(ctx context.Context, origin string, records []link.ServerRecord, failures []error) *Snapshot {
	msgs := make([]string, 0, len(failures))
	for _, err := range failures {
		msgs = append(msgs, err.Error())
	}
	if records == nil {
		records = []link.ServerRecord{}
	}
	snap := &Snapshot{
		ID:        uuid.NewString(),
		Source:    origin,
		UpdatedAt: time.Now().UTC(),
		Servers:   records,
		Failures:  msgs,
	}
	s.documents.Flush(ctx)
	s.snapshots.Set(ctx, snapshotKey, snap, s.ttl)
	return snap
}
