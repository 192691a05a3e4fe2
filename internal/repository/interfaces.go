// Package repository 定义服务器记录与订阅原文的存取接口。
package repository

import (
	"context"

	"github.com/creamcroissant/sub2xray/internal/link"
)

// SavedRecord 描述一次保存的结果。
type SavedRecord struct {
	Index int
	Path  string
	Note  string
}

// ServerRepository 定义服务器记录的数据访问方法。
type ServerRepository interface {
	// SaveRecords 按解码顺序保存记录，序号从 1 开始。
	SaveRecords(ctx context.Context, records []link.ServerRecord) ([]SavedRecord, error)
	LoadRecord(ctx context.Context, path string) (link.ServerRecord, error)
	LoadIndex(ctx context.Context, index int) (link.ServerRecord, error)
	List(ctx context.Context) ([]link.ServerRecord, error)
}

// SubscriptionRepository 保存最近一次拉取的订阅原文。
type SubscriptionRepository interface {
	SaveRaw(ctx context.Context, data []byte) (string, error)
	LoadRaw(ctx context.Context) ([]byte, error)
}
