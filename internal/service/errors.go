package service

import "errors"

var (
	// ErrSourceRequired 表示订阅地址与原文必须且只能提供一个。
	ErrSourceRequired = errors.New("service: exactly one of subscription url or raw content is required")
	// ErrNoSubscription 表示 serve 模式既没有配置订阅地址，也没有本地缓存。
	ErrNoSubscription = errors.New("service: no subscription configured")
	// ErrNotFound 表示请求的服务器记录不存在。
	ErrNotFound = errors.New("service: server not found")
)
