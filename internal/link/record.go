// Package link decodes proxy subscription links into normalized server records.
package link

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// ProtocolID 标识记录由哪个编解码器产生，取值集合是封闭的。
type ProtocolID string

const (
	ProtocolShadowsocks ProtocolID = "shadowsocks"
	ProtocolVMess       ProtocolID = "vmess"
	ProtocolTrojan      ProtocolID = "trojan"
	ProtocolHysteria2   ProtocolID = "hysteria2"
	ProtocolVLESS       ProtocolID = "vless"
)

// Known 判断协议标识是否属于已注册的编解码器。
func (p ProtocolID) Known() bool {
	switch p {
	case ProtocolShadowsocks, ProtocolVMess, ProtocolTrojan, ProtocolHysteria2, ProtocolVLESS:
		return true
	}
	return false
}

// ServerRecord 是单条链接解码后的统一结构。
type ServerRecord struct {
	UUID     string         // 密码、UUID 或密钥
	Addr     string         // 服务器地址
	Port     string         // 端口（字符串形式，解码阶段不做范围校验）
	Protocol ProtocolID     // 协议标识
	Method   string         // 加密方式，仅部分协议携带
	Note     string         // 已清理的显示名称
	Options  map[string]any // 协议相关的额外字段
	Index    int            // 持久化时分配的序号，0 表示未分配
}

// reservedKeys 是记录文档中的核心字段，Options 不能覆盖它们。
var reservedKeys = map[string]struct{}{
	"uuid":     {},
	"addr":     {},
	"port":     {},
	"protocol": {},
	"method":   {},
	"note":     {},
	"index":    {},
}

// IsReservedKey reports whether key names a core record field.
func IsReservedKey(key string) bool {
	_, ok := reservedKeys[key]
	return ok
}

// Option returns the string form of an extra field, or "" when absent.
func (r ServerRecord) Option(key string) string {
	v, ok := r.Options[key]
	if !ok || v == nil {
		return ""
	}
	switch val := v.(type) {
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	default:
		return fmt.Sprint(val)
	}
}

// BoolOption returns a boolean extra field; non-boolean values read as false.
func (r ServerRecord) BoolOption(key string) bool {
	v, ok := r.Options[key].(bool)
	return ok && v
}

// MarshalJSON 输出与原始工具兼容的扁平文档。
func (r ServerRecord) MarshalJSON() ([]byte, error) {
	doc := make(map[string]any, len(r.Options)+7)
	for k, v := range r.Options {
		if IsReservedKey(k) {
			continue
		}
		doc[k] = v
	}
	doc["uuid"] = r.UUID
	doc["port"] = r.Port
	doc["addr"] = r.Addr
	doc["protocol"] = string(r.Protocol)
	doc["note"] = r.Note
	if r.Method != "" {
		doc["method"] = r.Method
	}
	if r.Index > 0 {
		doc["index"] = r.Index
	}
	return json.Marshal(doc)
}

// UnmarshalJSON 读取扁平文档，未知字段全部归入 Options。
func (r *ServerRecord) UnmarshalJSON(data []byte) error {
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}

	out := ServerRecord{}
	for k, v := range doc {
		switch k {
		case "uuid":
			out.UUID = scalarString(v)
		case "addr":
			out.Addr = scalarString(v)
		case "port":
			out.Port = scalarString(v)
		case "protocol":
			out.Protocol = ProtocolID(scalarString(v))
		case "method":
			out.Method = scalarString(v)
		case "note":
			out.Note = scalarString(v)
		case "index":
			if n, ok := v.(float64); ok {
				out.Index = int(n)
			}
		default:
			if out.Options == nil {
				out.Options = make(map[string]any)
			}
			out.Options[k] = v
		}
	}
	*r = out
	return nil
}

func scalarString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		return fmt.Sprint(val)
	}
}
