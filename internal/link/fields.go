package link

import (
	"fmt"
	"net/url"
	"strings"
)

// splitAny 按 seps 中任意字符切分，保留空段（与 strings.FieldsFunc 不同）。
func splitAny(s, seps string) []string {
	parts := make([]string, 0, 5)
	start := 0
	for i := 0; i < len(s); i++ {
		if strings.IndexByte(seps, s[i]) >= 0 {
			parts = append(parts, s[start:i])
			start = i + 1
		}
	}
	return append(parts, s[start:])
}

// queryLink 是 trojan/hysteria2/vless 共用的 uuid@addr:port?query#note 结构。
type queryLink struct {
	UUID   string
	Addr   string
	Port   string
	Params url.Values
	Note   string
}

func parseQueryLink(protocol ProtocolID, body string) (queryLink, error) {
	parts := splitAny(body, "@:?#")
	if len(parts) != 5 {
		return queryLink{}, decodeErr(protocol, body, "", fmt.Errorf("expected 5 segments split on @:?#, got %d", len(parts)))
	}

	// 与常见客户端一致：非法转义不影响其余参数。
	params, _ := url.ParseQuery(parts[3])
	for k, vs := range params {
		if len(vs) == 0 || vs[0] == "" {
			delete(params, k)
		}
	}

	note, err := url.PathUnescape(parts[4])
	if err != nil {
		note = parts[4]
	}

	ql := queryLink{
		UUID:   parts[0],
		Addr:   parts[1],
		Port:   parts[2],
		Params: params,
		Note:   SanitizeNote(note),
	}
	if err := requireEndpoint(protocol, body, ql.UUID, ql.Addr, ql.Port); err != nil {
		return queryLink{}, err
	}
	return ql, nil
}

// requireEndpoint 校验 uuid、addr、port 均非空。
func requireEndpoint(protocol ProtocolID, link, uuid, addr, port string) error {
	switch {
	case uuid == "":
		return decodeErr(protocol, link, "uuid", fmt.Errorf("missing value"))
	case addr == "":
		return decodeErr(protocol, link, "addr", fmt.Errorf("missing value"))
	case port == "":
		return decodeErr(protocol, link, "port", fmt.Errorf("missing value"))
	}
	return nil
}

// flagParam 读取 "0"/"1" 布尔参数；缺省视为 "0"，其它取值报错。
func flagParam(protocol ProtocolID, link string, params url.Values, key string) (bool, error) {
	raw := params.Get(key)
	if raw == "" {
		raw = "0"
	}
	switch raw {
	case "0":
		return false, nil
	case "1":
		return true, nil
	}
	return false, decodeErr(protocol, link, key, fmt.Errorf("expected 0 or 1, got %q", raw))
}
