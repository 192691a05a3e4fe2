package link

import (
	"fmt"
	"net/url"
	"strings"
)

// decodeShadowsocks 支持两种 SIP002 之前的写法：
//
//	ss://base64(method:password@addr:port)#note
//	ss://base64(method:password)@addr:port#note
//
// 先尝试第一种，失败后回退到第二种。
func decodeShadowsocks(body string) (ServerRecord, error) {
	header, fragment, _ := strings.Cut(body, "#")

	if rec, ok := decodeShadowsocksWhole(header, fragment); ok {
		return rec, nil
	}
	return decodeShadowsocksUserinfo(body, header, fragment)
}

func decodeShadowsocksWhole(header, fragment string) (ServerRecord, bool) {
	plain, err := decodeBase64(header)
	if err != nil {
		return ServerRecord{}, false
	}
	parts := splitAny(plain, ":@")
	if len(parts) != 4 {
		return ServerRecord{}, false
	}
	rec := ServerRecord{
		Protocol: ProtocolShadowsocks,
		Method:   parts[0],
		UUID:     parts[1],
		Addr:     parts[2],
		Port:     parts[3],
		Note:     SanitizeNote(fragment),
	}
	if requireEndpoint(ProtocolShadowsocks, header, rec.UUID, rec.Addr, rec.Port) != nil {
		return ServerRecord{}, false
	}
	return rec, true
}

func decodeShadowsocksUserinfo(body, header, fragment string) (ServerRecord, error) {
	parts := splitAny(header, ":@")
	if len(parts) != 3 {
		return ServerRecord{}, decodeErr(ProtocolShadowsocks, body, "", fmt.Errorf("expected userinfo@addr:port, got %d segments", len(parts)))
	}

	userinfo, err := decodeBase64(parts[0])
	if err != nil {
		return ServerRecord{}, decodeErr(ProtocolShadowsocks, body, "userinfo", err)
	}
	method, password, ok := strings.Cut(userinfo, ":")
	if !ok {
		return ServerRecord{}, decodeErr(ProtocolShadowsocks, body, "userinfo", fmt.Errorf("missing method:password separator"))
	}

	note, err := url.PathUnescape(fragment)
	if err != nil {
		note = fragment
	}

	rec := ServerRecord{
		Protocol: ProtocolShadowsocks,
		Method:   method,
		UUID:     password,
		Addr:     parts[1],
		Port:     parts[2],
		Note:     SanitizeNote(note),
	}
	if err := requireEndpoint(ProtocolShadowsocks, body, rec.UUID, rec.Addr, rec.Port); err != nil {
		return ServerRecord{}, err
	}
	return rec, nil
}
