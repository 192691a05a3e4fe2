package link

import (
	"bytes"
	"encoding/base64"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func b64(s string) string {
	return base64.StdEncoding.EncodeToString([]byte(s))
}

func quietDecoder(opts ...Option) *Decoder {
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	return NewDecoder(append([]Option{WithLogger(logger)}, opts...)...)
}

func TestDecodeShadowsocks(t *testing.T) {
	tests := []struct {
		name string
		link string
		want ServerRecord
	}{
		{
			name: "whole body base64",
			link: "ss://" + b64("aes-256-gcm:secret@1.2.3.4:8388") + "#HK%2001",
			want: ServerRecord{
				Protocol: ProtocolShadowsocks,
				Method:   "aes-256-gcm",
				UUID:     "secret",
				Addr:     "1.2.3.4",
				Port:     "8388",
				Note:     "HK%2001",
			},
		},
		{
			name: "userinfo base64",
			link: "ss://" + b64("chacha20-ietf-poly1305:pw") + "@ss.example.com:8389#Node%20%F0%9F%9A%80%201",
			want: ServerRecord{
				Protocol: ProtocolShadowsocks,
				Method:   "chacha20-ietf-poly1305",
				UUID:     "pw",
				Addr:     "ss.example.com",
				Port:     "8389",
				Note:     "Node  1",
			},
		},
		{
			name: "userinfo with colon in password",
			link: "ss://" + b64("aes-128-gcm:p:w") + "@h.example.com:1#n",
			want: ServerRecord{
				Protocol: ProtocolShadowsocks,
				Method:   "aes-128-gcm",
				UUID:     "p:w",
				Addr:     "h.example.com",
				Port:     "1",
				Note:     "n",
			},
		},
		{
			name: "carriage return stripped",
			link: "ss://" + b64("aes-256-gcm:secret@1.2.3.4:8388") + "#a\r",
			want: ServerRecord{
				Protocol: ProtocolShadowsocks,
				Method:   "aes-256-gcm",
				UUID:     "secret",
				Addr:     "1.2.3.4",
				Port:     "8388",
				Note:     "a",
			},
		},
	}

	d := quietDecoder()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := d.Decode(tt.link)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodeShadowsocksErrors(t *testing.T) {
	d := quietDecoder()

	_, err := d.Decode("ss://not-base64!!@host:1#x")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrLinkDecode)

	_, err = d.Decode("ss://" + b64("no-separator") + "@host:1#x")
	var lde *LinkDecodeError
	require.ErrorAs(t, err, &lde)
	assert.Equal(t, "userinfo", lde.Field)
	assert.Equal(t, ProtocolShadowsocks, lde.Protocol)
	assert.True(t, strings.HasPrefix(lde.Link, "ss://"))
}

func TestDecodeVMess(t *testing.T) {
	d := quietDecoder()

	payload := `{"v":"2","ps":"HK \ud83d\ude80 01","add":"hk.example.com","port":443,"id":"b831381d-6324-4d53-ad4f-8cda48b30811","net":"ws"}`
	got, err := d.Decode("vmess://" + b64(payload))
	require.NoError(t, err)
	assert.Equal(t, ServerRecord{
		Protocol: ProtocolVMess,
		UUID:     "b831381d-6324-4d53-ad4f-8cda48b30811",
		Addr:     "hk.example.com",
		Port:     "443",
		Note:     "HK  01",
	}, got)

	payload = `{"ps":"JP","add":"jp.example.com","port":"8443","id":"abc"}`
	got, err = d.Decode("vmess://" + base64.RawURLEncoding.EncodeToString([]byte(payload)))
	require.NoError(t, err)
	assert.Equal(t, "8443", got.Port)
	assert.Equal(t, "JP", got.Note)

	payload = `{"ps":"C:\\ud83d-dir","add":"w.example.com","port":"1","id":"abc"}`
	got, err = d.Decode("vmess://" + b64(payload))
	require.NoError(t, err)
	assert.Equal(t, `C:\ud83d-dir`, got.Note)
}

func TestDecodeVMessRejectsNonJSON(t *testing.T) {
	d := quietDecoder()

	cases := map[string]string{
		"code expression": "__import__('os')",
		"array":           `["a"]`,
		"missing id":      `{"ps":"x","add":"a.com","port":"1"}`,
		"missing ps":      `{"id":"u","add":"a.com","port":"1"}`,
	}
	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := d.Decode("vmess://" + b64(payload))
			assert.ErrorIs(t, err, ErrLinkDecode)
		})
	}
}

func TestDecodeTrojan(t *testing.T) {
	d := quietDecoder()

	got, err := d.Decode("trojan://uuid1@example.com:443?allowInsecure=1&peer=foo&sni=bar#My%20Node")
	require.NoError(t, err)
	assert.Equal(t, ServerRecord{
		Protocol: ProtocolTrojan,
		UUID:     "uuid1",
		Addr:     "example.com",
		Port:     "443",
		Note:     "My Node",
		Options: map[string]any{
			"allowInsecure": true,
			"peer":          "foo",
			"sni":           "bar",
		},
	}, got)
}

func TestDecodeTrojanAllowInsecure(t *testing.T) {
	d := quietDecoder()

	got, err := d.Decode("trojan://pw@example.com:443?sni=bar#n")
	require.NoError(t, err)
	assert.Equal(t, false, got.Options["allowInsecure"])

	got, err = d.Decode("trojan://pw@example.com:443?allowInsecure=&sni=bar#n")
	require.NoError(t, err)
	assert.Equal(t, false, got.Options["allowInsecure"])

	got, err = d.Decode("trojan://pw@example.com:443?allowInsecure=1&allowInsecure=0#n")
	require.NoError(t, err)
	assert.Equal(t, true, got.Options["allowInsecure"])

	_, err = d.Decode("trojan://pw@example.com:443?allowInsecure=2#n")
	var lde *LinkDecodeError
	require.ErrorAs(t, err, &lde)
	assert.Equal(t, "allowInsecure", lde.Field)
}

func TestDecodeHysteria2(t *testing.T) {
	d := quietDecoder()

	got, err := d.Decode("hysteria2://auth-key@hy.example.com:8443?insecure=1&security=tls&sni=hy.example.com#%F0%9F%87%AF%F0%9F%87%B5%20Tokyo")
	require.NoError(t, err)
	assert.Equal(t, ServerRecord{
		Protocol: ProtocolHysteria2,
		UUID:     "auth-key",
		Addr:     "hy.example.com",
		Port:     "8443",
		Note:     " Tokyo",
		Options: map[string]any{
			"insecure": true,
			"security": "tls",
			"sni":      "hy.example.com",
		},
	}, got)

	_, err = d.Decode("hysteria2://auth@h.example.com:1?insecure=yes#n")
	assert.ErrorIs(t, err, ErrLinkDecode)
}

func TestDecodeVLESS(t *testing.T) {
	d := quietDecoder()

	got, err := d.Decode("vless://id-1@v.example.com:443?encryption=none&security=reality&sni=a.com&pbk=KEY&port=1#VL")
	require.NoError(t, err)
	assert.Equal(t, ProtocolVLESS, got.Protocol)
	assert.Equal(t, "443", got.Port)
	assert.Equal(t, "VL", got.Note)
	assert.Empty(t, got.Method)
	assert.Equal(t, map[string]any{
		"encryption": "none",
		"security":   "reality",
		"sni":        "a.com",
		"pbk":        "KEY",
	}, got.Options)

	got, err = d.Decode("vless://id-1@v.example.com:443?method=none#VL")
	require.NoError(t, err)
	assert.Equal(t, "none", got.Method)
	assert.NotContains(t, got.Options, "method")
}

func TestDecodeQueryLinkSegmentCount(t *testing.T) {
	d := quietDecoder()

	for _, link := range []string{
		"trojan://pw@example.com:443#no-query",
		"hysteria2://pw@example.com:443?a=b#n:extra",
		"vless://pw@[::1]:443?a=b#n",
		"trojan://@example.com:443?a=b#n",
	} {
		t.Run(link, func(t *testing.T) {
			_, err := d.Decode(link)
			assert.ErrorIs(t, err, ErrLinkDecode)
		})
	}
}

func TestDecodeUnknownScheme(t *testing.T) {
	d := quietDecoder()

	_, err := d.Decode("tuic://uuid:pw@example.com:443#x")
	var unknown *UnknownProtocolError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "tuic", unknown.Scheme)
	assert.Equal(t, `\x74\x75\x69\x63\x3a\x2f\x2f`, unknown.Signature())
	assert.True(t, errors.Is(err, ErrUnknownProtocol))
}

func TestDecodeAllIsolatesFailures(t *testing.T) {
	var logs bytes.Buffer
	d := NewDecoder(WithLogger(slog.New(slog.NewTextHandler(&logs, nil))))

	links := []string{
		"trojan://a@one.example.com:443?sni=x#One",
		"tuic://x@y:1#z",
		"trojan://broken@example.com:443",
		"",
		"hysteria2://b@two.example.com:8443?insecure=0#Two",
	}
	res, err := d.DecodeAll(links)
	require.NoError(t, err)
	require.Len(t, res.Records, 2)
	assert.Equal(t, "One", res.Records[0].Note)
	assert.Equal(t, "Two", res.Records[1].Note)
	require.Len(t, res.Failures, 2)
	assert.ErrorIs(t, res.Failures[0], ErrUnknownProtocol)
	assert.ErrorIs(t, res.Failures[1], ErrLinkDecode)
	assert.Contains(t, logs.String(), `\x74\x75\x69\x63`)
}

func TestDecodeAllFailFast(t *testing.T) {
	d := quietDecoder(WithFailFast(true))

	res, err := d.DecodeAll([]string{
		"tuic://x@y:1#z",
		"trojan://a@one.example.com:443?sni=x#One",
		"trojan://broken@example.com:443",
		"trojan://c@three.example.com:443?sni=x#Three",
	})
	require.ErrorIs(t, err, ErrLinkDecode)
	require.Len(t, res.Records, 1)
	assert.Equal(t, "One", res.Records[0].Note)
}

func TestSchemesOrder(t *testing.T) {
	assert.Equal(t, []string{"ss://", "vmess://", "trojan://", "hysteria2://", "vless://"}, Schemes())
}
