package link

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeEnvelopeRoundTrip(t *testing.T) {
	cases := [][]string{
		{"ss://abc#1"},
		{"vmess://eyJ9", "trojan://a@b:1?x=y#z", "vless://u@h:2?k=v#n"},
		{"a", "b", "c", "d"},
	}
	for _, links := range cases {
		raw := base64.StdEncoding.EncodeToString([]byte(strings.Join(links, "\n")))
		got, err := DecodeEnvelope([]byte(raw))
		require.NoError(t, err)
		assert.Equal(t, links, got)
	}
}

func TestDecodeEnvelopeLenient(t *testing.T) {
	text := "trojan://a@b:1?x=y#z\nss://abc#1\n"

	std := base64.StdEncoding.EncodeToString([]byte(text))
	wrapped := std[:10] + "\n" + std[10:] + "\r\n"
	got, err := DecodeEnvelope([]byte(wrapped))
	require.NoError(t, err)
	assert.Equal(t, []string{"trojan://a@b:1?x=y#z", "ss://abc#1"}, got)

	raw := base64.RawURLEncoding.EncodeToString([]byte(text))
	got, err = DecodeEnvelope([]byte(raw))
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestDecodeEnvelopeEmpty(t *testing.T) {
	got, err := DecodeEnvelope([]byte(base64.StdEncoding.EncodeToString([]byte("  \n"))))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestDecodeEnvelopeErrors(t *testing.T) {
	_, err := DecodeEnvelope([]byte("this is not base64!"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEnvelope)

	invalidUTF8 := base64.StdEncoding.EncodeToString([]byte{0xff, 0xfe, 0xfd})
	_, err = DecodeEnvelope([]byte(invalidUTF8))
	var envErr *EnvelopeError
	require.ErrorAs(t, err, &envErr)
}

func TestSanitizeNote(t *testing.T) {
	assert.Equal(t, "Node  1", SanitizeNote("Node 🚀 1"))
	assert.Equal(t, "香港 01", SanitizeNote("🇭🇰香港 01"))
	assert.Equal(t, "plain", SanitizeNote("plain"))
	assert.Equal(t, "", SanitizeNote(""))
	assert.Equal(t, "✈ kept", SanitizeNote("✈ kept"))
}

func TestSanitizeEscapedNote(t *testing.T) {
	assert.Equal(t, "HK  01", SanitizeEscapedNote(`"HK \ud83d\ude80 01"`))
	assert.Equal(t, "日本", SanitizeEscapedNote(`"日本"`))
	assert.Equal(t, "raw 🚀", SanitizeEscapedNote(`"raw 🚀"`))
	assert.Equal(t, "42", SanitizeEscapedNote(`42`))
	assert.Equal(t, `C:\ud83d-dir`, SanitizeEscapedNote(`"C:\\ud83d-dir"`))
	assert.Equal(t, `a\b`, SanitizeEscapedNote(`"a\\\ud83d\ude80b"`))
}
