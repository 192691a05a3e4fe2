package main

import (
	"bytes"
	"encoding/base64"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestDecodeThenBuild(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	chdir(t, dir)

	rulesPath := filepath.Join(dir, "rules.json")
	outdir := filepath.Join(dir, "servers")

	_, err := execute(t, "decode", "--rules", rulesPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--subscribe or --rawcontent")

	raw := filepath.Join(dir, "subscribe.data")
	links := strings.Join([]string{
		"trojan://pw@t.example.com:443?sni=t.example.com#JP",
		"tuic://x@y:1#skip",
		"hysteria2://k@h.example.com:8443?insecure=1#HY",
	}, "\n")
	require.NoError(t, os.WriteFile(raw, []byte(base64.StdEncoding.EncodeToString([]byte(links))), 0o644))

	out, err := execute(t, "decode", "-r", raw, "-o", outdir, "--rules", rulesPath, "--log-level", "error")
	require.NoError(t, err)
	assert.Contains(t, out, "Output file saved at")
	assert.Contains(t, out, "(01: JP)")
	assert.Contains(t, out, "(02: HY)")
	assert.Contains(t, out, "1 link(s) skipped")
	assert.Contains(t, out, "Subscribe conversion:")
	assert.Contains(t, out, "Completed")
	assert.NotContains(t, out, "Writing subscribe data")
	assert.FileExists(t, filepath.Join(outdir, "server01.json"))
	assert.FileExists(t, filepath.Join(outdir, "server02.json"))

	cfgPath := filepath.Join(dir, "config.json")
	out, err = execute(t, "build", "-i", filepath.Join(outdir, "server01.json"), "-o", cfgPath,
		"--rules", rulesPath, "--http_port", "20000", "--allow_lan")
	require.NoError(t, err)
	assert.Contains(t, out, "Loading")
	assert.Contains(t, out, "JP")
	assert.Contains(t, out, rulesPath)
	assert.Contains(t, out, "please modify "+rulesPath)
	assert.FileExists(t, rulesPath)

	doc, err := os.ReadFile(cfgPath)
	require.NoError(t, err)
	assert.Equal(t, "trojan", gjson.GetBytes(doc, "outbounds.0.protocol").String())
	assert.Equal(t, "0.0.0.0", gjson.GetBytes(doc, "inbounds.0.listen").String())
	assert.Equal(t, int64(20001), gjson.GetBytes(doc, "inbounds.1.port").Int())

	_, err = execute(t, "build", "-i", filepath.Join(outdir, "server02.json"), "-o", cfgPath, "--rules", rulesPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported server protocol: hysteria2")

	out, err = execute(t, "rules", "show", "--rules", rulesPath)
	require.NoError(t, err)
	assert.Contains(t, out, "proxy_1st")

	_, err = execute(t, "rules", "reset", "--rules", rulesPath)
	assert.Error(t, err)
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "sub2xray dev")
}

func TestDecodeHelpListsSchemes(t *testing.T) {
	for _, scheme := range []string{"ss://", "vmess://", "trojan://", "hysteria2://", "vless://"} {
		assert.Contains(t, decodeCmd.Long, scheme)
	}
}

// chdir changes the working directory for the duration of the test
// (equivalent of testing.T.Chdir, which requires Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}
