package rules

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadCreatesDefaultJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.json")
	store := NewStore(path, nil)

	rs, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, Default(), rs)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var raw map[string]map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Contains(t, raw, "direct_1st")
	assert.Contains(t, raw, "proxy_3rd")
	assert.Equal(t, "e.g. domain", raw["direct_1st"]["Note"])
}

func TestLoadExistingFileIsReadOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.json")
	content := `{
  "direct_1st": {"domain": ["domain:a.com", "domain:a.com"]},
  "proxy_1st": {"domain": []},
  "direct_2nd": {"domain": ["d"], "source": []},
  "proxy_2nd": {"domain": ["p"], "source": ["10.0.0.2"]},
  "proxy_3rd": {"source": ["192.168.2.2"]}
}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	rs, err := NewStore(path, nil).Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"domain:a.com", "domain:a.com"}, rs.DirectFirst.Domain)
	assert.Equal(t, []string{"10.0.0.2"}, rs.ProxySecond.Source)
	assert.Equal(t, []string{"192.168.2.2"}, rs.ProxyThird.Source)

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, content, string(after))
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "rules.yaml")
	store := NewStore(path, nil)

	rs, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, Default().ProxyFirst.Domain, rs.ProxyFirst.Domain)

	require.NoError(t, os.WriteFile(path, []byte("proxy_3rd:\n  source:\n    - 10.1.1.1\n"), 0o644))
	rs, err = store.Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"10.1.1.1"}, rs.ProxyThird.Source)
	assert.Empty(t, rs.DirectFirst.Domain)
}

func TestLoadInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := NewStore(path, nil).Load()
	assert.ErrorIs(t, err, ErrInvalidRules)
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	got, err := ExpandHome("~/.v2rules.json")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".v2rules.json"), got)

	got, err = ExpandHome("/etc/rules.json")
	require.NoError(t, err)
	assert.Equal(t, "/etc/rules.json", got)
}
