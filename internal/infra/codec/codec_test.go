package codec

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForFormat(t *testing.T) {
	cases := []struct {
		format string
		want   string
	}{
		{"json", "json"},
		{"JSON", "json"},
		{"yaml", "yaml"},
		{"yml", "yaml"},
		{"toml", "toml"},
	}

	for _, tc := range cases {
		t.Run(tc.format, func(t *testing.T) {
			c, err := ForFormat(tc.format)
			require.NoError(t, err)
			assert.Equal(t, tc.want, c.Format())
		})
	}
}

func TestForFormat_Unsupported(t *testing.T) {
	_, err := ForFormat("xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported config format")
}

func TestForPath(t *testing.T) {
	c, err := ForPath("/etc/configsync/bootstrap.yaml")
	require.NoError(t, err)
	assert.Equal(t, "yaml", c.Format())

	_, err = ForPath("/etc/configsync/bootstrap")
	assert.Error(t, err)
}

func TestJSONCodec_RoundTrip(t *testing.T) {
	c, err := ForFormat("json")
	require.NoError(t, err)

	data, err := c.Serialize(map[string]any{
		"app": map[string]any{"log_level": "info", "workers": 4},
	})
	require.NoError(t, err)

	parsed, err := c.Parse(data)
	require.NoError(t, err)
	app, ok := parsed["app"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "info", app["log_level"])
}

func TestJSONCodec_ParseInvalid(t *testing.T) {
	c, _ := ForFormat("json")
	_, err := c.Parse([]byte(`{broken`))
	assert.Error(t, err)
}

func TestYAMLCodec_RoundTrip(t *testing.T) {
	c, err := ForFormat("yaml")
	require.NoError(t, err)

	parsed, err := c.Parse([]byte("app:\n  log_level: info\n  maintenance_mode: false\n"))
	require.NoError(t, err)
	app, ok := parsed["app"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "info", app["log_level"])
	assert.Equal(t, false, app["maintenance_mode"])

	out, err := c.Serialize(parsed)
	require.NoError(t, err)
	assert.Contains(t, string(out), "log_level: info")
}

func TestTOMLCodec_RoundTrip(t *testing.T) {
	c, err := ForFormat("toml")
	require.NoError(t, err)

	parsed, err := c.Parse([]byte("[app]\nlog_level = \"info\"\n"))
	require.NoError(t, err)
	app, ok := parsed["app"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "info", app["log_level"])

	out, err := c.Serialize(parsed)
	require.NoError(t, err)
	assert.Contains(t, string(out), `log_level = 'info'`)
}

func TestLoadFile_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bootstrap.yaml")
	require.NoError(t, os.WriteFile(path, []byte("app:\n  log_level: info\n"), 0o644))

	parsed, err := LoadFile(path)

	require.NoError(t, err)
	app, ok := parsed["app"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "info", app["log_level"])
}

func TestLoadFile_MissingFile(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoadFile_UnknownExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bootstrap.conf")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	_, err := LoadFile(path)
	assert.Error(t, err)
}
