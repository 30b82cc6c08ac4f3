package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	edn "github.com/KimNorgaard/go-edn"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	require.Equal(t, "passthrough", cfg.Fallback)
	require.NoError(t, cfg.Validate())

	opts, err := cfg.Options()
	require.NoError(t, err)
	doc, err := edn.ReadString("#x 1/2", opts...)
	require.NoError(t, err)
	defer doc.Release()
	require.Equal(t, "#x 1/2", doc.Value().String())
}

func TestParse(t *testing.T) {
	cfg, err := Parse([]byte(`
fallback: unwrap
max_depth: 3
max_arena_bytes: 1048576
builtin_readers: true
extensions:
  ratios: false
  octal: true
  digit_separators: true
  namespaced_maps: true
  metadata: true
`))
	require.NoError(t, err)
	require.Equal(t, "unwrap", cfg.Fallback)
	require.Equal(t, 3, cfg.MaxDepth)
	require.Equal(t, 1<<20, cfg.MaxArenaBytes)
	require.True(t, cfg.BuiltinReaders)
	require.NotNil(t, cfg.Extensions.Ratios)
	require.False(t, *cfg.Extensions.Ratios)
	require.True(t, cfg.Extensions.Octal)

	opts, err := cfg.Options()
	require.NoError(t, err)

	read := func(in string) string {
		t.Helper()
		doc, err := edn.ReadString(in, opts...)
		require.NoError(t, err, in)
		defer doc.Release()
		return doc.Value().String()
	}
	require.Equal(t, "[8 1000000]", read("[010 1_000_000]"))
	require.Equal(t, "42", read("#unknown 42"))
	require.Equal(t, `#uuid "f81d4fae-7dec-11d0-a765-00a0c91e6bf6"`, read(`#uuid "f81d4fae-7dec-11d0-a765-00a0c91e6bf6"`))
	require.Equal(t, "{:a/b 1}", read("#:a{:b 1}"))
	require.Equal(t, "[1]", read("^:m [1]"))

	_, err = edn.ReadString("1/2", opts...)
	require.Error(t, err)
	_, err = edn.ReadString("[[[[1]]]]", opts...)
	require.ErrorIs(t, err, edn.ErrDepthExceeded)
}

func TestParseEmpty(t *testing.T) {
	cfg, err := Parse(nil)
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
}

func TestParseErrors(t *testing.T) {
	testCases := []struct {
		name, yaml, want string
	}{
		{"unknown key", "fallbak: error\n", "field fallbak not found"},
		{"unknown extension", "extensions:\n  decimals: true\n", "field decimals not found"},
		{"bad fallback", "fallback: ignore\n", `unknown fallback mode "ignore"`},
		{"negative depth", "max_depth: -1\n", "max_depth must not be negative"},
		{"negative arena", "max_arena_bytes: -5\n", "max_arena_bytes must not be negative"},
		{"wrong type", "max_depth: deep\n", "cannot unmarshal"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.yaml))
			require.Error(t, err)
			require.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "edn.yaml")
	require.NoError(t, os.WriteFile(path, []byte("fallback: error\n"), 0o644))

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	require.Equal(t, "error", cfg.Fallback)

	_, err = LoadFile(filepath.Join(dir, "missing.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("fallback: nope\n"), 0o644))
	_, err = LoadFile(bad)
	require.ErrorContains(t, err, bad)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv(EnvVar, "")
	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)

	path := filepath.Join(t.TempDir(), "edn.yaml")
	require.NoError(t, os.WriteFile(path, []byte("max_depth: 10\n"), 0o644))
	t.Setenv(EnvVar, path)
	cfg, err = Load()
	require.NoError(t, err)
	require.Equal(t, 10, cfg.MaxDepth)
}
