package config

import (
	"testing"

	glyphcerrors "github.com/glyphlang/glyphc/internal/errors"
	"github.com/stretchr/testify/require"
)

func TestLoad_JSON(t *testing.T) {
	data := []byte(`{
		"import_paths": ["./bridges"],
		"ml_module_paths": ["./lib"],
		"allow_current_dir": true,
		"stdlib_mode": "compat",
		"strict_security": true,
		"output_mode": "multi_file",
		"output_dir": "out",
		"capabilities": [
			{"type": "file.read", "resource_patterns": ["/data/**"]}
		]
	}`)
	doc, err := Load("glyph.json", data)
	require.NoError(t, err)
	require.Equal(t, []string{"./bridges"}, doc.ImportPaths)
	require.Equal(t, []string{"./lib"}, doc.MLModulePaths)
	require.True(t, doc.AllowCurrentDir)
	require.Equal(t, StdlibCompat, doc.StdlibMode)
	require.True(t, doc.StrictSecurity)
	require.Equal(t, OutputMultiFile, doc.OutputMode)
	require.Equal(t, "out", doc.OutputDir)
	require.Len(t, doc.Capabilities, 1)
	require.Equal(t, "file.read", doc.Capabilities[0].Type)
}

func TestLoad_YAML(t *testing.T) {
	data := []byte("ml_module_paths:\n  - ./lib\nallow_current_dir: false\nstdlib_mode: native\n")
	doc, err := Load("glyph.yaml", data)
	require.NoError(t, err)
	require.Equal(t, []string{"./lib"}, doc.MLModulePaths)
	require.Equal(t, StdlibNative, doc.StdlibMode)
}

func TestLoad_TOML(t *testing.T) {
	data := []byte("ml_module_paths = [\"./lib\"]\nallow_current_dir = true\nstdlib_mode = \"compat\"\n")
	doc, err := Load("glyph.toml", data)
	require.NoError(t, err)
	require.Equal(t, []string{"./lib"}, doc.MLModulePaths)
	require.True(t, doc.AllowCurrentDir)
	require.Equal(t, StdlibCompat, doc.StdlibMode)
}

func TestLoad_DefaultsWhenEmpty(t *testing.T) {
	doc, err := Load("glyph.json", []byte(`{}`))
	require.NoError(t, err)
	require.Equal(t, StdlibNative, doc.StdlibMode)
	require.Equal(t, OutputSingleFile, doc.OutputMode)
}

func TestLoad_RejectsUnknownKey(t *testing.T) {
	_, err := Load("glyph.json", []byte(`{"not_a_real_key": true}`))
	require.Error(t, err)
	rep, ok := glyphcerrors.AsReport(err)
	require.True(t, ok)
	require.Equal(t, glyphcerrors.CFG001, rep.Code)
}

func TestLoad_RejectsMalformedJSON(t *testing.T) {
	_, err := Load("glyph.json", []byte(`{not json`))
	require.Error(t, err)
	rep, ok := glyphcerrors.AsReport(err)
	require.True(t, ok)
	require.Equal(t, glyphcerrors.CFG002, rep.Code)
}

func TestLoad_RejectsUnknownExtension(t *testing.T) {
	_, err := Load("glyph.ini", []byte(`anything`))
	require.Error(t, err)
	rep, ok := glyphcerrors.AsReport(err)
	require.True(t, ok)
	require.Equal(t, glyphcerrors.CFG002, rep.Code)
}

func TestDocument_TokensMintsCapabilityTokens(t *testing.T) {
	maxUsage := uint64(3)
	doc := &Document{
		Capabilities: []CapabilityGrant{
			{Type: "file.read", ResourcePatterns: []string{"/data/*"}, MaxUsage: &maxUsage},
		},
	}
	tokens := doc.Tokens()
	require.Len(t, tokens, 1)
	require.Equal(t, "file.read", tokens[0].CapabilityType)
	require.True(t, tokens[0].Matches("file.read", "/data/x", nil))
	require.False(t, tokens[0].Exhausted())
}
