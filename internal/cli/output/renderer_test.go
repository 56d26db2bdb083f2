package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEffectiveMode(t *testing.T) {
	tests := []struct {
		mode Mode
		want Mode
	}{
		{mode: "", want: ModeMarkdown},
		{mode: ModeAuto, want: ModeMarkdown},
		{mode: ModeText, want: ModeText},
		{mode: ModeJSON, want: ModeJSON},
		{mode: ModeYAML, want: ModeYAML},
	}
	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			r := NewRenderer(&bytes.Buffer{}, &bytes.Buffer{}, tt.mode)
			assert.False(t, r.IsTTY())
			assert.Equal(t, tt.want, r.EffectiveMode())
		})
	}
}

func TestRenderer_PlainWhenNotTerminal(t *testing.T) {
	var out bytes.Buffer
	r := NewRenderer(&out, &bytes.Buffer{}, ModeText)

	r.Header(1, "Title")
	r.KeyValue("Version", "1.0.0")
	r.Success("done")

	assert.Equal(t, "Title\n  Version: 1.0.0\n✓ done\n", out.String())
	assert.NotContains(t, out.String(), "\x1b[", "no escape sequences")
}

func TestRenderer_Warning(t *testing.T) {
	var out, errOut bytes.Buffer
	r := NewRenderer(&out, &errOut, ModeText)
	r.Warning("careful")
	assert.Empty(t, out.String())
	assert.Equal(t, "! careful\n", errOut.String())
}

func TestRenderer_Table(t *testing.T) {
	t.Run("markdown", func(t *testing.T) {
		var out bytes.Buffer
		r := NewRenderer(&out, &bytes.Buffer{}, ModeMarkdown)
		r.Table([]string{"Key", "Value"}, [][]string{{"commit", "abc"}})
		assert.Contains(t, out.String(), "| Key | Value |")
		assert.Contains(t, out.String(), "| commit | abc |")
	})

	t.Run("text", func(t *testing.T) {
		var out bytes.Buffer
		r := NewRenderer(&out, &bytes.Buffer{}, ModeText)
		r.Table([]string{"Key", "Value"}, [][]string{{"commit", "abc"}})
		assert.Contains(t, out.String(), "┌")
		assert.Contains(t, out.String(), "commit")
	})
}

func TestRenderer_Structured(t *testing.T) {
	v := ShowOutput{Project: "com.example:app", Version: "1.0.0"}

	t.Run("json", func(t *testing.T) {
		var out bytes.Buffer
		ok, err := NewRenderer(&out, &bytes.Buffer{}, ModeJSON).Structured(v)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.JSONEq(t, `{"project":"com.example:app","version":"1.0.0"}`, out.String())
	})

	t.Run("yaml", func(t *testing.T) {
		var out bytes.Buffer
		ok, err := NewRenderer(&out, &bytes.Buffer{}, ModeYAML).Structured(v)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.YAMLEq(t, "project: com.example:app\nversion: 1.0.0\n", out.String())
	})

	t.Run("text", func(t *testing.T) {
		var out bytes.Buffer
		ok, err := NewRenderer(&out, &bytes.Buffer{}, ModeText).Structured(v)
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Empty(t, out.String())
	})
}

func TestFormatHelpers(t *testing.T) {
	assert.Equal(t, "## Match", FormatHeader(2, "Match"))
	assert.Equal(t, "- **Ref:** main", FormatKeyValue("Ref", "main"))
	assert.True(t, strings.HasPrefix(FormatCode("x"), "`"))
}

func TestRenderer_StyledOnTerminal(t *testing.T) {
	var out bytes.Buffer
	r := NewRendererWithTTY(&out, &bytes.Buffer{}, true, ModeAuto)
	assert.True(t, r.IsTTY())
	assert.Equal(t, ModeText, r.EffectiveMode())

	r.Header(1, "Title")
	assert.Contains(t, out.String(), "\x1b[", "styled output")
	assert.Contains(t, out.String(), "Title")
}
