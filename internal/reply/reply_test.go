package reply_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ogarx/internal/reply"
)

func TestParse_Examples(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		source reply.Source
		want   string
	}{
		{"plain object", `{"a":1}`, reply.SourceDirect, `{"a":1}`},
		{"json fence", "```json\n{\"a\":1}\n```", reply.SourceJSONFence, `{"a":1}`},
		{"generic fence", "```\n{\"a\":1}\n```", reply.SourceGenericFence, `{"a":1}`},
		{"no json", "no json here", reply.SourceRawText, `{"raw_text":"no json here"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := reply.Parse(tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.source, got.Source)
			assert.Equal(t, tt.want, got.Value.Text())
		})
	}
}

func TestParse_MalformedJSONFenceIsHardFailure(t *testing.T) {
	_, err := reply.Parse("```json\nnot json\n```")
	require.Error(t, err)
	assert.ErrorIs(t, err, reply.ErrMalformedBlock)
}

func TestParse_MalformedGenericFenceIsHardFailure(t *testing.T) {
	_, err := reply.Parse("Here you go:\n```\n{\"a\": \n```")
	assert.ErrorIs(t, err, reply.ErrMalformedBlock)
}

func TestParse_FenceWithNonObjectIsFailure(t *testing.T) {
	_, err := reply.Parse("```json\n[1, 2]\n```")
	assert.ErrorIs(t, err, reply.ErrMalformedBlock)
}

func TestParse_JSONFenceWinsOverEarlierGenericFence(t *testing.T) {
	text := "```\nnot used\n```\nthen\n```json\n{\"b\": \"x\"}\n```"
	got, err := reply.Parse(text)
	require.NoError(t, err)
	assert.Equal(t, reply.SourceJSONFence, got.Source)
	assert.Equal(t, `{"b":"x"}`, got.Value.Text())
}

func TestParse_SurroundingProseIsIgnored(t *testing.T) {
	text := "Voici les données extraites :\n```json\n{\"police\": {\"numero\": \"P-123\"}}\n```\nN'hésitez pas."
	got, err := reply.Parse(text)
	require.NoError(t, err)
	police, ok := got.Value.Get("police")
	require.True(t, ok)
	numero, ok := police.Get("numero")
	require.True(t, ok)
	assert.Equal(t, "P-123", numero.Text())
}

func TestParse_UnclosedFenceReadsToEnd(t *testing.T) {
	got, err := reply.Parse("```json\n{\"a\": 1}")
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, got.Value.Text())
}

func TestParse_WhitespaceAroundObject(t *testing.T) {
	got, err := reply.Parse("\n  {\"a\": true}  \n")
	require.NoError(t, err)
	assert.Equal(t, reply.SourceDirect, got.Source)
}

func TestParse_NonObjectWithoutFenceFallsBackToRawText(t *testing.T) {
	got, err := reply.Parse(`"just a string"`)
	require.NoError(t, err)
	assert.Equal(t, reply.SourceRawText, got.Source)
	raw, ok := got.Value.Get(reply.RawTextKey)
	require.True(t, ok)
	assert.Equal(t, `"just a string"`, raw.Text())
}

func TestParse_EmptyReplyIsRawText(t *testing.T) {
	got, err := reply.Parse("")
	require.NoError(t, err)
	assert.Equal(t, reply.SourceRawText, got.Source)
	assert.Equal(t, `{"raw_text":""}`, got.Value.Text())
}
