package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teluguvibes/curator-cli/internal/pipeline"
)

func resetIngestFlags() {
	ingestDry = false
	ingestSmart = false
	ingestFull = false
	ingestRefresh = false
	ingestReset = false
}

func TestIngestModeDefaultsToSmart(t *testing.T) {
	resetIngestFlags()
	t.Cleanup(resetIngestFlags)

	mode, err := ingestMode()
	require.NoError(t, err)
	assert.Equal(t, pipeline.ModeSmart, mode)
}

func TestIngestModeSingleFlag(t *testing.T) {
	cases := []struct {
		name string
		flag *bool
		want pipeline.Mode
	}{
		{"dry", &ingestDry, pipeline.ModeDry},
		{"smart", &ingestSmart, pipeline.ModeSmart},
		{"full", &ingestFull, pipeline.ModeFull},
		{"refresh", &ingestRefresh, pipeline.ModeRefresh},
		{"reset", &ingestReset, pipeline.ModeReset},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resetIngestFlags()
			t.Cleanup(resetIngestFlags)
			*tc.flag = true

			mode, err := ingestMode()
			require.NoError(t, err)
			assert.Equal(t, tc.want, mode)
		})
	}
}

func TestIngestModeRejectsMultipleFlags(t *testing.T) {
	resetIngestFlags()
	t.Cleanup(resetIngestFlags)
	ingestDry = true
	ingestFull = true

	_, err := ingestMode()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mutually exclusive")
}

func TestSplitList(t *testing.T) {
	assert.Nil(t, splitList(""))
	assert.Equal(t, []string{"wikidata"}, splitList("wikidata"))
	assert.Equal(t, []string{"actress", "anchor"}, splitList("actress, anchor"))
	assert.Equal(t, []string{"a", "b"}, splitList("a,,b,"))
}
