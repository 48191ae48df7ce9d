package safety

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadLists_PartialOverride(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "keywords.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
blocked:
  - custom-bad-term
verified_entities:
  - "Test Person"
`), 0o600))

	lists, err := LoadLists(path)
	require.NoError(t, err)

	// Overridden sections replace the defaults.
	assert.Equal(t, []string{"custom-bad-term"}, lists.Blocked)
	assert.Equal(t, []string{"Test Person"}, lists.VerifiedEntities)

	// Unnamed sections keep the compiled-in defaults.
	assert.Equal(t, DefaultLists().Review, lists.Review)
	assert.Equal(t, DefaultLists().MinorIndicators, lists.MinorIndicators)
	assert.NotEmpty(t, lists.CuratedHandles)
}

func TestLoadLists_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := LoadLists(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadLists_MalformedYAML(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("blocked: [unterminated"), 0o600))

	_, err := LoadLists(path)
	assert.Error(t, err)
}

func TestDefaultLists_NonEmpty(t *testing.T) {
	t.Parallel()

	lists := DefaultLists()
	assert.NotEmpty(t, lists.Blocked)
	assert.NotEmpty(t, lists.Review)
	assert.NotEmpty(t, lists.SafeContext)
	assert.NotEmpty(t, lists.MinorIndicators)
	assert.NotEmpty(t, lists.PoliticalRoles)
	assert.NotEmpty(t, lists.VerifiedEntities)
}
