package hotel

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadKnownNamesMissingFileYieldsEmpty(t *testing.T) {
	kn, err := LoadKnownNames(filepath.Join(t.TempDir(), "missing.json"))
	require.NoError(t, err)
	assert.NotNil(t, kn)
	assert.False(t, kn.Contains("조선 팰리스"))
}

func TestLoadKnownNamesParsesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "known_names.json")
	content := `{
		"brands": ["조선 팰리스"],
		"restaurants": {"josun_palace": ["화목"]},
		"facilities": ["수영장"],
		"room_types": ["디럭스"]
	}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	kn, err := LoadKnownNames(path)
	require.NoError(t, err)

	assert.True(t, kn.Contains("조선 팰리스"))
	assert.True(t, kn.Contains("화목"))
	assert.True(t, kn.Contains("수영장"))
	assert.True(t, kn.Contains("디럭스"))
	assert.False(t, kn.Contains("없는이름"))
	assert.False(t, kn.Contains(""))
}

func TestLoadForbiddenPatternsMissingFileYieldsEmpty(t *testing.T) {
	fp, err := LoadForbiddenPatterns(filepath.Join(t.TempDir(), "missing.json"))
	require.NoError(t, err)
	assert.Empty(t, fp.Patterns)
}

func TestLoadForbiddenPatternsParsesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "forbidden_patterns.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"patterns": ["foo.*bar"]}`), 0o644))

	fp, err := LoadForbiddenPatterns(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"foo.*bar"}, fp.Patterns)
}
