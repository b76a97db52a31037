package config

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeOverridesNonEmpty(t *testing.T) {
	base := Settings{Dir: "/a", Message: "m1", Remote: "origin", SkipMarkers: []string{"x"}}
	got := base.Merge(Settings{Message: "m2", Branch: "main"})

	assert.Equal(t, Settings{Dir: "/a", Message: "m2", Remote: "origin", Branch: "main", SkipMarkers: []string{"x"}}, got)
}

func TestMergeEnvKeyByKey(t *testing.T) {
	base := Settings{Env: map[string]string{"A": "1", "B": "2"}}
	got := base.Merge(Settings{Env: map[string]string{"B": "3", "C": "4"}})

	assert.Equal(t, map[string]string{"A": "1", "B": "3", "C": "4"}, got.Env)
	assert.Equal(t, map[string]string{"A": "1", "B": "2"}, base.Env)
}

func TestMergeReplacesSkipMarkers(t *testing.T) {
	base := Settings{SkipMarkers: []string{"a", "b"}}
	got := base.Merge(Settings{SkipMarkers: []string{"c"}})
	assert.Equal(t, []string{"c"}, got.SkipMarkers)
}

func TestDefaults(t *testing.T) {
	assert.Equal(t, DefaultMessage, Defaults().Message)
}

func TestLoadRepoFileMissing(t *testing.T) {
	fs := afero.NewMemMapFs()
	s, found, err := LoadRepoFile(fs, "/repo")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, Settings{}, s)
}

func TestLoadRepoFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	content := `message: |-
  feat: new footprint page

  - fix pages config
remote: origin
branch: main
skip_markers:
  - nothing to commit
  - 无文件要提交
env:
  LC_ALL: C
`
	require.NoError(t, afero.WriteFile(fs, "/repo/"+RepoFileName, []byte(content), 0o644))

	s, found, err := LoadRepoFile(fs, "/repo")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "feat: new footprint page\n\n- fix pages config", s.Message)
	assert.Equal(t, "origin", s.Remote)
	assert.Equal(t, "main", s.Branch)
	assert.Equal(t, []string{"nothing to commit", "无文件要提交"}, s.SkipMarkers)
	assert.Equal(t, map[string]string{"LC_ALL": "C"}, s.Env)
}

func TestLoadRepoFileInvalid(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/repo/"+RepoFileName, []byte("message: [unclosed"), 0o644))

	_, _, err := LoadRepoFile(fs, "/repo")
	assert.ErrorContains(t, err, "invalid")
}
