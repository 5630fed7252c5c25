// TEST TYPE: Unit Tests
// DEPENDENCIES: afero MemMapFs
// PURPOSE: Verify metadata store load, save and error handling

package metadata

import (
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dob9601/jointhedots/pkg/errors"
)

const storePath = "/home/user/.local/share/jointhedots/manifest.yaml"

func TestGet_Missing(t *testing.T) {
	fs := afero.NewMemMapFs()

	s, err := Get(fs, storePath)
	require.NoError(t, err)
	assert.Nil(t, s)

	s, err = GetOrCreate(fs, storePath)
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.Empty(t, s.Dotfiles)
}

func TestSaveAndLoad(t *testing.T) {
	fs := afero.NewMemMapFs()

	s := New()
	s.Set("kitty", DotfileMetadata{
		InstallHash:    "1111111111111111111111111111111111111111",
		SyncHash:       "2222222222222222222222222222222222222222",
		PreInstallHash: "abc",
	})
	s.Set("vim", DotfileMetadata{InstallHash: "3333", SyncHash: "3333"})

	require.NoError(t, s.Save(fs, storePath))

	loaded, err := Get(fs, storePath)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, s.Dotfiles, loaded.Dotfiles)
	assert.Equal(t, []string{"kitty", "vim"}, loaded.Names())

	raw, err := afero.ReadFile(fs, storePath)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(raw), "# This file is automatically generated"))
	assert.Contains(t, string(raw), "kitty:\n  install_hash:")

	entries, err := afero.ReadDir(fs, "/home/user/.local/share/jointhedots")
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files are left behind")
}

func TestGet_Unparsable(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, storePath, []byte("kitty: [unclosed"), 0644))

	_, err := Get(fs, storePath)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrMetadataUnreadable))
	assert.Equal(t, storePath, errors.GetErrorDetails(err)["path"])
	assert.Contains(t, err.Error(), storePath)
}

func TestGet_LegacyFlatFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	content := "kitty:\n  install_hash: aaa\n  sync_hash: bbb\n  pre_install_hash: \"\"\n  post_install_hash: \"\"\n"
	require.NoError(t, afero.WriteFile(fs, storePath, []byte(content), 0644))

	s, err := Get(fs, storePath)
	require.NoError(t, err)
	m, ok := s.Lookup("kitty")
	require.True(t, ok)
	assert.Equal(t, "aaa", m.InstallHash)
	assert.Equal(t, "bbb", m.SyncHash)
}

func TestLookup(t *testing.T) {
	var nilStore *Store
	_, ok := nilStore.Lookup("kitty")
	assert.False(t, ok)

	s := New()
	s.Set("kitty", DotfileMetadata{SyncHash: "x"})

	m, ok := s.Lookup("kitty")
	require.True(t, ok)
	m.SyncHash = "changed"

	again, _ := s.Lookup("kitty")
	assert.Equal(t, "x", again.SyncHash, "Lookup returns a copy")
}

func TestSave_EmptyFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, storePath, []byte(""), 0644))

	s, err := Get(fs, storePath)
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.Empty(t, s.Dotfiles)
}
