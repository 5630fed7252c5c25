// TEST TYPE: Unit Tests
// DEPENDENCIES: afero MemMapFs
// PURPOSE: Verify copy and atomic write helpers

package filesystem

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dob9601/jointhedots/pkg/errors"
)

func TestCopyFile(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(fs afero.Fs)
		src     string
		dst     string
		want    string
		wantErr bool
	}{
		{
			name: "creates parent directories",
			setup: func(fs afero.Fs) {
				require.NoError(t, afero.WriteFile(fs, "/repo/kitty.conf", []byte("font_size 12\n"), 0644))
			},
			src:  "/repo/kitty.conf",
			dst:  "/home/user/.config/kitty/kitty.conf",
			want: "font_size 12\n",
		},
		{
			name: "overwrites existing target",
			setup: func(fs afero.Fs) {
				require.NoError(t, afero.WriteFile(fs, "/repo/vimrc", []byte("set nu\n"), 0644))
				require.NoError(t, afero.WriteFile(fs, "/home/user/.vimrc", []byte("old contents that are longer\n"), 0644))
			},
			src:  "/repo/vimrc",
			dst:  "/home/user/.vimrc",
			want: "set nu\n",
		},
		{
			name:    "missing source",
			setup:   func(fs afero.Fs) {},
			src:     "/repo/missing",
			dst:     "/home/user/missing",
			wantErr: true,
		},
		{
			name: "source is a directory",
			setup: func(fs afero.Fs) {
				require.NoError(t, fs.MkdirAll("/repo/dir", 0755))
			},
			src:     "/repo/dir",
			dst:     "/home/user/dir",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := NewMemory()
			tt.setup(fs)

			err := CopyFile(fs, tt.src, tt.dst)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsErrorCode(err, errors.ErrFileCopy))
				return
			}
			require.NoError(t, err)

			got, err := afero.ReadFile(fs, tt.dst)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
		})
	}
}

func TestCopyFile_KeepsMode(t *testing.T) {
	fs := NewMemory()
	require.NoError(t, afero.WriteFile(fs, "/repo/script.sh", []byte("#!/bin/sh\n"), 0755))

	require.NoError(t, CopyFile(fs, "/repo/script.sh", "/home/user/bin/script.sh"))

	info, err := fs.Stat("/home/user/bin/script.sh")
	require.NoError(t, err)
	assert.Equal(t, "-rwxr-xr-x", info.Mode().Perm().String())
}

func TestWriteFileAtomic(t *testing.T) {
	fs := NewMemory()

	require.NoError(t, WriteFileAtomic(fs, "/data/jtd/manifest.yaml", []byte("first"), 0644))
	require.NoError(t, WriteFileAtomic(fs, "/data/jtd/manifest.yaml", []byte("second"), 0644))

	got, err := afero.ReadFile(fs, "/data/jtd/manifest.yaml")
	require.NoError(t, err)
	assert.Equal(t, "second", string(got))

	entries, err := afero.ReadDir(fs, "/data/jtd")
	require.NoError(t, err)
	require.Len(t, entries, 1, "temp files must not be left behind")
	assert.Equal(t, "manifest.yaml", entries[0].Name())
}

func TestExistsAndSameContent(t *testing.T) {
	fs := NewMemory()
	require.NoError(t, afero.WriteFile(fs, "/a", []byte("x"), 0644))

	ok, err := Exists(fs, "/a")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = Exists(fs, "/b")
	require.NoError(t, err)
	assert.False(t, ok)

	same, err := SameContent(fs, "/a", []byte("x"))
	require.NoError(t, err)
	assert.True(t, same)

	same, err = SameContent(fs, "/a", []byte("y"))
	require.NoError(t, err)
	assert.False(t, same)

	same, err = SameContent(fs, "/b", []byte("x"))
	require.NoError(t, err)
	assert.False(t, same)
}
