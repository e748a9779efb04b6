// blob_test.go
//
// devshare - a social platform API for developers to publish and discuss project posts
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of devshare.
// devshare is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// devshare is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with devshare.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package storage

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFSBlobStoreRoundTrip(t *testing.T) {
	root := t.TempDir()
	store, err := NewFSBlobStore(root)
	require.NoError(t, err)

	require.NoError(t, store.Save("abc123", strings.NewReader("hello blob")))

	rc, err := store.Open("abc123")
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	rc.Close()
	assert.Equal(t, "hello blob", string(data))

	// sharded under the two-character prefix
	_, err = os.Stat(filepath.Join(root, "ab", "abc123"))
	require.NoError(t, err)

	// overwrite replaces the contents
	require.NoError(t, store.Save("abc123", strings.NewReader("v2")))
	rc, err = store.Open("abc123")
	require.NoError(t, err)
	data, err = io.ReadAll(rc)
	require.NoError(t, err)
	rc.Close()
	assert.Equal(t, "v2", string(data))
}

func TestFSBlobStoreDelete(t *testing.T) {
	store, err := NewFSBlobStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Save("gone42", strings.NewReader("x")))
	require.NoError(t, store.Delete("gone42"))

	_, err = store.Open("gone42")
	assert.ErrorIs(t, err, ErrBlobNotFound)

	// deleting a missing blob is a no-op
	require.NoError(t, store.Delete("gone42"))
	require.NoError(t, store.Delete("never-existed"))
}

func TestFSBlobStoreShortID(t *testing.T) {
	root := t.TempDir()
	store, err := NewFSBlobStore(root)
	require.NoError(t, err)

	require.NoError(t, store.Save("x", strings.NewReader("tiny")))
	_, err = os.Stat(filepath.Join(root, "00", "x"))
	require.NoError(t, err)

	rc, err := store.Open("x")
	require.NoError(t, err)
	rc.Close()
}

func TestFSBlobStoreCreatesRoot(t *testing.T) {
	root := filepath.Join(t.TempDir(), "nested", "blobs")
	_, err := NewFSBlobStore(root)
	require.NoError(t, err)

	info, err := os.Stat(root)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
