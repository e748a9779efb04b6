// post_service_test.go
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

package services

import (
	"bytes"
	"io"
	"mime/multipart"
	"testing"
	"time"

	"github.com/localnerve/devshare/internal/models"
	"github.com/localnerve/devshare/internal/storage"
	"github.com/localnerve/devshare/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type upload struct {
	name    string
	content string
}

// mkFileHeaders builds real multipart file headers the way a handler
// would receive them.
func mkFileHeaders(t *testing.T, uploads []upload) []*multipart.FileHeader {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, u := range uploads {
		part, err := w.CreateFormFile("files", u.name)
		require.NoError(t, err)
		_, err = part.Write([]byte(u.content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&buf, w.Boundary()).ReadForm(32 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })
	return form.File["files"]
}

func testBlobs(t *testing.T) *storage.FSBlobStore {
	t.Helper()
	blobs, err := storage.NewFSBlobStore(t.TempDir())
	require.NoError(t, err)
	return blobs
}

func TestCreatePostWithFiles(t *testing.T) {
	db := testDB(t)
	blobs := testBlobs(t)
	user := mkUser(t, db, "maker50")

	view, err := CreatePost(db, blobs, user.ID, PostInput{
		Title:       "  CLI tool  ",
		Description: "A tool for doing things",
		TechStack:   []string{"go", "sqlite"},
		GithubLink:  "https://github.com/maker50/cli-tool",
		Files:       mkFileHeaders(t, []upload{{"readme.md", "# hi"}, {"demo.txt", "demo"}}),
	})
	require.NoError(t, err)
	assert.Equal(t, "CLI tool", view.Title)
	assert.Equal(t, []string{"go", "sqlite"}, []string(view.TechStack))
	assert.Equal(t, user.Username, view.User.Username)
	assert.Nil(t, view.UpdatedAt)
	require.Len(t, view.Files, 2)

	assert.EqualValues(t, 2, count(t, db, &models.PostFile{}, "post_id = ?", view.ID))
	for _, f := range view.Files {
		rc, err := blobs.Open(f.ID)
		require.NoError(t, err)
		data, err := io.ReadAll(rc)
		require.NoError(t, err)
		rc.Close()
		assert.NotEmpty(t, data)
	}
}

func TestCreatePostValidation(t *testing.T) {
	db := testDB(t)
	user := mkUser(t, db, "maker51")

	cases := []PostInput{
		{Title: " ", Description: "d", TechStack: []string{"go"}},
		{Title: "t", Description: " ", TechStack: []string{"go"}},
		{Title: "t", Description: "d"},
		{Title: "t", Description: "d", TechStack: []string{"go"}, GithubLink: "https://gitlab.com/x/y"},
	}
	for i, input := range cases {
		_, err := CreatePost(db, nil, user.ID, input)
		require.Errorf(t, err, "case %d", i)
		assert.Truef(t, types.IsKind(err, "validation"), "case %d", i)
	}
	assert.EqualValues(t, 0, count(t, db, &models.Post{}, "user_id = ?", user.ID))
}

func TestEditPostReconcilesFiles(t *testing.T) {
	db := testDB(t)
	blobs := testBlobs(t)
	user := mkUser(t, db, "maker52")

	created, err := CreatePost(db, blobs, user.ID, PostInput{
		Title:       "attachments",
		Description: "desc",
		TechStack:   []string{"go"},
		Files:       mkFileHeaders(t, []upload{{"keep.txt", "keep"}, {"drop.txt", "drop"}}),
	})
	require.NoError(t, err)
	require.Len(t, created.Files, 2)

	var keepID, dropID string
	for _, f := range created.Files {
		if f.Filename == "keep.txt" {
			keepID = f.ID
		} else {
			dropID = f.ID
		}
	}

	edited, err := EditPost(db, blobs, user.ID, created.ID, PostInput{
		Title:       "attachments v2",
		Description: "desc",
		TechStack:   []string{"go"},
		KeepFileIDs: []string{keepID},
		Files:       mkFileHeaders(t, []upload{{"new.txt", "new"}}),
	})
	require.NoError(t, err)
	assert.Equal(t, "attachments v2", edited.Title)
	require.NotNil(t, edited.UpdatedAt)
	require.Len(t, edited.Files, 2)

	// the dropped attachment is gone, row and blob
	assert.EqualValues(t, 0, count(t, db, &models.PostFile{}, "file_id = ?", dropID))
	_, err = blobs.Open(dropID)
	assert.ErrorIs(t, err, storage.ErrBlobNotFound)

	rc, err := blobs.Open(keepID)
	require.NoError(t, err)
	rc.Close()

	// nil keep-list leaves attachments alone
	again, err := EditPost(db, blobs, user.ID, created.ID, PostInput{
		Title: "attachments v3", Description: "desc", TechStack: []string{"go"},
	})
	require.NoError(t, err)
	assert.Len(t, again.Files, 2)

	// empty keep-list drops everything
	none, err := EditPost(db, blobs, user.ID, created.ID, PostInput{
		Title: "attachments v4", Description: "desc", TechStack: []string{"go"},
		KeepFileIDs: []string{},
	})
	require.NoError(t, err)
	assert.Empty(t, none.Files)
	assert.EqualValues(t, 0, count(t, db, &models.PostFile{}, "post_id = ?", created.ID))
}

func TestEditPostOwnership(t *testing.T) {
	db := testDB(t)
	owner := mkUser(t, db, "maker53")
	other := mkUser(t, db, "other53")
	post := mkPost(t, db, owner.ID, "locked")

	_, err := EditPost(db, nil, other.ID, post.ID, PostInput{
		Title: "stolen", Description: "d", TechStack: []string{"go"},
	})
	require.Error(t, err)
	assert.True(t, types.IsKind(err, "forbidden"))

	_, err = EditPost(db, nil, owner.ID, "00000000-0000-0000-0000-000000000000", PostInput{
		Title: "t", Description: "d", TechStack: []string{"go"},
	})
	require.Error(t, err)
	assert.True(t, types.IsKind(err, "not_found"))
}

func TestGetOwnPostPolicy(t *testing.T) {
	db := testDB(t)
	owner := mkUser(t, db, "maker54")
	other := mkUser(t, db, "other54")
	post := mkPost(t, db, owner.ID, "private view")

	view, err := GetOwnPost(db, post.ID, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, post.ID, view.ID)

	// existing but foreign post is forbidden, not hidden
	_, err = GetOwnPost(db, post.ID, other.ID)
	require.Error(t, err)
	assert.True(t, types.IsKind(err, "forbidden"))

	_, err = GetOwnPost(db, "00000000-0000-0000-0000-000000000000", owner.ID)
	require.Error(t, err)
	assert.True(t, types.IsKind(err, "not_found"))
}

func TestFeedSearchFilterAndPagination(t *testing.T) {
	db := testDB(t)
	user := mkUser(t, db, "maker55")
	viewer := mkUser(t, db, "watch55")

	titles := []string{"Rust parser", "Go scheduler", "Go profiler", "Web dashboard"}
	stacks := [][]string{{"rust"}, {"go"}, {"go", "sqlite"}, {"typescript"}}
	ids := make([]string, len(titles))
	for i := range titles {
		view, err := CreatePost(db, nil, user.ID, PostInput{
			Title: titles[i], Description: "project " + titles[i], TechStack: stacks[i],
		})
		require.NoError(t, err)
		ids[i] = view.ID
		// deterministic ordering for created_at sorts
		require.NoError(t, db.Model(&models.Post{}).Where("id = ?", view.ID).
			Update("created_at", time.Now().UTC().Add(time.Duration(i-len(titles))*time.Minute)).Error)
	}
	likePost(t, db, viewer.ID, ids[1])

	// default: newest first, all posts
	feed, err := Feed(db, viewer.ID, FeedQuery{})
	require.NoError(t, err)
	require.Len(t, feed.Posts, 4)
	assert.Equal(t, "Web dashboard", feed.Posts[0].Title)
	assert.EqualValues(t, 4, feed.Pagination.Total)
	assert.EqualValues(t, 1, feed.Pagination.Pages)

	// liked flag is per viewer
	for _, p := range feed.Posts {
		assert.Equal(t, p.ID == ids[1], p.Liked, p.Title)
	}

	// case-insensitive search over title and description
	feed, err = Feed(db, "", FeedQuery{Search: "go "})
	require.NoError(t, err)
	require.Len(t, feed.Posts, 2)

	// tech filter matches the json-encoded stack entry
	feed, err = Feed(db, "", FeedQuery{Tech: "sqlite"})
	require.NoError(t, err)
	require.Len(t, feed.Posts, 1)
	assert.Equal(t, "Go profiler", feed.Posts[0].Title)

	// pagination
	feed, err = Feed(db, "", FeedQuery{Page: 2, Limit: 3})
	require.NoError(t, err)
	require.Len(t, feed.Posts, 1)
	assert.EqualValues(t, 2, feed.Pagination.Pages)

	// oldest first
	feed, err = Feed(db, "", FeedQuery{Sort: "created_at_asc", Limit: 1})
	require.NoError(t, err)
	require.Len(t, feed.Posts, 1)
	assert.Equal(t, "Rust parser", feed.Posts[0].Title)
}

func TestUserPostsAndProfiles(t *testing.T) {
	db := testDB(t)
	author := mkUser(t, db, "maker56")
	other := mkUser(t, db, "other56")
	one := mkPost(t, db, author.ID, "one")
	two := mkPost(t, db, author.ID, "two")
	theirs := mkPost(t, db, other.ID, "theirs")
	likePost(t, db, other.ID, one.ID)
	likePost(t, db, other.ID, two.ID)
	likePost(t, db, author.ID, theirs.ID)

	result, err := UserPosts(db, author.ID, other.ID, FeedQuery{})
	require.NoError(t, err)
	assert.Len(t, result.Posts, 2)
	assert.EqualValues(t, 2, result.Pagination.Total)

	own, err := Profile(db, author.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, own.Email)
	assert.EqualValues(t, 2, own.PostsCount)
	// likes placed on the author's own posts, not likes the author gave
	assert.EqualValues(t, 2, own.LikesReceived)

	public, err := PublicProfile(db, author.ID)
	require.NoError(t, err)
	assert.Empty(t, public.Email)
	assert.Equal(t, author.Username, public.Username)
	assert.EqualValues(t, 2, public.PostsCount)
	assert.EqualValues(t, 2, public.LikesReceived)

	_, err = PublicProfile(db, "00000000-0000-0000-0000-000000000000")
	require.Error(t, err)
	assert.True(t, types.IsKind(err, "not_found"))
}

func TestOpenFileIsPostScoped(t *testing.T) {
	db := testDB(t)
	blobs := testBlobs(t)
	user := mkUser(t, db, "maker57")

	withFile, err := CreatePost(db, blobs, user.ID, PostInput{
		Title: "has file", Description: "d", TechStack: []string{"go"},
		Files: mkFileHeaders(t, []upload{{"data.bin", "payload"}}),
	})
	require.NoError(t, err)
	otherPost := mkPost(t, db, user.ID, "no file")
	fileID := withFile.Files[0].ID

	meta, rc, err := OpenFile(db, blobs, withFile.ID, fileID)
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	rc.Close()
	assert.Equal(t, "payload", string(data))
	assert.Equal(t, "data.bin", meta.Filename)

	// the same file id through another post resolves to nothing
	_, _, err = OpenFile(db, blobs, otherPost.ID, fileID)
	require.Error(t, err)
	assert.True(t, types.IsKind(err, "not_found"))
}
