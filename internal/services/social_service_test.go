// social_service_test.go
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
	"strings"
	"testing"

	"github.com/localnerve/devshare/internal/models"
	"github.com/localnerve/devshare/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestTogglePostLikeRoundTrip(t *testing.T) {
	db := testDB(t)
	owner := mkUser(t, db, "owner10")
	liker := mkUser(t, db, "liker10")
	post := mkPost(t, db, owner.ID, "likeable")

	status, err := TogglePostLike(db, post.ID, liker.ID)
	require.NoError(t, err)
	assert.True(t, status.Liked)
	assert.EqualValues(t, 1, status.LikesCount)
	assert.EqualValues(t, 1, reloadPost(t, db, post.ID).LikesCount)

	// the owner liking their own post generates no notification
	assert.EqualValues(t, 0, count(t, db, &models.Notification{}, "recipient_id = ? AND actor_id = ?", owner.ID, owner.ID))
	assert.EqualValues(t, 1, count(t, db, &models.Notification{}, "recipient_id = ? AND actor_id = ?", owner.ID, liker.ID))

	// toggling again removes the like, no new notification
	status, err = TogglePostLike(db, post.ID, liker.ID)
	require.NoError(t, err)
	assert.False(t, status.Liked)
	assert.EqualValues(t, 0, status.LikesCount)
	assert.EqualValues(t, 0, count(t, db, &models.PostLike{}, "post_id = ?", post.ID))
	assert.EqualValues(t, 1, count(t, db, &models.Notification{}, "recipient_id = ?", owner.ID))
}

func TestTogglePostLikeSelf(t *testing.T) {
	db := testDB(t)
	owner := mkUser(t, db, "owner11")
	post := mkPost(t, db, owner.ID, "selfie")

	status, err := TogglePostLike(db, post.ID, owner.ID)
	require.NoError(t, err)
	assert.True(t, status.Liked)
	// self-suppression: no notification to oneself
	assert.EqualValues(t, 0, count(t, db, &models.Notification{}, "recipient_id = ?", owner.ID))
}

func TestTogglePostLikeUnknownPost(t *testing.T) {
	db := testDB(t)
	user := mkUser(t, db, "lone11")
	_, err := TogglePostLike(db, "00000000-0000-0000-0000-000000000000", user.ID)
	require.Error(t, err)
	assert.True(t, types.IsKind(err, "not_found"))
}

func TestToggleCommentAndReplyLikes(t *testing.T) {
	db := testDB(t)
	owner := mkUser(t, db, "owner12")
	liker := mkUser(t, db, "liker12")
	post := mkPost(t, db, owner.ID, "threads")
	comment := mkComment(t, db, post.ID, owner.ID, "top")
	reply := mkReply(t, db, comment, owner.ID, "nested")

	cs, err := ToggleCommentLike(db, comment.ID, liker.ID)
	require.NoError(t, err)
	assert.True(t, cs.Liked)
	assert.EqualValues(t, 1, reloadComment(t, db, comment.ID).LikesCount)

	rs, err := ToggleReplyLike(db, reply.ID, liker.ID)
	require.NoError(t, err)
	assert.True(t, rs.Liked)
	var r models.Reply
	require.NoError(t, db.Where("id = ?", reply.ID).First(&r).Error)
	assert.EqualValues(t, 1, r.LikesCount)

	cs, err = ToggleCommentLike(db, comment.ID, liker.ID)
	require.NoError(t, err)
	assert.False(t, cs.Liked)
	assert.EqualValues(t, 0, reloadComment(t, db, comment.ID).LikesCount)
}

func TestCreateCommentBumpsCounterAndNotifies(t *testing.T) {
	db := testDB(t)
	owner := mkUser(t, db, "owner13")
	commenter := mkUser(t, db, "voice13")
	post := mkPost(t, db, owner.ID, "commented")

	view, err := CreateComment(db, post.ID, commenter.ID, "  hello there  ")
	require.NoError(t, err)
	assert.Equal(t, "hello there", view.Content)
	assert.Equal(t, commenter.Username, view.User.Username)
	assert.Nil(t, view.UpdatedAt)
	assert.EqualValues(t, 1, reloadPost(t, db, post.ID).CommentsCount)
	assert.EqualValues(t, 1, count(t, db, &models.Notification{},
		"recipient_id = ? AND type = ?", owner.ID, models.NotifCommentAdded))
}

func TestCreateCommentValidation(t *testing.T) {
	db := testDB(t)
	owner := mkUser(t, db, "owner14")
	post := mkPost(t, db, owner.ID, "strict")

	_, err := CreateComment(db, post.ID, owner.ID, "   ")
	require.Error(t, err)
	assert.True(t, types.IsKind(err, "validation"))

	_, err = CreateComment(db, post.ID, owner.ID, strings.Repeat("x", maxCommentLength+1))
	require.Error(t, err)
	assert.True(t, types.IsKind(err, "validation"))
}

func TestCreateReplyBumpsBothCountersAndNotifies(t *testing.T) {
	db := testDB(t)
	owner := mkUser(t, db, "owner15")
	commenter := mkUser(t, db, "voice15")
	replier := mkUser(t, db, "echo15")
	post := mkPost(t, db, owner.ID, "replied")
	comment := mkComment(t, db, post.ID, commenter.ID, "top level")

	view, err := CreateReply(db, comment.ID, replier.ID, "me too")
	require.NoError(t, err)
	assert.Equal(t, comment.ID, view.CommentID)
	assert.Equal(t, post.ID, view.PostID)

	assert.EqualValues(t, 1, reloadComment(t, db, comment.ID).RepliesCount)
	assert.EqualValues(t, 2, reloadPost(t, db, post.ID).CommentsCount)

	// both the comment author and the post owner hear about it
	assert.EqualValues(t, 1, count(t, db, &models.Notification{},
		"recipient_id = ? AND type = ?", commenter.ID, models.NotifReplyAdded))
	assert.EqualValues(t, 1, count(t, db, &models.Notification{},
		"recipient_id = ? AND type = ?", owner.ID, models.NotifReplyAdded))
}

func TestCreateReplyOwnCommentSingleNotification(t *testing.T) {
	db := testDB(t)
	owner := mkUser(t, db, "owner16")
	replier := mkUser(t, db, "echo16")
	post := mkPost(t, db, owner.ID, "self thread")
	comment := mkComment(t, db, post.ID, owner.ID, "mine")

	_, err := CreateReply(db, comment.ID, replier.ID, "reply")
	require.NoError(t, err)
	// comment author == post owner: exactly one notification
	assert.EqualValues(t, 1, count(t, db, &models.Notification{}, "recipient_id = ?", owner.ID))
}

func TestUpdateCommentOwnershipAndTimestamp(t *testing.T) {
	db := testDB(t)
	owner := mkUser(t, db, "owner17")
	author := mkUser(t, db, "voice17")
	post := mkPost(t, db, owner.ID, "edited")
	comment := mkComment(t, db, post.ID, author.ID, "original")

	// even the post owner can't edit someone else's comment
	_, err := UpdateComment(db, comment.ID, owner.ID, "hijacked")
	require.Error(t, err)
	assert.True(t, types.IsKind(err, "forbidden"))

	view, err := UpdateComment(db, comment.ID, author.ID, "revised")
	require.NoError(t, err)
	assert.Equal(t, "revised", view.Content)
	require.NotNil(t, view.UpdatedAt)

	reloaded := reloadComment(t, db, comment.ID)
	assert.Equal(t, "revised", reloaded.Content)
	assert.NotNil(t, reloaded.UpdatedAt)
}

func TestUpdateReplyOwnership(t *testing.T) {
	db := testDB(t)
	owner := mkUser(t, db, "owner18")
	author := mkUser(t, db, "echo18")
	post := mkPost(t, db, owner.ID, "more edits")
	comment := mkComment(t, db, post.ID, owner.ID, "top")
	reply := mkReply(t, db, comment, author.ID, "before")

	_, err := UpdateReply(db, reply.ID, owner.ID, "taken over")
	require.Error(t, err)
	assert.True(t, types.IsKind(err, "forbidden"))

	view, err := UpdateReply(db, reply.ID, author.ID, "after")
	require.NoError(t, err)
	assert.Equal(t, "after", view.Content)
	assert.NotNil(t, view.UpdatedAt)
}

func TestListCommentsNestedWithLikedFlags(t *testing.T) {
	db := testDB(t)
	owner := mkUser(t, db, "owner19")
	viewer := mkUser(t, db, "watch19")
	post := mkPost(t, db, owner.ID, "listing")

	first := mkComment(t, db, post.ID, owner.ID, "first")
	second := mkComment(t, db, post.ID, viewer.ID, "second")
	r1 := mkReply(t, db, first, viewer.ID, "r1")
	mkReply(t, db, first, owner.ID, "r2")
	likeComment(t, db, viewer.ID, first)
	likeReply(t, db, viewer.ID, r1)

	comments, err := ListComments(db, post.ID, viewer.ID)
	require.NoError(t, err)
	require.Len(t, comments, 2)

	// oldest first
	assert.Equal(t, first.ID, comments[0].ID)
	assert.Equal(t, second.ID, comments[1].ID)

	assert.True(t, comments[0].Liked)
	assert.False(t, comments[1].Liked)
	require.Len(t, comments[0].Replies, 2)
	assert.Equal(t, r1.ID, comments[0].Replies[0].ID)
	assert.True(t, comments[0].Replies[0].Liked)
	assert.False(t, comments[0].Replies[1].Liked)
	assert.Empty(t, comments[1].Replies)
}

func TestListRepliesAndLikeListings(t *testing.T) {
	db := testDB(t)
	owner := mkUser(t, db, "owner20")
	fanA := mkUser(t, db, "fana20")
	fanB := mkUser(t, db, "fanb20")
	post := mkPost(t, db, owner.ID, "popular")
	comment := mkComment(t, db, post.ID, owner.ID, "top")
	reply := mkReply(t, db, comment, fanA.ID, "r")

	likePost(t, db, fanA.ID, post.ID)
	likePost(t, db, fanB.ID, post.ID)
	likeComment(t, db, fanA.ID, comment)
	likeReply(t, db, fanB.ID, reply)

	replies, err := ListReplies(db, comment.ID, fanB.ID)
	require.NoError(t, err)
	require.Len(t, replies, 1)
	assert.Equal(t, fanA.Username, replies[0].User.Username)

	postLikes, err := ListPostLikes(db, post.ID)
	require.NoError(t, err)
	require.Len(t, postLikes, 2)

	commentLikes, err := ListCommentLikes(db, comment.ID)
	require.NoError(t, err)
	require.Len(t, commentLikes, 1)
	assert.Equal(t, fanA.Username, commentLikes[0].User.Username)

	replyLikes, err := ListReplyLikes(db, reply.ID)
	require.NoError(t, err)
	require.Len(t, replyLikes, 1)
	assert.Equal(t, fanB.Username, replyLikes[0].User.Username)
}

func TestToggleCommentLikeNotifiesAuthorAndPostOwner(t *testing.T) {
	db := testDB(t)
	owner := mkUser(t, db, "owner18")
	commenter := mkUser(t, db, "voice18")
	liker := mkUser(t, db, "liker18")
	post := mkPost(t, db, owner.ID, "fanout")
	comment := mkComment(t, db, post.ID, commenter.ID, "top")
	reply := mkReply(t, db, comment, commenter.ID, "nested")

	_, err := ToggleCommentLike(db, comment.ID, liker.ID)
	require.NoError(t, err)
	// both the comment author and the post owner hear about it
	assert.EqualValues(t, 1, count(t, db, &models.Notification{},
		"recipient_id = ? AND type = ?", commenter.ID, models.NotifCommentLiked))
	assert.EqualValues(t, 1, count(t, db, &models.Notification{},
		"recipient_id = ? AND type = ?", owner.ID, models.NotifCommentLiked))

	_, err = ToggleReplyLike(db, reply.ID, liker.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count(t, db, &models.Notification{},
		"recipient_id = ? AND type = ?", commenter.ID, models.NotifReplyLiked))
	assert.EqualValues(t, 1, count(t, db, &models.Notification{},
		"recipient_id = ? AND type = ?", owner.ID, models.NotifReplyLiked))
}

func TestToggleCommentLikeOwnPostSingleNotification(t *testing.T) {
	db := testDB(t)
	owner := mkUser(t, db, "owner19")
	liker := mkUser(t, db, "liker19")
	post := mkPost(t, db, owner.ID, "self fanout")
	comment := mkComment(t, db, post.ID, owner.ID, "mine")

	_, err := ToggleCommentLike(db, comment.ID, liker.ID)
	require.NoError(t, err)
	// comment author == post owner: exactly one notification
	assert.EqualValues(t, 1, count(t, db, &models.Notification{}, "recipient_id = ?", owner.ID))
}

func TestTogglePostLikeLostUnlike(t *testing.T) {
	db := testDB(t)
	owner := mkUser(t, db, "owner20")
	liker := mkUser(t, db, "liker20")
	post := mkPost(t, db, owner.ID, "raced")
	likePost(t, db, liker.ID, post.ID)

	// another unlike finishes between the existence check and our delete
	fired := false
	err := db.Callback().Delete().Before("gorm:delete").Register("steal_like", func(tx *gorm.DB) {
		if fired || tx.Statement.Table != "post_likes" {
			return
		}
		fired = true
		sess := tx.Session(&gorm.Session{NewDB: true})
		sess.Exec("DELETE FROM post_likes WHERE user_id = ? AND post_id = ?", liker.ID, post.ID)
		sess.Exec("UPDATE posts SET likes_count = likes_count - 1 WHERE id = ?", post.ID)
	})
	require.NoError(t, err)
	defer db.Callback().Delete().Remove("steal_like")

	status, err := TogglePostLike(db, post.ID, liker.ID)
	require.NoError(t, err)
	assert.False(t, status.Liked)
	// the other unlike already decremented; ours must not decrement again
	assert.EqualValues(t, 0, status.LikesCount)
	assert.EqualValues(t, 0, reloadPost(t, db, post.ID).LikesCount)
}
