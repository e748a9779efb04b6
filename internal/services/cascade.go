// cascade.go
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

// Cascading deletes for the social graph. Posts, comments, replies, the
// three like relations, and notifications reference each other without
// database-level foreign keys, so every delete has to walk its own
// dependency closure and correct the denormalized counters on surviving
// rows. Ordering matters: likes before their targets, replies before
// comments, everything before the owning row.

package services

import (
	"errors"

	"github.com/localnerve/devshare/internal/logger"
	"github.com/localnerve/devshare/internal/models"
	"github.com/localnerve/devshare/internal/storage"
	"github.com/localnerve/devshare/internal/types"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// deleteBlobs removes blob files after a committed delete. Best effort:
// an orphaned blob is recoverable garbage, a dangling database row is not.
func deleteBlobs(blobs storage.BlobStore, fileIDs []string) {
	if blobs == nil {
		return
	}
	for _, fileID := range fileIDs {
		if err := blobs.Delete(fileID); err != nil {
			logger.L().Warn("failed to delete blob", zap.String("file_id", fileID), zap.Error(err))
		}
	}
}

// postFileIDs collects the blob ids attached to a set of posts.
func postFileIDs(db *gorm.DB, postIDs []string) ([]string, error) {
	if len(postIDs) == 0 {
		return nil, nil
	}
	var fileIDs []string
	err := db.Model(&models.PostFile{}).Where("post_id IN ?", postIDs).
		Pluck("file_id", &fileIDs).Error
	return fileIDs, err
}

// DeletePost removes a post and everything hanging off it: replies and
// their likes, comments and their likes, post likes, notifications that
// reference the post, file rows, and the post itself. Blob files are
// removed after the transaction commits.
func DeletePost(db *gorm.DB, blobs storage.BlobStore, postID, requesterID string) error {
	var post models.Post
	if err := db.Where("id = ?", postID).First(&post).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return types.NotFound("Post not found")
		}
		return err
	}
	if post.UserID != requesterID {
		return types.Forbidden("You can only delete your own posts")
	}

	fileIDs, err := postFileIDs(db, []string{postID})
	if err != nil {
		return err
	}

	txErr := db.Transaction(func(tx *gorm.DB) error {
		var commentIDs []string
		if err := tx.Model(&models.Comment{}).Where("post_id = ?", postID).
			Pluck("id", &commentIDs).Error; err != nil {
			return err
		}

		var replyIDs []string
		if len(commentIDs) > 0 {
			if err := tx.Model(&models.Reply{}).Where("comment_id IN ?", commentIDs).
				Pluck("id", &replyIDs).Error; err != nil {
				return err
			}
		}

		// The denormalized post_id on replies must agree with the walk
		// through comments. A divergence means a prior cascade was cut short.
		var directCount int64
		if err := tx.Model(&models.Reply{}).Where("post_id = ?", postID).
			Count(&directCount).Error; err != nil {
			return err
		}
		if directCount != int64(len(replyIDs)) {
			logger.L().Warn("reply index divergence during post delete",
				zap.String("post_id", postID),
				zap.Int("via_comments", len(replyIDs)),
				zap.Int64("via_post", directCount))
		}

		if len(replyIDs) > 0 {
			if err := tx.Where("reply_id IN ?", replyIDs).Delete(&models.ReplyLike{}).Error; err != nil {
				return err
			}
			if err := tx.Where("id IN ?", replyIDs).Delete(&models.Reply{}).Error; err != nil {
				return err
			}
		}
		if len(commentIDs) > 0 {
			if err := tx.Where("comment_id IN ?", commentIDs).Delete(&models.CommentLike{}).Error; err != nil {
				return err
			}
			if err := tx.Where("id IN ?", commentIDs).Delete(&models.Comment{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("post_id = ?", postID).Delete(&models.PostLike{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", postID).Delete(&models.Notification{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", postID).Delete(&models.PostFile{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", postID).Delete(&models.Post{}).Error
	})
	if txErr != nil {
		return txErr
	}

	deleteBlobs(blobs, fileIDs)
	return nil
}

// DeleteComment removes a comment, its replies, the likes on both, and
// the notifications that reference them, then decrements the post's
// comments_count by one plus the number of removed replies. The comment
// author and the post owner may both delete.
func DeleteComment(db *gorm.DB, commentID, requesterID string) error {
	var comment models.Comment
	if err := db.Where("id = ?", commentID).First(&comment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return types.NotFound("Comment not found")
		}
		return err
	}

	var post models.Post
	if err := db.Where("id = ?", comment.PostID).First(&post).Error; err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	if comment.UserID != requesterID && post.UserID != requesterID {
		return types.Forbidden("You can only delete your own comments or comments on your posts")
	}

	return db.Transaction(func(tx *gorm.DB) error {
		var replyIDs []string
		if err := tx.Model(&models.Reply{}).Where("comment_id = ?", commentID).
			Pluck("id", &replyIDs).Error; err != nil {
			return err
		}

		if len(replyIDs) > 0 {
			if err := tx.Where("reply_id IN ?", replyIDs).Delete(&models.ReplyLike{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("comment_id = ?", commentID).Delete(&models.CommentLike{}).Error; err != nil {
			return err
		}
		notifScope := tx.Where("comment_id = ?", commentID)
		if len(replyIDs) > 0 {
			notifScope = notifScope.Or("reply_id IN ?", replyIDs)
		}
		if err := notifScope.Delete(&models.Notification{}).Error; err != nil {
			return err
		}
		if len(replyIDs) > 0 {
			if err := tx.Where("id IN ?", replyIDs).Delete(&models.Reply{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("id = ?", commentID).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		return tx.Model(&models.Post{}).Where("id = ?", comment.PostID).
			Update("comments_count", gorm.Expr("comments_count - ?", 1+len(replyIDs))).Error
	})
}

// DeleteReply removes a reply, its likes, and its notifications, then
// decrements both the comment's replies_count and the post's
// comments_count. The reply author and the post owner may both delete.
func DeleteReply(db *gorm.DB, replyID, requesterID string) error {
	var reply models.Reply
	if err := db.Where("id = ?", replyID).First(&reply).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return types.NotFound("Reply not found")
		}
		return err
	}

	var post models.Post
	if err := db.Where("id = ?", reply.PostID).First(&post).Error; err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	if reply.UserID != requesterID && post.UserID != requesterID {
		return types.Forbidden("You can only delete your own replies or replies on your posts")
	}

	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("reply_id = ?", replyID).Delete(&models.ReplyLike{}).Error; err != nil {
			return err
		}
		if err := tx.Where("reply_id = ?", replyID).Delete(&models.Notification{}).Error; err != nil {
			return err
		}
		if err := tx.Where("id = ?", replyID).Delete(&models.Reply{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Comment{}).Where("id = ?", reply.CommentID).
			Update("replies_count", gorm.Expr("replies_count - 1")).Error; err != nil {
			return err
		}
		return tx.Model(&models.Post{}).Where("id = ?", reply.PostID).
			Update("comments_count", gorm.Expr("comments_count - 1")).Error
	})
}

// accountClosure is the precomputed dependency closure of an account
// delete: every row that goes away and every counter correction owed to
// rows that survive.
type accountClosure struct {
	ownedPostIDs      []string
	fileIDs           []string
	deletedCommentIDs []string // comments on owned posts + user's comments elsewhere
	deletedReplyIDs   []string // replies under deleted comments + user's replies elsewhere

	// corrections keyed by surviving row id
	postCommentsDelta map[string]int64 // posts: comments_count -=
	postLikesDelta    map[string]int64 // posts: likes_count -=
	commentReplies    map[string]int64 // comments: replies_count -=
	commentLikesDelta map[string]int64 // comments: likes_count -=
	replyLikesDelta   map[string]int64 // replies: likes_count -=
}

// buildAccountClosure walks the user's footprint and computes the delete
// sets and counter corrections before anything is removed. All counts are
// taken against the pre-delete state; applying them after the deletes in
// the same transaction keeps surviving counters exact.
func buildAccountClosure(db *gorm.DB, userID string) (*accountClosure, error) {
	c := &accountClosure{
		postCommentsDelta: make(map[string]int64),
		postLikesDelta:    make(map[string]int64),
		commentReplies:    make(map[string]int64),
		commentLikesDelta: make(map[string]int64),
		replyLikesDelta:   make(map[string]int64),
	}

	if err := db.Model(&models.Post{}).Where("user_id = ?", userID).
		Pluck("id", &c.ownedPostIDs).Error; err != nil {
		return nil, err
	}

	var err error
	if c.fileIDs, err = postFileIDs(db, c.ownedPostIDs); err != nil {
		return nil, err
	}

	// Comments on owned posts die with the posts. The user's comments on
	// foreign posts die too, and each owes the surviving post a
	// comments_count correction of 1 + its reply subtree.
	var ownedPostComments []models.Comment
	if len(c.ownedPostIDs) > 0 {
		if err := db.Where("post_id IN ?", c.ownedPostIDs).Find(&ownedPostComments).Error; err != nil {
			return nil, err
		}
	}
	var foreignComments []models.Comment
	foreignQuery := db.Where("user_id = ?", userID)
	if len(c.ownedPostIDs) > 0 {
		foreignQuery = foreignQuery.Where("post_id NOT IN ?", c.ownedPostIDs)
	}
	if err := foreignQuery.Find(&foreignComments).Error; err != nil {
		return nil, err
	}

	deletedCommentSet := make(map[string]bool)
	for i := range ownedPostComments {
		c.deletedCommentIDs = append(c.deletedCommentIDs, ownedPostComments[i].ID)
		deletedCommentSet[ownedPostComments[i].ID] = true
	}
	foreignCommentIDs := make([]string, 0, len(foreignComments))
	for i := range foreignComments {
		c.deletedCommentIDs = append(c.deletedCommentIDs, foreignComments[i].ID)
		deletedCommentSet[foreignComments[i].ID] = true
		foreignCommentIDs = append(foreignCommentIDs, foreignComments[i].ID)
	}

	// Reply subtree sizes for the user's foreign comments, counted before
	// any delete touches them.
	if len(foreignCommentIDs) > 0 {
		type replyCount struct {
			CommentID string
			N         int64
		}
		var counts []replyCount
		if err := db.Model(&models.Reply{}).
			Select("comment_id, COUNT(*) AS n").
			Where("comment_id IN ?", foreignCommentIDs).
			Group("comment_id").Scan(&counts).Error; err != nil {
			return nil, err
		}
		subtree := make(map[string]int64, len(counts))
		for _, rc := range counts {
			subtree[rc.CommentID] = rc.N
		}
		for i := range foreignComments {
			c.postCommentsDelta[foreignComments[i].PostID] += 1 + subtree[foreignComments[i].ID]
		}
	}

	// Replies: everything under a deleted comment, plus the user's own
	// replies anywhere. A user reply under a surviving comment owes that
	// comment a replies_count correction and its post a comments_count one.
	deletedReplySet := make(map[string]bool)
	if len(c.deletedCommentIDs) > 0 {
		var subtreeReplyIDs []string
		if err := db.Model(&models.Reply{}).Where("comment_id IN ?", c.deletedCommentIDs).
			Pluck("id", &subtreeReplyIDs).Error; err != nil {
			return nil, err
		}
		for _, id := range subtreeReplyIDs {
			c.deletedReplyIDs = append(c.deletedReplyIDs, id)
			deletedReplySet[id] = true
		}
	}
	var userReplies []models.Reply
	if err := db.Where("user_id = ?", userID).Find(&userReplies).Error; err != nil {
		return nil, err
	}
	for i := range userReplies {
		r := &userReplies[i]
		if deletedReplySet[r.ID] {
			continue
		}
		c.deletedReplyIDs = append(c.deletedReplyIDs, r.ID)
		deletedReplySet[r.ID] = true
		if !deletedCommentSet[r.CommentID] {
			c.commentReplies[r.CommentID]++
			c.postCommentsDelta[r.PostID]++
		}
	}

	// Likes the user placed on content that survives.
	var userPostLikes []models.PostLike
	if err := db.Where("user_id = ?", userID).Find(&userPostLikes).Error; err != nil {
		return nil, err
	}
	ownedPostSet := make(map[string]bool, len(c.ownedPostIDs))
	for _, id := range c.ownedPostIDs {
		ownedPostSet[id] = true
	}
	for i := range userPostLikes {
		if !ownedPostSet[userPostLikes[i].PostID] {
			c.postLikesDelta[userPostLikes[i].PostID]++
		}
	}

	var userCommentLikes []models.CommentLike
	if err := db.Where("user_id = ?", userID).Find(&userCommentLikes).Error; err != nil {
		return nil, err
	}
	for i := range userCommentLikes {
		if !deletedCommentSet[userCommentLikes[i].CommentID] {
			c.commentLikesDelta[userCommentLikes[i].CommentID]++
		}
	}

	var userReplyLikes []models.ReplyLike
	if err := db.Where("user_id = ?", userID).Find(&userReplyLikes).Error; err != nil {
		return nil, err
	}
	for i := range userReplyLikes {
		if !deletedReplySet[userReplyLikes[i].ReplyID] {
			c.replyLikesDelta[userReplyLikes[i].ReplyID]++
		}
	}

	return c, nil
}

func applyCounterCorrections(tx *gorm.DB, model interface{}, column string, deltas map[string]int64) error {
	for id, delta := range deltas {
		if delta == 0 {
			continue
		}
		if err := tx.Model(model).Where("id = ?", id).
			Update(column, gorm.Expr(column+" - ?", delta)).Error; err != nil {
			return err
		}
	}
	return nil
}

// DeleteAccount removes a user and their entire footprint: owned posts
// with full per-post cascades, authored comments and replies elsewhere,
// likes they placed, notifications they sent or received, and their
// revoked-token rows. Counters on surviving content are corrected from a
// closure computed before any delete runs. Blob files are removed after
// commit, and the user row's absence is verified as a post-condition.
func DeleteAccount(db *gorm.DB, blobs storage.BlobStore, userID string) error {
	var user models.User
	if err := db.Where("id = ?", userID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return types.NotFound("User not found")
		}
		return err
	}

	c, err := buildAccountClosure(db, userID)
	if err != nil {
		return err
	}

	txErr := db.Transaction(func(tx *gorm.DB) error {
		// Likes first, then replies, then comments, then posts. Each delete
		// set includes both the user's own rows and the rows attached to
		// content being removed.
		replyLikeScope := tx.Where("user_id = ?", userID)
		if len(c.deletedReplyIDs) > 0 {
			replyLikeScope = replyLikeScope.Or("reply_id IN ?", c.deletedReplyIDs)
		}
		if err := replyLikeScope.Delete(&models.ReplyLike{}).Error; err != nil {
			return err
		}

		commentLikeScope := tx.Where("user_id = ?", userID)
		if len(c.deletedCommentIDs) > 0 {
			commentLikeScope = commentLikeScope.Or("comment_id IN ?", c.deletedCommentIDs)
		}
		if err := commentLikeScope.Delete(&models.CommentLike{}).Error; err != nil {
			return err
		}

		postLikeScope := tx.Where("user_id = ?", userID)
		if len(c.ownedPostIDs) > 0 {
			postLikeScope = postLikeScope.Or("post_id IN ?", c.ownedPostIDs)
		}
		if err := postLikeScope.Delete(&models.PostLike{}).Error; err != nil {
			return err
		}

		if len(c.deletedReplyIDs) > 0 {
			if err := tx.Where("id IN ?", c.deletedReplyIDs).Delete(&models.Reply{}).Error; err != nil {
				return err
			}
		}
		if len(c.deletedCommentIDs) > 0 {
			if err := tx.Where("id IN ?", c.deletedCommentIDs).Delete(&models.Comment{}).Error; err != nil {
				return err
			}
		}

		notifScope := tx.Where("recipient_id = ? OR actor_id = ?", userID, userID)
		if len(c.ownedPostIDs) > 0 {
			notifScope = notifScope.Or("post_id IN ?", c.ownedPostIDs)
		}
		if len(c.deletedCommentIDs) > 0 {
			notifScope = notifScope.Or("comment_id IN ?", c.deletedCommentIDs)
		}
		if len(c.deletedReplyIDs) > 0 {
			notifScope = notifScope.Or("reply_id IN ?", c.deletedReplyIDs)
		}
		if err := notifScope.Delete(&models.Notification{}).Error; err != nil {
			return err
		}

		if len(c.ownedPostIDs) > 0 {
			if err := tx.Where("post_id IN ?", c.ownedPostIDs).Delete(&models.PostFile{}).Error; err != nil {
				return err
			}
			if err := tx.Where("id IN ?", c.ownedPostIDs).Delete(&models.Post{}).Error; err != nil {
				return err
			}
		}

		if err := applyCounterCorrections(tx, &models.Post{}, "comments_count", c.postCommentsDelta); err != nil {
			return err
		}
		if err := applyCounterCorrections(tx, &models.Post{}, "likes_count", c.postLikesDelta); err != nil {
			return err
		}
		if err := applyCounterCorrections(tx, &models.Comment{}, "replies_count", c.commentReplies); err != nil {
			return err
		}
		if err := applyCounterCorrections(tx, &models.Comment{}, "likes_count", c.commentLikesDelta); err != nil {
			return err
		}
		if err := applyCounterCorrections(tx, &models.Reply{}, "likes_count", c.replyLikesDelta); err != nil {
			return err
		}

		if err := tx.Where("user_id = ?", userID).Delete(&models.RevokedToken{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", userID).Delete(&models.User{}).Error
	})
	if txErr != nil {
		return txErr
	}

	deleteBlobs(blobs, c.fileIDs)

	// Post-condition: the user row must be gone.
	var remaining int64
	if err := db.Model(&models.User{}).Where("id = ?", userID).Count(&remaining).Error; err != nil {
		return err
	}
	if remaining > 0 {
		logger.L().Error("account delete left user row behind", zap.String("user_id", userID))
		return types.Inconsistency("Account deletion incomplete")
	}
	return nil
}
