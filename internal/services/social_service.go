// social_service.go
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
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/localnerve/devshare/internal/models"
	"github.com/localnerve/devshare/internal/types"
	"gorm.io/gorm"
)

const maxCommentLength = 1000

// UserInfo is the embedded author snapshot returned inside comments,
// replies, and like listings.
type UserInfo struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// LikeStatus is the result of a like toggle.
type LikeStatus struct {
	Liked      bool  `json:"liked"`
	LikesCount int64 `json:"likes_count"`
}

// CommentView is the API shape of a comment, optionally with its replies.
type CommentView struct {
	ID           string      `json:"id"`
	PostID       string      `json:"post_id"`
	Content      string      `json:"content"`
	User         *UserInfo   `json:"user"`
	LikesCount   int64       `json:"likes_count"`
	RepliesCount int64       `json:"replies_count"`
	Liked        bool        `json:"liked"`
	Replies      []ReplyView `json:"replies,omitempty"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    *time.Time  `json:"updated_at,omitempty"`
}

// ReplyView is the API shape of a reply.
type ReplyView struct {
	ID         string     `json:"id"`
	CommentID  string     `json:"comment_id"`
	PostID     string     `json:"post_id"`
	Content    string     `json:"content"`
	User       *UserInfo  `json:"user"`
	LikesCount int64      `json:"likes_count"`
	Liked      bool       `json:"liked"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  *time.Time `json:"updated_at,omitempty"`
}

// LikeView is one entry in a like listing.
type LikeView struct {
	User      *UserInfo `json:"user"`
	CreatedAt time.Time `json:"created_at"`
}

func userInfo(db *gorm.DB, userID string) *UserInfo {
	var user models.User
	if err := db.Select("id", "username").Where("id = ?", userID).First(&user).Error; err != nil {
		return &UserInfo{ID: userID, Username: "Someone"}
	}
	return &UserInfo{ID: user.ID, Username: user.Username}
}

// userInfoMap bulk-loads author snapshots for a set of user ids.
func userInfoMap(db *gorm.DB, userIDs []string) map[string]*UserInfo {
	result := make(map[string]*UserInfo, len(userIDs))
	if len(userIDs) == 0 {
		return result
	}
	var users []models.User
	db.Select("id", "username").Where("id IN ?", userIDs).Find(&users)
	for i := range users {
		result[users[i].ID] = &UserInfo{ID: users[i].ID, Username: users[i].Username}
	}
	return result
}

func infoOrFallback(infos map[string]*UserInfo, userID string) *UserInfo {
	if info, ok := infos[userID]; ok {
		return info
	}
	return &UserInfo{ID: userID, Username: "Someone"}
}

func validateContent(content string) (string, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return "", types.Validation("Content cannot be empty")
	}
	if len(content) > maxCommentLength {
		return "", types.Validation(fmt.Sprintf("Content cannot exceed %d characters", maxCommentLength))
	}
	return content, nil
}

// TogglePostLike likes a post when no like from the user exists, otherwise
// removes the existing like. The post's likes_count follows the mutation.
func TogglePostLike(db *gorm.DB, postID, userID string) (*LikeStatus, error) {
	var post models.Post
	if err := db.Where("id = ?", postID).First(&post).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.NotFound("Post not found")
		}
		return nil, err
	}

	var existing models.PostLike
	err := db.Where("user_id = ? AND post_id = ?", userID, postID).First(&existing).Error

	liked := false
	txErr := db.Transaction(func(tx *gorm.DB) error {
		if err == nil {
			res := tx.Delete(&models.PostLike{}, "user_id = ? AND post_id = ?", userID, postID)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return nil
			}
			return tx.Model(&models.Post{}).Where("id = ?", postID).
				Update("likes_count", gorm.Expr("likes_count - 1")).Error
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		like := models.PostLike{UserID: userID, PostID: postID}
		if err := tx.Create(&like).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return types.Conflict("Post already liked")
			}
			return err
		}
		liked = true
		return tx.Model(&models.Post{}).Where("id = ?", postID).
			Update("likes_count", gorm.Expr("likes_count + 1")).Error
	})
	if txErr != nil {
		return nil, txErr
	}

	if liked {
		Notify(db, post.UserID, userID, models.NotifPostLiked,
			fmt.Sprintf("%s liked your post \"%s\"", Username(db, userID), post.Title),
			NotifyContext{PostID: postID})
	}

	db.Select("likes_count").Where("id = ?", postID).First(&post)
	return &LikeStatus{Liked: liked, LikesCount: post.LikesCount}, nil
}

// ToggleCommentLike likes or unlikes a comment.
func ToggleCommentLike(db *gorm.DB, commentID, userID string) (*LikeStatus, error) {
	var comment models.Comment
	if err := db.Where("id = ?", commentID).First(&comment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.NotFound("Comment not found")
		}
		return nil, err
	}
	var post models.Post
	if err := db.Select("id", "user_id", "title").Where("id = ?", comment.PostID).First(&post).Error; err != nil {
		return nil, err
	}

	var existing models.CommentLike
	err := db.Where("user_id = ? AND comment_id = ?", userID, commentID).First(&existing).Error

	liked := false
	txErr := db.Transaction(func(tx *gorm.DB) error {
		if err == nil {
			res := tx.Delete(&models.CommentLike{}, "user_id = ? AND comment_id = ?", userID, commentID)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return nil
			}
			return tx.Model(&models.Comment{}).Where("id = ?", commentID).
				Update("likes_count", gorm.Expr("likes_count - 1")).Error
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		like := models.CommentLike{UserID: userID, CommentID: commentID, PostID: comment.PostID}
		if err := tx.Create(&like).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return types.Conflict("Comment already liked")
			}
			return err
		}
		liked = true
		return tx.Model(&models.Comment{}).Where("id = ?", commentID).
			Update("likes_count", gorm.Expr("likes_count + 1")).Error
	})
	if txErr != nil {
		return nil, txErr
	}

	if liked {
		actor := Username(db, userID)
		nctx := NotifyContext{PostID: comment.PostID, CommentID: commentID}
		Notify(db, comment.UserID, userID, models.NotifCommentLiked,
			fmt.Sprintf("%s liked your comment", actor), nctx)
		if post.UserID != comment.UserID {
			Notify(db, post.UserID, userID, models.NotifCommentLiked,
				fmt.Sprintf("%s liked a comment on your post \"%s\"", actor, post.Title), nctx)
		}
	}

	db.Select("likes_count").Where("id = ?", commentID).First(&comment)
	return &LikeStatus{Liked: liked, LikesCount: comment.LikesCount}, nil
}

// ToggleReplyLike likes or unlikes a reply.
func ToggleReplyLike(db *gorm.DB, replyID, userID string) (*LikeStatus, error) {
	var reply models.Reply
	if err := db.Where("id = ?", replyID).First(&reply).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.NotFound("Reply not found")
		}
		return nil, err
	}
	var post models.Post
	if err := db.Select("id", "user_id", "title").Where("id = ?", reply.PostID).First(&post).Error; err != nil {
		return nil, err
	}

	var existing models.ReplyLike
	err := db.Where("user_id = ? AND reply_id = ?", userID, replyID).First(&existing).Error

	liked := false
	txErr := db.Transaction(func(tx *gorm.DB) error {
		if err == nil {
			res := tx.Delete(&models.ReplyLike{}, "user_id = ? AND reply_id = ?", userID, replyID)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return nil
			}
			return tx.Model(&models.Reply{}).Where("id = ?", replyID).
				Update("likes_count", gorm.Expr("likes_count - 1")).Error
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		like := models.ReplyLike{
			UserID:    userID,
			ReplyID:   replyID,
			CommentID: reply.CommentID,
			PostID:    reply.PostID,
		}
		if err := tx.Create(&like).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return types.Conflict("Reply already liked")
			}
			return err
		}
		liked = true
		return tx.Model(&models.Reply{}).Where("id = ?", replyID).
			Update("likes_count", gorm.Expr("likes_count + 1")).Error
	})
	if txErr != nil {
		return nil, txErr
	}

	if liked {
		actor := Username(db, userID)
		nctx := NotifyContext{PostID: reply.PostID, CommentID: reply.CommentID, ReplyID: replyID}
		Notify(db, reply.UserID, userID, models.NotifReplyLiked,
			fmt.Sprintf("%s liked your reply", actor), nctx)
		if post.UserID != reply.UserID {
			Notify(db, post.UserID, userID, models.NotifReplyLiked,
				fmt.Sprintf("%s liked a reply on your post \"%s\"", actor, post.Title), nctx)
		}
	}

	db.Select("likes_count").Where("id = ?", replyID).First(&reply)
	return &LikeStatus{Liked: liked, LikesCount: reply.LikesCount}, nil
}

// CreateComment adds a comment to a post and bumps the post's
// comments_count. The post owner is notified.
func CreateComment(db *gorm.DB, postID, userID, content string) (*CommentView, error) {
	content, err := validateContent(content)
	if err != nil {
		return nil, err
	}

	var post models.Post
	if err := db.Where("id = ?", postID).First(&post).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.NotFound("Post not found")
		}
		return nil, err
	}

	comment := models.Comment{PostID: postID, UserID: userID, Content: content}
	txErr := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&comment).Error; err != nil {
			return err
		}
		return tx.Model(&models.Post{}).Where("id = ?", postID).
			Update("comments_count", gorm.Expr("comments_count + 1")).Error
	})
	if txErr != nil {
		return nil, txErr
	}

	Notify(db, post.UserID, userID, models.NotifCommentAdded,
		fmt.Sprintf("%s commented on your post \"%s\"", Username(db, userID), post.Title),
		NotifyContext{PostID: postID, CommentID: comment.ID})

	return &CommentView{
		ID:        comment.ID,
		PostID:    comment.PostID,
		Content:   comment.Content,
		User:      userInfo(db, userID),
		CreatedAt: comment.CreatedAt,
	}, nil
}

// CreateReply adds a reply under a comment. A reply counts against both
// the comment's replies_count and the post's comments_count. Both the
// comment author and the post owner are notified.
func CreateReply(db *gorm.DB, commentID, userID, content string) (*ReplyView, error) {
	content, err := validateContent(content)
	if err != nil {
		return nil, err
	}

	var comment models.Comment
	if err := db.Where("id = ?", commentID).First(&comment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.NotFound("Comment not found")
		}
		return nil, err
	}

	var post models.Post
	if err := db.Where("id = ?", comment.PostID).First(&post).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.NotFound("Post not found")
		}
		return nil, err
	}

	reply := models.Reply{
		CommentID: commentID,
		PostID:    comment.PostID,
		UserID:    userID,
		Content:   content,
	}
	txErr := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&reply).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Comment{}).Where("id = ?", commentID).
			Update("replies_count", gorm.Expr("replies_count + 1")).Error; err != nil {
			return err
		}
		return tx.Model(&models.Post{}).Where("id = ?", comment.PostID).
			Update("comments_count", gorm.Expr("comments_count + 1")).Error
	})
	if txErr != nil {
		return nil, txErr
	}

	actor := Username(db, userID)
	nctx := NotifyContext{PostID: comment.PostID, CommentID: commentID, ReplyID: reply.ID}
	Notify(db, comment.UserID, userID, models.NotifReplyAdded,
		fmt.Sprintf("%s replied to your comment", actor), nctx)
	if post.UserID != comment.UserID {
		Notify(db, post.UserID, userID, models.NotifReplyAdded,
			fmt.Sprintf("%s replied to a comment on your post \"%s\"", actor, post.Title), nctx)
	}

	return &ReplyView{
		ID:        reply.ID,
		CommentID: reply.CommentID,
		PostID:    reply.PostID,
		Content:   reply.Content,
		User:      userInfo(db, userID),
		CreatedAt: reply.CreatedAt,
	}, nil
}

// UpdateComment edits a comment's content. Only the author may edit.
func UpdateComment(db *gorm.DB, commentID, userID, content string) (*CommentView, error) {
	content, err := validateContent(content)
	if err != nil {
		return nil, err
	}

	var comment models.Comment
	if err := db.Where("id = ?", commentID).First(&comment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.NotFound("Comment not found")
		}
		return nil, err
	}
	if comment.UserID != userID {
		return nil, types.Forbidden("You can only edit your own comments")
	}

	now := time.Now().UTC()
	if err := db.Model(&comment).Updates(map[string]interface{}{
		"content":    content,
		"updated_at": now,
	}).Error; err != nil {
		return nil, err
	}

	return &CommentView{
		ID:           comment.ID,
		PostID:       comment.PostID,
		Content:      content,
		User:         userInfo(db, comment.UserID),
		LikesCount:   comment.LikesCount,
		RepliesCount: comment.RepliesCount,
		CreatedAt:    comment.CreatedAt,
		UpdatedAt:    &now,
	}, nil
}

// UpdateReply edits a reply's content. Only the author may edit.
func UpdateReply(db *gorm.DB, replyID, userID, content string) (*ReplyView, error) {
	content, err := validateContent(content)
	if err != nil {
		return nil, err
	}

	var reply models.Reply
	if err := db.Where("id = ?", replyID).First(&reply).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.NotFound("Reply not found")
		}
		return nil, err
	}
	if reply.UserID != userID {
		return nil, types.Forbidden("You can only edit your own replies")
	}

	now := time.Now().UTC()
	if err := db.Model(&reply).Updates(map[string]interface{}{
		"content":    content,
		"updated_at": now,
	}).Error; err != nil {
		return nil, err
	}

	return &ReplyView{
		ID:         reply.ID,
		CommentID:  reply.CommentID,
		PostID:     reply.PostID,
		Content:    content,
		User:       userInfo(db, reply.UserID),
		LikesCount: reply.LikesCount,
		CreatedAt:  reply.CreatedAt,
		UpdatedAt:  &now,
	}, nil
}

// ListComments returns a post's comments oldest-first with nested replies
// and per-viewer liked flags.
func ListComments(db *gorm.DB, postID, viewerID string) ([]CommentView, error) {
	var post models.Post
	if err := db.Select("id").Where("id = ?", postID).First(&post).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.NotFound("Post not found")
		}
		return nil, err
	}

	var comments []models.Comment
	if err := db.Where("post_id = ?", postID).Order("created_at ASC").Find(&comments).Error; err != nil {
		return nil, err
	}

	var replies []models.Reply
	if err := db.Where("post_id = ?", postID).Order("created_at ASC").Find(&replies).Error; err != nil {
		return nil, err
	}

	authorIDs := make([]string, 0, len(comments)+len(replies))
	for i := range comments {
		authorIDs = append(authorIDs, comments[i].UserID)
	}
	for i := range replies {
		authorIDs = append(authorIDs, replies[i].UserID)
	}
	infos := userInfoMap(db, authorIDs)

	likedComments := make(map[string]bool)
	likedReplies := make(map[string]bool)
	if viewerID != "" {
		var commentLikes []models.CommentLike
		db.Where("user_id = ? AND post_id = ?", viewerID, postID).Find(&commentLikes)
		for i := range commentLikes {
			likedComments[commentLikes[i].CommentID] = true
		}
		var replyLikes []models.ReplyLike
		db.Where("user_id = ? AND post_id = ?", viewerID, postID).Find(&replyLikes)
		for i := range replyLikes {
			likedReplies[replyLikes[i].ReplyID] = true
		}
	}

	repliesByComment := make(map[string][]ReplyView)
	for i := range replies {
		r := &replies[i]
		repliesByComment[r.CommentID] = append(repliesByComment[r.CommentID], ReplyView{
			ID:         r.ID,
			CommentID:  r.CommentID,
			PostID:     r.PostID,
			Content:    r.Content,
			User:       infoOrFallback(infos, r.UserID),
			LikesCount: r.LikesCount,
			Liked:      likedReplies[r.ID],
			CreatedAt:  r.CreatedAt,
			UpdatedAt:  r.UpdatedAt,
		})
	}

	views := make([]CommentView, 0, len(comments))
	for i := range comments {
		c := &comments[i]
		views = append(views, CommentView{
			ID:           c.ID,
			PostID:       c.PostID,
			Content:      c.Content,
			User:         infoOrFallback(infos, c.UserID),
			LikesCount:   c.LikesCount,
			RepliesCount: c.RepliesCount,
			Liked:        likedComments[c.ID],
			Replies:      repliesByComment[c.ID],
			CreatedAt:    c.CreatedAt,
			UpdatedAt:    c.UpdatedAt,
		})
	}
	return views, nil
}

// ListReplies returns a comment's replies oldest-first.
func ListReplies(db *gorm.DB, commentID, viewerID string) ([]ReplyView, error) {
	var comment models.Comment
	if err := db.Select("id").Where("id = ?", commentID).First(&comment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.NotFound("Comment not found")
		}
		return nil, err
	}

	var replies []models.Reply
	if err := db.Where("comment_id = ?", commentID).Order("created_at ASC").Find(&replies).Error; err != nil {
		return nil, err
	}

	authorIDs := make([]string, 0, len(replies))
	for i := range replies {
		authorIDs = append(authorIDs, replies[i].UserID)
	}
	infos := userInfoMap(db, authorIDs)

	liked := make(map[string]bool)
	if viewerID != "" {
		var replyLikes []models.ReplyLike
		db.Where("user_id = ? AND comment_id = ?", viewerID, commentID).Find(&replyLikes)
		for i := range replyLikes {
			liked[replyLikes[i].ReplyID] = true
		}
	}

	views := make([]ReplyView, 0, len(replies))
	for i := range replies {
		r := &replies[i]
		views = append(views, ReplyView{
			ID:         r.ID,
			CommentID:  r.CommentID,
			PostID:     r.PostID,
			Content:    r.Content,
			User:       infoOrFallback(infos, r.UserID),
			LikesCount: r.LikesCount,
			Liked:      liked[r.ID],
			CreatedAt:  r.CreatedAt,
			UpdatedAt:  r.UpdatedAt,
		})
	}
	return views, nil
}

// ListPostLikes returns who liked a post, newest first.
func ListPostLikes(db *gorm.DB, postID string) ([]LikeView, error) {
	var post models.Post
	if err := db.Select("id").Where("id = ?", postID).First(&post).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.NotFound("Post not found")
		}
		return nil, err
	}
	var likes []models.PostLike
	if err := db.Where("post_id = ?", postID).Order("created_at DESC").Find(&likes).Error; err != nil {
		return nil, err
	}
	userIDs := make([]string, 0, len(likes))
	for i := range likes {
		userIDs = append(userIDs, likes[i].UserID)
	}
	infos := userInfoMap(db, userIDs)
	views := make([]LikeView, 0, len(likes))
	for i := range likes {
		views = append(views, LikeView{
			User:      infoOrFallback(infos, likes[i].UserID),
			CreatedAt: likes[i].CreatedAt,
		})
	}
	return views, nil
}

// ListCommentLikes returns who liked a comment, newest first.
func ListCommentLikes(db *gorm.DB, commentID string) ([]LikeView, error) {
	var comment models.Comment
	if err := db.Select("id").Where("id = ?", commentID).First(&comment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.NotFound("Comment not found")
		}
		return nil, err
	}
	var likes []models.CommentLike
	if err := db.Where("comment_id = ?", commentID).Order("created_at DESC").Find(&likes).Error; err != nil {
		return nil, err
	}
	userIDs := make([]string, 0, len(likes))
	for i := range likes {
		userIDs = append(userIDs, likes[i].UserID)
	}
	infos := userInfoMap(db, userIDs)
	views := make([]LikeView, 0, len(likes))
	for i := range likes {
		views = append(views, LikeView{
			User:      infoOrFallback(infos, likes[i].UserID),
			CreatedAt: likes[i].CreatedAt,
		})
	}
	return views, nil
}

// ListReplyLikes returns who liked a reply, newest first.
func ListReplyLikes(db *gorm.DB, replyID string) ([]LikeView, error) {
	var reply models.Reply
	if err := db.Select("id").Where("id = ?", replyID).First(&reply).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.NotFound("Reply not found")
		}
		return nil, err
	}
	var likes []models.ReplyLike
	if err := db.Where("reply_id = ?", replyID).Order("created_at DESC").Find(&likes).Error; err != nil {
		return nil, err
	}
	userIDs := make([]string, 0, len(likes))
	for i := range likes {
		userIDs = append(userIDs, likes[i].UserID)
	}
	infos := userInfoMap(db, userIDs)
	views := make([]LikeView, 0, len(likes))
	for i := range likes {
		views = append(views, LikeView{
			User:      infoOrFallback(infos, likes[i].UserID),
			CreatedAt: likes[i].CreatedAt,
		})
	}
	return views, nil
}
