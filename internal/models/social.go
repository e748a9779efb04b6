// social.go
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

package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Comment represents a top-level comment on a post
type Comment struct {
	ID           string `gorm:"type:char(36);primaryKey"`
	PostID       string `gorm:"type:char(36);not null;index"`
	UserID       string `gorm:"type:char(36);not null;index"`
	Content      string `gorm:"size:1000;not null"`
	LikesCount   int64  `gorm:"not null;default:0"`
	RepliesCount int64  `gorm:"not null;default:0"`
	CreatedAt    time.Time
	// UpdatedAt stays null until the first edit
	UpdatedAt *time.Time `gorm:"autoUpdateTime:false"`
}

// Reply represents a nested reply under a comment. PostID is denormalized
// so reply queries never have to join through the comment.
type Reply struct {
	ID         string `gorm:"type:char(36);primaryKey"`
	CommentID  string `gorm:"type:char(36);not null;index"`
	PostID     string `gorm:"type:char(36);not null;index"`
	UserID     string `gorm:"type:char(36);not null;index"`
	Content    string `gorm:"size:1000;not null"`
	LikesCount int64  `gorm:"not null;default:0"`
	CreatedAt  time.Time
	UpdatedAt  *time.Time `gorm:"autoUpdateTime:false"`
}

// PostLike is a (user, post) relation. The composite unique index is the
// authoritative guard against concurrent double-likes; application-level
// pre-checks are best effort only.
type PostLike struct {
	ID        string `gorm:"type:char(36);primaryKey"`
	UserID    string `gorm:"type:char(36);not null;uniqueIndex:idx_post_likes_user_post,priority:1;index"`
	PostID    string `gorm:"type:char(36);not null;uniqueIndex:idx_post_likes_user_post,priority:2;index"`
	CreatedAt time.Time
}

// CommentLike is a (user, comment) relation with the post id denormalized
// for cascade lookups.
type CommentLike struct {
	ID        string `gorm:"type:char(36);primaryKey"`
	UserID    string `gorm:"type:char(36);not null;uniqueIndex:idx_comment_likes_user_comment,priority:1;index"`
	CommentID string `gorm:"type:char(36);not null;uniqueIndex:idx_comment_likes_user_comment,priority:2;index"`
	PostID    string `gorm:"type:char(36);not null;index"`
	CreatedAt time.Time
}

// ReplyLike is a (user, reply) relation with comment and post ids
// denormalized for cascade lookups.
type ReplyLike struct {
	ID        string `gorm:"type:char(36);primaryKey"`
	UserID    string `gorm:"type:char(36);not null;uniqueIndex:idx_reply_likes_user_reply,priority:1;index"`
	ReplyID   string `gorm:"type:char(36);not null;uniqueIndex:idx_reply_likes_user_reply,priority:2;index"`
	CommentID string `gorm:"type:char(36);not null;index"`
	PostID    string `gorm:"type:char(36);not null;index"`
	CreatedAt time.Time
}

// BeforeCreate assigns a uuid primary key when none was set
func (c *Comment) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// BeforeCreate assigns a uuid primary key when none was set
func (r *Reply) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

// BeforeCreate assigns a uuid primary key when none was set
func (l *PostLike) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	return nil
}

// BeforeCreate assigns a uuid primary key when none was set
func (l *CommentLike) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	return nil
}

// BeforeCreate assigns a uuid primary key when none was set
func (l *ReplyLike) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	return nil
}

// TableName overrides the table name for Comment
func (Comment) TableName() string {
	return "comments"
}

// TableName overrides the table name for Reply
func (Reply) TableName() string {
	return "replies"
}

// TableName overrides the table name for PostLike
func (PostLike) TableName() string {
	return "post_likes"
}

// TableName overrides the table name for CommentLike
func (CommentLike) TableName() string {
	return "comment_likes"
}

// TableName overrides the table name for ReplyLike
func (ReplyLike) TableName() string {
	return "reply_likes"
}
