// notification.go
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

// Notification types
const (
	NotifPostLiked    = "post_liked"
	NotifCommentAdded = "comment_added"
	NotifCommentLiked = "comment_liked"
	NotifReplyAdded   = "reply_added"
	NotifReplyLiked   = "reply_liked"
)

// Notification is a fan-out record for a recipient. The type determines
// which subset of the context chain (PostID/CommentID/ReplyID) is populated:
// post_liked carries only the post, comment events carry post+comment,
// reply events carry all three.
type Notification struct {
	ID          string    `gorm:"type:char(36);primaryKey"`
	RecipientID string    `gorm:"type:char(36);not null;index:idx_notifications_recipient_created,priority:1"`
	ActorID     string    `gorm:"type:char(36);not null;index"`
	Type        string    `gorm:"size:32;not null"`
	Message     string    `gorm:"size:500"`
	PostID      *string   `gorm:"type:char(36);index"`
	CommentID   *string   `gorm:"type:char(36);index"`
	ReplyID     *string   `gorm:"type:char(36);index"`
	Read        bool      `gorm:"column:is_read;not null;default:false"`
	CreatedAt   time.Time `gorm:"index:idx_notifications_recipient_created,priority:2"`
}

// BeforeCreate assigns a uuid primary key when none was set
func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	return nil
}

// TableName overrides the table name for Notification
func (Notification) TableName() string {
	return "notifications"
}
