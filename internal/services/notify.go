// notify.go
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
	"time"

	"github.com/localnerve/devshare/internal/logger"
	"github.com/localnerve/devshare/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// notifyDedupWindow is how long an unread notification suppresses an
// identical successor. Matches the toggle-storm window: rapid
// like/unlike/like from the same actor produces at most one unread row.
const notifyDedupWindow = time.Hour

// NotifyContext carries the optional target chain of a notification.
// Empty fields are left NULL; the notification type determines which
// subset is populated.
type NotifyContext struct {
	PostID    string
	CommentID string
	ReplyID   string
}

// Username returns the display username for a user id, or "Someone" when
// the user is gone. Used to build human-readable notification messages.
func Username(db *gorm.DB, userID string) string {
	var user models.User
	if err := db.Select("username").Where("id = ?", userID).First(&user).Error; err != nil {
		return "Someone"
	}
	if user.Username == "" {
		return "Someone"
	}
	return user.Username
}

// Notify creates a notification for a recipient. Self-notifications are
// suppressed, as are duplicates: an unread notification with the same
// recipient, actor, type, and context ids created within the last hour.
// Failures are logged and swallowed; notification creation never aborts
// the interaction that triggered it.
func Notify(db *gorm.DB, recipientID, actorID, notifType, message string, nctx NotifyContext) {
	if recipientID == "" || actorID == "" || recipientID == actorID {
		return
	}

	dup := db.Model(&models.Notification{}).
		Where("recipient_id = ? AND actor_id = ? AND type = ? AND is_read = ? AND created_at >= ?",
			recipientID, actorID, notifType, false, time.Now().UTC().Add(-notifyDedupWindow))
	if nctx.PostID != "" {
		dup = dup.Where("post_id = ?", nctx.PostID)
	}
	if nctx.CommentID != "" {
		dup = dup.Where("comment_id = ?", nctx.CommentID)
	}
	if nctx.ReplyID != "" {
		dup = dup.Where("reply_id = ?", nctx.ReplyID)
	}

	var count int64
	if err := dup.Count(&count).Error; err != nil {
		logger.L().Error("notification dedup check failed",
			zap.String("recipient", recipientID), zap.Error(err))
		return
	}
	if count > 0 {
		return
	}

	notification := models.Notification{
		RecipientID: recipientID,
		ActorID:     actorID,
		Type:        notifType,
		Message:     message,
		Read:        false,
	}
	if nctx.PostID != "" {
		notification.PostID = &nctx.PostID
	}
	if nctx.CommentID != "" {
		notification.CommentID = &nctx.CommentID
	}
	if nctx.ReplyID != "" {
		notification.ReplyID = &nctx.ReplyID
	}

	if err := db.Create(&notification).Error; err != nil {
		logger.L().Error("failed to create notification",
			zap.String("recipient", recipientID),
			zap.String("type", notifType),
			zap.Error(err))
	}
}
