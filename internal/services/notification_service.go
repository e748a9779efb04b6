// notification_service.go
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
	"time"

	"github.com/localnerve/devshare/internal/models"
	"github.com/localnerve/devshare/internal/types"
	"github.com/localnerve/devshare/internal/utils"
	"gorm.io/gorm"
)

const maxNotificationLimit = 50

// NotificationView is the API shape of a notification, enriched with the
// actor snapshot and, when the context rows still exist, the post title.
type NotificationView struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	Actor     *UserInfo `json:"actor"`
	PostID    *string   `json:"post_id,omitempty"`
	PostTitle string    `json:"post_title,omitempty"`
	CommentID *string   `json:"comment_id,omitempty"`
	ReplyID   *string   `json:"reply_id,omitempty"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

// NotificationPage is a page of notifications plus the envelope counts.
type NotificationPage struct {
	Notifications []NotificationView `json:"notifications"`
	Pagination    utils.Pagination   `json:"pagination"`
	UnreadCount   int64              `json:"unread_count"`
}

// ListNotifications returns a recipient's notifications newest first.
func ListNotifications(db *gorm.DB, userID string, page, limit int) (*NotificationPage, error) {
	page, limit = utils.ValidatePagination(page, limit, maxNotificationLimit)

	var total int64
	if err := db.Model(&models.Notification{}).Where("recipient_id = ?", userID).
		Count(&total).Error; err != nil {
		return nil, err
	}

	var rows []models.Notification
	if err := db.Where("recipient_id = ?", userID).
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, err
	}

	actorIDs := make([]string, 0, len(rows))
	postIDs := make([]string, 0, len(rows))
	for i := range rows {
		actorIDs = append(actorIDs, rows[i].ActorID)
		if rows[i].PostID != nil {
			postIDs = append(postIDs, *rows[i].PostID)
		}
	}
	infos := userInfoMap(db, actorIDs)

	titles := make(map[string]string)
	if len(postIDs) > 0 {
		var posts []models.Post
		db.Select("id", "title").Where("id IN ?", postIDs).Find(&posts)
		for i := range posts {
			titles[posts[i].ID] = posts[i].Title
		}
	}

	views := make([]NotificationView, 0, len(rows))
	for i := range rows {
		n := &rows[i]
		view := NotificationView{
			ID:        n.ID,
			Type:      n.Type,
			Message:   n.Message,
			Actor:     infoOrFallback(infos, n.ActorID),
			PostID:    n.PostID,
			CommentID: n.CommentID,
			ReplyID:   n.ReplyID,
			Read:      n.Read,
			CreatedAt: n.CreatedAt,
		}
		if n.PostID != nil {
			view.PostTitle = titles[*n.PostID]
		}
		views = append(views, view)
	}

	unread, err := UnreadCount(db, userID)
	if err != nil {
		return nil, err
	}

	return &NotificationPage{
		Notifications: views,
		Pagination:    utils.NewPagination(page, limit, total),
		UnreadCount:   unread,
	}, nil
}

// UnreadCount returns the recipient's unread notification count.
func UnreadCount(db *gorm.DB, userID string) (int64, error) {
	var count int64
	err := db.Model(&models.Notification{}).
		Where("recipient_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	return count, err
}

// MarkNotificationRead marks one notification read. Only the recipient may.
func MarkNotificationRead(db *gorm.DB, userID, notificationID string) error {
	var notification models.Notification
	if err := db.Where("id = ?", notificationID).First(&notification).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return types.NotFound("Notification not found")
		}
		return err
	}
	if notification.RecipientID != userID {
		return types.Forbidden("Not your notification")
	}
	return db.Model(&models.Notification{}).Where("id = ?", notificationID).
		Update("is_read", true).Error
}

// MarkAllNotificationsRead marks every unread notification of a recipient.
func MarkAllNotificationsRead(db *gorm.DB, userID string) (int64, error) {
	result := db.Model(&models.Notification{}).
		Where("recipient_id = ? AND is_read = ?", userID, false).
		Update("is_read", true)
	return result.RowsAffected, result.Error
}

// DeleteNotification removes one notification. Only the recipient may.
func DeleteNotification(db *gorm.DB, userID, notificationID string) error {
	var notification models.Notification
	if err := db.Where("id = ?", notificationID).First(&notification).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return types.NotFound("Notification not found")
		}
		return err
	}
	if notification.RecipientID != userID {
		return types.Forbidden("Not your notification")
	}
	return db.Delete(&models.Notification{}, "id = ?", notificationID).Error
}

// ClearNotifications removes all of a recipient's notifications.
func ClearNotifications(db *gorm.DB, userID string) (int64, error) {
	result := db.Where("recipient_id = ?", userID).Delete(&models.Notification{})
	return result.RowsAffected, result.Error
}
