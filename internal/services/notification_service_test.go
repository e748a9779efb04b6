// notification_service_test.go
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
	"testing"
	"time"

	"github.com/localnerve/devshare/internal/models"
	"github.com/localnerve/devshare/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedNotification(t *testing.T, db *gorm.DB, recipientID, actorID, notifType string, postID *string, age time.Duration) *models.Notification {
	t.Helper()
	n := &models.Notification{
		RecipientID: recipientID,
		ActorID:     actorID,
		Type:        notifType,
		Message:     "m",
		PostID:      postID,
	}
	require.NoError(t, db.Create(n).Error)
	if age > 0 {
		require.NoError(t, db.Model(&models.Notification{}).Where("id = ?", n.ID).
			Update("created_at", time.Now().UTC().Add(-age)).Error)
	}
	return n
}

func TestListNotificationsEnriched(t *testing.T) {
	db := testDB(t)
	alice := mkUser(t, db, "alice60")
	bob := mkUser(t, db, "bobby60")
	post := mkPost(t, db, alice.ID, "enriched post")

	newest := seedNotification(t, db, alice.ID, bob.ID, models.NotifPostLiked, &post.ID, 0)
	seedNotification(t, db, alice.ID, bob.ID, models.NotifCommentAdded, &post.ID, time.Minute)
	seedNotification(t, db, bob.ID, alice.ID, models.NotifPostLiked, nil, 0) // not alice's

	page, err := ListNotifications(db, alice.ID, 1, 10)
	require.NoError(t, err)
	require.Len(t, page.Notifications, 2)
	assert.EqualValues(t, 2, page.Pagination.Total)
	assert.EqualValues(t, 2, page.UnreadCount)

	// newest first, actor snapshot and post title filled in
	assert.Equal(t, newest.ID, page.Notifications[0].ID)
	assert.Equal(t, bob.Username, page.Notifications[0].Actor.Username)
	assert.Equal(t, "enriched post", page.Notifications[0].PostTitle)
}

func TestListNotificationsGoneActorAndPost(t *testing.T) {
	db := testDB(t)
	alice := mkUser(t, db, "alice61")
	fake := "00000000-0000-0000-0000-000000000009"
	seedNotification(t, db, alice.ID, fake, models.NotifPostLiked, &fake, 0)

	page, err := ListNotifications(db, alice.ID, 1, 10)
	require.NoError(t, err)
	require.Len(t, page.Notifications, 1)
	assert.Equal(t, "Someone", page.Notifications[0].Actor.Username)
	assert.Empty(t, page.Notifications[0].PostTitle)
}

func TestMarkNotificationReadOwnership(t *testing.T) {
	db := testDB(t)
	alice := mkUser(t, db, "alice62")
	bob := mkUser(t, db, "bobby62")
	n := seedNotification(t, db, alice.ID, bob.ID, models.NotifPostLiked, nil, 0)

	err := MarkNotificationRead(db, bob.ID, n.ID)
	require.Error(t, err)
	assert.True(t, types.IsKind(err, "forbidden"))

	require.NoError(t, MarkNotificationRead(db, alice.ID, n.ID))
	unread, err := UnreadCount(db, alice.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, unread)

	err = MarkNotificationRead(db, alice.ID, "00000000-0000-0000-0000-000000000000")
	require.Error(t, err)
	assert.True(t, types.IsKind(err, "not_found"))
}

func TestMarkAllAndClear(t *testing.T) {
	db := testDB(t)
	alice := mkUser(t, db, "alice63")
	bob := mkUser(t, db, "bobby63")
	seedNotification(t, db, alice.ID, bob.ID, models.NotifPostLiked, nil, 0)
	seedNotification(t, db, alice.ID, bob.ID, models.NotifCommentAdded, nil, 0)
	keep := seedNotification(t, db, bob.ID, alice.ID, models.NotifPostLiked, nil, 0)

	updated, err := MarkAllNotificationsRead(db, alice.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, updated)

	// second pass finds nothing unread
	updated, err = MarkAllNotificationsRead(db, alice.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, updated)

	deleted, err := ClearNotifications(db, alice.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, deleted)
	assert.EqualValues(t, 0, count(t, db, &models.Notification{}, "recipient_id = ?", alice.ID))

	// bob's row untouched
	assert.EqualValues(t, 1, count(t, db, &models.Notification{}, "id = ?", keep.ID))
}

func TestDeleteNotificationOwnership(t *testing.T) {
	db := testDB(t)
	alice := mkUser(t, db, "alice64")
	bob := mkUser(t, db, "bobby64")
	n := seedNotification(t, db, alice.ID, bob.ID, models.NotifPostLiked, nil, 0)

	err := DeleteNotification(db, bob.ID, n.ID)
	require.Error(t, err)
	assert.True(t, types.IsKind(err, "forbidden"))

	require.NoError(t, DeleteNotification(db, alice.ID, n.ID))
	err = DeleteNotification(db, alice.ID, n.ID)
	require.Error(t, err)
	assert.True(t, types.IsKind(err, "not_found"))
}
