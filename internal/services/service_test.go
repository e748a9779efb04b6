// service_test.go
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

	"github.com/glebarez/sqlite"
	"github.com/localnerve/devshare/internal/models"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// testDB opens a fresh in-memory database with the full schema.
func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.RevokedToken{},
		&models.Post{},
		&models.PostFile{},
		&models.Comment{},
		&models.Reply{},
		&models.PostLike{},
		&models.CommentLike{},
		&models.ReplyLike{},
		&models.Notification{},
	))
	return db
}

func mkUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	user := models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "x",
		Status:       models.UserStatusActive,
	}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

func mkPost(t *testing.T, db *gorm.DB, userID, title string) *models.Post {
	t.Helper()
	post := models.Post{
		UserID:      userID,
		Title:       title,
		Description: "a project",
		TechStack:   []string{"go"},
	}
	require.NoError(t, db.Create(&post).Error)
	return &post
}

// mkComment bumps the post counter the way CreateComment does.
func mkComment(t *testing.T, db *gorm.DB, postID, userID, content string) *models.Comment {
	t.Helper()
	comment := models.Comment{PostID: postID, UserID: userID, Content: content}
	require.NoError(t, db.Create(&comment).Error)
	require.NoError(t, db.Model(&models.Post{}).Where("id = ?", postID).
		Update("comments_count", gorm.Expr("comments_count + 1")).Error)
	return &comment
}

// mkReply bumps both counters the way CreateReply does.
func mkReply(t *testing.T, db *gorm.DB, comment *models.Comment, userID, content string) *models.Reply {
	t.Helper()
	reply := models.Reply{
		CommentID: comment.ID,
		PostID:    comment.PostID,
		UserID:    userID,
		Content:   content,
	}
	require.NoError(t, db.Create(&reply).Error)
	require.NoError(t, db.Model(&models.Comment{}).Where("id = ?", comment.ID).
		Update("replies_count", gorm.Expr("replies_count + 1")).Error)
	require.NoError(t, db.Model(&models.Post{}).Where("id = ?", comment.PostID).
		Update("comments_count", gorm.Expr("comments_count + 1")).Error)
	return &reply
}

func likePost(t *testing.T, db *gorm.DB, userID, postID string) {
	t.Helper()
	require.NoError(t, db.Create(&models.PostLike{UserID: userID, PostID: postID}).Error)
	require.NoError(t, db.Model(&models.Post{}).Where("id = ?", postID).
		Update("likes_count", gorm.Expr("likes_count + 1")).Error)
}

func likeComment(t *testing.T, db *gorm.DB, userID string, comment *models.Comment) {
	t.Helper()
	require.NoError(t, db.Create(&models.CommentLike{
		UserID: userID, CommentID: comment.ID, PostID: comment.PostID,
	}).Error)
	require.NoError(t, db.Model(&models.Comment{}).Where("id = ?", comment.ID).
		Update("likes_count", gorm.Expr("likes_count + 1")).Error)
}

func likeReply(t *testing.T, db *gorm.DB, userID string, reply *models.Reply) {
	t.Helper()
	require.NoError(t, db.Create(&models.ReplyLike{
		UserID: userID, ReplyID: reply.ID, CommentID: reply.CommentID, PostID: reply.PostID,
	}).Error)
	require.NoError(t, db.Model(&models.Reply{}).Where("id = ?", reply.ID).
		Update("likes_count", gorm.Expr("likes_count + 1")).Error)
}

func count(t *testing.T, db *gorm.DB, model interface{}, query string, args ...interface{}) int64 {
	t.Helper()
	var n int64
	q := db.Model(model)
	if query != "" {
		q = q.Where(query, args...)
	}
	require.NoError(t, q.Count(&n).Error)
	return n
}

func reloadPost(t *testing.T, db *gorm.DB, id string) *models.Post {
	t.Helper()
	var post models.Post
	require.NoError(t, db.Where("id = ?", id).First(&post).Error)
	return &post
}

func reloadComment(t *testing.T, db *gorm.DB, id string) *models.Comment {
	t.Helper()
	var comment models.Comment
	require.NoError(t, db.Where("id = ?", id).First(&comment).Error)
	return &comment
}
