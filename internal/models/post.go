// post.go
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
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Post represents a project post with denormalized interaction counters.
// LikesCount mirrors the live count of PostLike rows; CommentsCount mirrors
// the live count of Comment rows plus Reply rows under this post. The
// cascade and counter-maintenance services are the only writers of either.
type Post struct {
	ID            string                      `gorm:"type:char(36);primaryKey"`
	UserID        string                      `gorm:"type:char(36);not null;index;index:idx_posts_user_created,priority:1"`
	Title         string                      `gorm:"size:200;not null"`
	Description   string                      `gorm:"size:2000;not null"`
	TechStack     datatypes.JSONSlice[string] `gorm:"not null"`
	GithubLink    string                      `gorm:"size:500"`
	Files         []PostFile                  `gorm:"foreignKey:PostID;references:ID"`
	LikesCount    int64                       `gorm:"not null;default:0"`
	CommentsCount int64                       `gorm:"not null;default:0"`
	CreatedAt     time.Time                   `gorm:"index:idx_posts_created_at;index:idx_posts_user_created,priority:2"`
	UpdatedAt     *time.Time                  `gorm:"autoUpdateTime:false"`
}

// BeforeCreate assigns a uuid primary key when none was set
func (p *Post) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// PostFile represents file metadata embedded in a post. The raw bytes live
// in the blob store under FileID; the row's lifecycle is tied to its post.
type PostFile struct {
	ID          string `gorm:"type:char(36);primaryKey"`
	PostID      string `gorm:"type:char(36);not null;index"`
	FileID      string `gorm:"type:char(36);not null"`
	Filename    string `gorm:"size:255;not null"`
	ContentType string `gorm:"size:128"`
	Size        int64  `gorm:"not null"`
}

// BeforeCreate assigns a uuid primary key when none was set
func (f *PostFile) BeforeCreate(tx *gorm.DB) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	return nil
}

// TableName overrides the table name for Post
func (Post) TableName() string {
	return "posts"
}

// TableName overrides the table name for PostFile
func (PostFile) TableName() string {
	return "post_files"
}
