// user.go
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

// User statuses
const (
	UserStatusActive   = "active"
	UserStatusInactive = "inactive"
)

// User represents a registered account
type User struct {
	ID           string `gorm:"type:char(36);primaryKey"`
	Username     string `gorm:"size:20;not null;uniqueIndex"`
	Email        string `gorm:"size:255;not null;uniqueIndex"`
	PasswordHash string `gorm:"size:255;not null"`
	FullName     string `gorm:"size:100;not null"`
	Bio          string `gorm:"size:500"`
	Status       string `gorm:"size:16;not null;default:active;index"`
	CreatedAt    time.Time
}

// BeforeCreate assigns a uuid primary key when none was set
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// RevokedToken represents a blacklisted JWT, keyed by its JTI claim.
// Rows are pruned lazily once their expiry passes.
type RevokedToken struct {
	ID        string `gorm:"type:char(36);primaryKey"`
	JTI       string `gorm:"column:jti;type:char(36);not null;uniqueIndex"`
	TokenType string `gorm:"size:16;not null"`
	UserID    string `gorm:"type:char(36);not null;index"`
	RevokedAt time.Time
	ExpiresAt *int64 // unix seconds, nil when the token carried no expiry
}

// BeforeCreate assigns a uuid primary key when none was set
func (t *RevokedToken) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}

// TableName overrides the table name for User
func (User) TableName() string {
	return "users"
}

// TableName overrides the table name for RevokedToken
func (RevokedToken) TableName() string {
	return "revoked_tokens"
}
