// auth_service.go
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
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/localnerve/devshare/internal/config"
	"github.com/localnerve/devshare/internal/models"
	"github.com/localnerve/devshare/internal/types"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"

	passwordSpecials = "@#$%&*!?"
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// Claims are the JWT claims carried by both token types. Type
// discriminates access from refresh so one cannot stand in for the other.
type Claims struct {
	TokenType string `json:"type"`
	jwt.RegisteredClaims
}

// TokenPair is the result of login and refresh.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// RegisterInput is the payload for account creation.
type RegisterInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
}

// ProfileView is the API shape of an account.
type ProfileView struct {
	ID            string    `json:"id"`
	Username      string    `json:"username"`
	Email         string    `json:"email,omitempty"`
	FullName      string    `json:"full_name,omitempty"`
	Bio           string    `json:"bio,omitempty"`
	PostsCount    int64     `json:"posts_count"`
	LikesReceived int64     `json:"likes_received"`
	CreatedAt     time.Time `json:"created_at"`
}

// validateUsername enforces 3-20 alphanumeric characters containing at
// least one letter and one digit.
func validateUsername(username string) error {
	if len(username) < 3 || len(username) > 20 {
		return types.Validation("Username must be 3-20 characters")
	}
	hasLetter, hasDigit := false, false
	for _, r := range username {
		switch {
		case unicode.IsLetter(r) && r < 128:
			hasLetter = true
		case r >= '0' && r <= '9':
			hasDigit = true
		default:
			return types.Validation("Username may only contain letters and digits")
		}
	}
	if !hasLetter || !hasDigit {
		return types.Validation("Username must contain at least one letter and one digit")
	}
	return nil
}

// validatePassword enforces 8+ characters with an uppercase letter, a
// digit, and a special character from the allowed set.
func validatePassword(password string) error {
	if len(password) < 8 {
		return types.Validation("Password must be at least 8 characters")
	}
	hasUpper, hasDigit, hasSpecial := false, false, false
	for _, r := range password {
		switch {
		case r >= 'A' && r <= 'Z':
			hasUpper = true
		case r >= 'a' && r <= 'z':
		case r >= '0' && r <= '9':
			hasDigit = true
		case strings.ContainsRune(passwordSpecials, r):
			hasSpecial = true
		default:
			return types.Validation("Password contains an invalid character")
		}
	}
	if !hasUpper || !hasDigit || !hasSpecial {
		return types.Validation("Password must contain an uppercase letter, a digit, and one of " + passwordSpecials)
	}
	return nil
}

// Register creates a new account. Username and email collisions map to a
// conflict so the handler can surface which field clashed.
func Register(db *gorm.DB, input RegisterInput) (*ProfileView, error) {
	input.Username = strings.TrimSpace(input.Username)
	input.Email = strings.TrimSpace(strings.ToLower(input.Email))

	if err := validateUsername(input.Username); err != nil {
		return nil, err
	}
	if !emailPattern.MatchString(input.Email) {
		return nil, types.Validation("Invalid email address")
	}
	if err := validatePassword(input.Password); err != nil {
		return nil, err
	}

	var count int64
	if err := db.Model(&models.User{}).Where("username = ?", input.Username).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, types.Conflict("Username already taken")
	}
	if err := db.Model(&models.User{}).Where("email = ?", input.Email).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, types.Conflict("Email already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := models.User{
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: string(hash),
		FullName:     strings.TrimSpace(input.FullName),
		Status:       models.UserStatusActive,
	}
	if err := db.Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, types.Conflict("Username or email already registered")
		}
		return nil, err
	}

	return &ProfileView{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		FullName:  user.FullName,
		CreatedAt: user.CreatedAt,
	}, nil
}

// IssueTokens signs a fresh access/refresh pair for a user.
func IssueTokens(cfg *config.Config, userID string) (*TokenPair, error) {
	now := time.Now().UTC()
	access, err := signToken(cfg.JWTSecret, Claims{
		TokenType: TokenTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(cfg.AccessTokenTTL) * time.Minute)),
		},
	})
	if err != nil {
		return nil, err
	}
	refresh, err := signToken(cfg.JWTSecret, Claims{
		TokenType: TokenTypeRefresh,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(cfg.RefreshTokenTTL) * time.Hour)),
		},
	})
	if err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func signToken(secret string, claims Claims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// ParseToken validates a token's signature and expiry and returns its claims.
func ParseToken(secret, tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return nil, types.Unauthorized("Invalid or expired token")
	}
	return claims, nil
}

// Login authenticates by username or email and returns a token pair.
// Inactive accounts cannot log in.
func Login(db *gorm.DB, cfg *config.Config, identifier, password string) (*TokenPair, *ProfileView, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || password == "" {
		return nil, nil, types.Validation("Username and password are required")
	}

	var user models.User
	err := db.Where("username = ? OR email = ?", identifier, strings.ToLower(identifier)).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, types.Unauthorized("Invalid credentials")
		}
		return nil, nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, nil, types.Unauthorized("Invalid credentials")
	}
	if user.Status != models.UserStatusActive {
		return nil, nil, types.Forbidden("Account is inactive")
	}

	pair, err := IssueTokens(cfg, user.ID)
	if err != nil {
		return nil, nil, err
	}
	return pair, &ProfileView{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		FullName:  user.FullName,
		Bio:       user.Bio,
		CreatedAt: user.CreatedAt,
	}, nil
}

// RevokeToken blacklists a token by jti until its natural expiry.
func RevokeToken(db *gorm.DB, claims *Claims) error {
	revoked := models.RevokedToken{
		JTI:       claims.ID,
		TokenType: claims.TokenType,
		UserID:    claims.Subject,
		RevokedAt: time.Now().UTC(),
	}
	if claims.ExpiresAt != nil {
		exp := claims.ExpiresAt.Unix()
		revoked.ExpiresAt = &exp
	}
	if err := db.Create(&revoked).Error; err != nil {
		// Revoking an already-revoked token is a no-op.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil
		}
		return err
	}
	return nil
}

// IsTokenRevoked reports whether a jti is on the blacklist. Expired
// blacklist rows are pruned opportunistically on the way through.
func IsTokenRevoked(db *gorm.DB, jti string) (bool, error) {
	db.Where("expires_at IS NOT NULL AND expires_at < ?", time.Now().UTC().Unix()).
		Delete(&models.RevokedToken{})

	var count int64
	if err := db.Model(&models.RevokedToken{}).Where("jti = ?", jti).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Refresh rotates a refresh token: the presented token is revoked and a
// new pair is issued. A revoked or non-refresh token is rejected.
func Refresh(db *gorm.DB, cfg *config.Config, refreshToken string) (*TokenPair, error) {
	claims, err := ParseToken(cfg.JWTSecret, refreshToken)
	if err != nil {
		return nil, err
	}
	if claims.TokenType != TokenTypeRefresh {
		return nil, types.Unauthorized("Refresh token required")
	}
	revoked, err := IsTokenRevoked(db, claims.ID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, types.Unauthorized("Token has been revoked")
	}

	var count int64
	if err := db.Model(&models.User{}).
		Where("id = ? AND status = ?", claims.Subject, models.UserStatusActive).
		Count(&count).Error; err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, types.Unauthorized("Account no longer active")
	}

	if err := RevokeToken(db, claims); err != nil {
		return nil, err
	}
	return IssueTokens(cfg, claims.Subject)
}

// Logout revokes the presented access token and, when provided, the
// companion refresh token.
func Logout(db *gorm.DB, cfg *config.Config, accessClaims *Claims, refreshToken string) error {
	if err := RevokeToken(db, accessClaims); err != nil {
		return err
	}
	if refreshToken == "" {
		return nil
	}
	refreshClaims, err := ParseToken(cfg.JWTSecret, refreshToken)
	if err != nil {
		// An unparseable refresh token cannot be used again anyway.
		return nil
	}
	return RevokeToken(db, refreshClaims)
}

// VerifyPassword re-checks a user's password. Used to gate destructive
// operations like account deletion.
func VerifyPassword(db *gorm.DB, userID, password string) error {
	var user models.User
	if err := db.Where("id = ?", userID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return types.NotFound("User not found")
		}
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return types.Unauthorized("Incorrect password")
	}
	return nil
}
