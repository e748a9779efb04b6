// auth.go
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

package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/devshare/internal/config"
	"github.com/localnerve/devshare/internal/middleware"
	"github.com/localnerve/devshare/internal/services"
	"github.com/localnerve/devshare/internal/utils"
	"gorm.io/gorm"
)

// AuthHandler handles registration and the token lifecycle
type AuthHandler struct {
	DB  *gorm.DB
	Cfg *config.Config
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// Register handles POST /api/auth/register
// @Summary Register a new account
// @Description Create an account with username, email, and password
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body services.RegisterInput true "Registration payload"
// @Success 201 {object} services.ProfileView
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var input services.RegisterInput
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, "Invalid request body", fiber.StatusBadRequest, "validation")
	}
	profile, err := services.Register(h.DB, input)
	if err != nil {
		return utils.FromError(c, err)
	}
	return utils.SuccessResponse(c, profile, fiber.StatusCreated)
}

// Login handles POST /api/auth/login
// @Summary Log in
// @Description Authenticate with username or email and receive a token pair
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body loginRequest true "Credentials"
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} utils.ErrorResponseStruct
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var input loginRequest
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, "Invalid request body", fiber.StatusBadRequest, "validation")
	}
	pair, profile, err := services.Login(h.DB, h.Cfg, input.Username, input.Password)
	if err != nil {
		return utils.FromError(c, err)
	}
	return utils.SuccessResponse(c, fiber.Map{
		"access_token":  pair.AccessToken,
		"refresh_token": pair.RefreshToken,
		"user":          profile,
	}, fiber.StatusOK)
}

// Refresh handles POST /api/auth/refresh
// @Summary Rotate a refresh token
// @Description Exchange a refresh token for a new token pair; the old refresh token is revoked
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body refreshRequest true "Refresh token"
// @Success 200 {object} services.TokenPair
// @Failure 401 {object} utils.ErrorResponseStruct
// @Router /auth/refresh [post]
func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var input refreshRequest
	if err := c.BodyParser(&input); err != nil || input.RefreshToken == "" {
		return utils.ErrorResponse(c, "refresh_token is required", fiber.StatusBadRequest, "validation")
	}
	pair, err := services.Refresh(h.DB, h.Cfg, input.RefreshToken)
	if err != nil {
		return utils.FromError(c, err)
	}
	return utils.SuccessResponse(c, pair, fiber.StatusOK)
}

// Logout handles POST /api/auth/logout
// @Summary Log out
// @Description Revoke the presented access token and optional refresh token
// @Tags Auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body refreshRequest false "Optional refresh token to revoke alongside"
// @Success 200 {object} utils.MessageResponseStruct
// @Failure 401 {object} utils.ErrorResponseStruct
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	claims, ok := c.Locals(middleware.LocalsClaims).(*services.Claims)
	if !ok {
		return utils.ErrorResponse(c, "Authorization required", fiber.StatusUnauthorized, "unauthorized")
	}
	var input refreshRequest
	_ = c.BodyParser(&input)
	if err := services.Logout(h.DB, h.Cfg, claims, input.RefreshToken); err != nil {
		return utils.FromError(c, err)
	}
	return utils.MessageResponse(c, "Logged out", fiber.StatusOK)
}
