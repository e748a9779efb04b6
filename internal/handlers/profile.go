// profile.go
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
	"github.com/localnerve/devshare/internal/services"
	"github.com/localnerve/devshare/internal/storage"
	"github.com/localnerve/devshare/internal/utils"
	"gorm.io/gorm"
)

// ProfileHandler handles the authenticated user's profile, their post
// management, and public profile lookups
type ProfileHandler struct {
	DB    *gorm.DB
	Blobs storage.BlobStore
}

type deleteAccountRequest struct {
	Password string `json:"password"`
}

// GetProfile handles GET /api/profile
// @Summary Get own profile
// @Tags Profile
// @Produce json
// @Security BearerAuth
// @Success 200 {object} services.ProfileView
// @Router /profile [get]
func (h *ProfileHandler) GetProfile(c *fiber.Ctx) error {
	profile, err := services.Profile(h.DB, userID(c))
	if err != nil {
		return utils.FromError(c, err)
	}
	return utils.SuccessResponse(c, profile, fiber.StatusOK)
}

// DeleteAccount handles DELETE /api/profile
// @Summary Delete own account
// @Description Remove the account and its entire footprint after password confirmation
// @Tags Profile
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body deleteAccountRequest true "Password confirmation"
// @Success 200 {object} utils.MessageResponseStruct
// @Failure 401 {object} utils.ErrorResponseStruct
// @Router /profile [delete]
func (h *ProfileHandler) DeleteAccount(c *fiber.Ctx) error {
	var input deleteAccountRequest
	if err := c.BodyParser(&input); err != nil || input.Password == "" {
		return utils.ErrorResponse(c, "Password confirmation is required", fiber.StatusBadRequest, "validation")
	}
	uid := userID(c)
	if err := services.VerifyPassword(h.DB, uid, input.Password); err != nil {
		return utils.FromError(c, err)
	}
	if err := services.DeleteAccount(h.DB, h.Blobs, uid); err != nil {
		return utils.FromError(c, err)
	}
	return utils.MessageResponse(c, "Account deleted", fiber.StatusOK)
}

// OwnPosts handles GET /api/profile/posts
// @Summary List own posts
// @Tags Profile
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Param sort query string false "Sort key"
// @Success 200 {object} services.FeedResult
// @Router /profile/posts [get]
func (h *ProfileHandler) OwnPosts(c *fiber.Ctx) error {
	uid := userID(c)
	result, err := services.UserPosts(h.DB, uid, uid, parseFeedQuery(c))
	if err != nil {
		return utils.FromError(c, err)
	}
	setListHeaders(c, result.Pagination.Total, result.Pagination.Page, result.Pagination.Limit)
	return utils.SuccessResponse(c, result, fiber.StatusOK)
}

// GetOwnPost handles GET /api/profile/posts/:id
// @Summary Get one of your posts
// @Tags Profile
// @Produce json
// @Security BearerAuth
// @Param id path string true "Post ID"
// @Success 200 {object} services.PostView
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /profile/posts/{id} [get]
func (h *ProfileHandler) GetOwnPost(c *fiber.Ctx) error {
	view, err := services.GetOwnPost(h.DB, c.Params("id"), userID(c))
	if err != nil {
		return utils.FromError(c, err)
	}
	return utils.SuccessResponse(c, view, fiber.StatusOK)
}

// EditPost handles PUT /api/profile/posts/:id
// @Summary Edit a post
// @Description Update a post's fields and reconcile attachments; only the owner may edit
// @Tags Profile
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path string true "Post ID"
// @Param existing_files formData string false "File ids to keep; omit to keep all"
// @Success 200 {object} services.PostView
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /profile/posts/{id} [put]
func (h *ProfileHandler) EditPost(c *fiber.Ctx) error {
	input, err := parsePostForm(c, true)
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusBadRequest, "validation")
	}
	view, err := services.EditPost(h.DB, h.Blobs, userID(c), c.Params("id"), input)
	if err != nil {
		return utils.FromError(c, err)
	}
	return utils.SuccessResponse(c, view, fiber.StatusOK)
}

// DeletePost handles DELETE /api/profile/posts/:id
// @Summary Delete a post
// @Description Remove a post and its full interaction cascade; only the owner may delete
// @Tags Profile
// @Produce json
// @Security BearerAuth
// @Param id path string true "Post ID"
// @Success 200 {object} utils.MessageResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /profile/posts/{id} [delete]
func (h *ProfileHandler) DeletePost(c *fiber.Ctx) error {
	if err := services.DeletePost(h.DB, h.Blobs, c.Params("id"), userID(c)); err != nil {
		return utils.FromError(c, err)
	}
	return utils.MessageResponse(c, "Post deleted", fiber.StatusOK)
}

// DownloadFile handles GET /api/profile/posts/:id/files/:file_id
// @Summary Download an attachment
// @Description Stream a post attachment
// @Tags Profile
// @Produce octet-stream
// @Security BearerAuth
// @Param id path string true "Post ID"
// @Param file_id path string true "File ID"
// @Success 200 {file} binary
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /profile/posts/{id}/files/{file_id} [get]
func (h *ProfileHandler) DownloadFile(c *fiber.Ctx) error {
	file, rc, err := services.OpenFile(h.DB, h.Blobs, c.Params("id"), c.Params("file_id"))
	if err != nil {
		return utils.FromError(c, err)
	}
	contentType := file.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Set(fiber.HeaderContentType, contentType)
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+file.Filename+`"`)
	return c.SendStream(rc, int(file.Size))
}

// PublicProfile handles GET /api/profile/users/:user_id
// @Summary Get a public profile
// @Tags Profile
// @Produce json
// @Security BearerAuth
// @Param user_id path string true "User ID"
// @Success 200 {object} services.ProfileView
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /profile/users/{user_id} [get]
func (h *ProfileHandler) PublicProfile(c *fiber.Ctx) error {
	profile, err := services.PublicProfile(h.DB, c.Params("user_id"))
	if err != nil {
		return utils.FromError(c, err)
	}
	return utils.SuccessResponse(c, profile, fiber.StatusOK)
}

// UserPosts handles GET /api/profile/users/:user_id/posts
// @Summary List a user's posts
// @Tags Profile
// @Produce json
// @Security BearerAuth
// @Param user_id path string true "User ID"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} services.FeedResult
// @Router /profile/users/{user_id}/posts [get]
func (h *ProfileHandler) UserPosts(c *fiber.Ctx) error {
	result, err := services.UserPosts(h.DB, c.Params("user_id"), userID(c), parseFeedQuery(c))
	if err != nil {
		return utils.FromError(c, err)
	}
	setListHeaders(c, result.Pagination.Total, result.Pagination.Page, result.Pagination.Limit)
	return utils.SuccessResponse(c, result, fiber.StatusOK)
}
