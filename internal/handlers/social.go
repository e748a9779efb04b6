// social.go
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
	"github.com/localnerve/devshare/internal/utils"
	"gorm.io/gorm"
)

// SocialHandler handles likes, comments, and replies
type SocialHandler struct {
	DB *gorm.DB
}

type contentRequest struct {
	Content string `json:"content"`
}

// TogglePostLike handles POST /api/social/posts/:id/like
// @Summary Toggle a post like
// @Description Like the post, or remove the existing like
// @Tags Social
// @Produce json
// @Security BearerAuth
// @Param id path string true "Post ID"
// @Success 200 {object} services.LikeStatus
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /social/posts/{id}/like [post]
func (h *SocialHandler) TogglePostLike(c *fiber.Ctx) error {
	status, err := services.TogglePostLike(h.DB, c.Params("id"), userID(c))
	if err != nil {
		return utils.FromError(c, err)
	}
	return utils.SuccessResponse(c, status, fiber.StatusOK)
}

// ListPostLikes handles GET /api/social/posts/:id/likes
// @Summary List post likes
// @Tags Social
// @Produce json
// @Security BearerAuth
// @Param id path string true "Post ID"
// @Success 200 {array} services.LikeView
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /social/posts/{id}/likes [get]
func (h *SocialHandler) ListPostLikes(c *fiber.Ctx) error {
	likes, err := services.ListPostLikes(h.DB, c.Params("id"))
	if err != nil {
		return utils.FromError(c, err)
	}
	return utils.SuccessResponse(c, likes, fiber.StatusOK)
}

// CreateComment handles POST /api/social/posts/:id/comments
// @Summary Comment on a post
// @Tags Social
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Post ID"
// @Param body body contentRequest true "Comment content"
// @Success 201 {object} services.CommentView
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /social/posts/{id}/comments [post]
func (h *SocialHandler) CreateComment(c *fiber.Ctx) error {
	var input contentRequest
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, "Invalid request body", fiber.StatusBadRequest, "validation")
	}
	view, err := services.CreateComment(h.DB, c.Params("id"), userID(c), input.Content)
	if err != nil {
		return utils.FromError(c, err)
	}
	return utils.SuccessResponse(c, view, fiber.StatusCreated)
}

// ListComments handles GET /api/social/posts/:id/comments
// @Summary List a post's comments with nested replies
// @Tags Social
// @Produce json
// @Security BearerAuth
// @Param id path string true "Post ID"
// @Success 200 {array} services.CommentView
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /social/posts/{id}/comments [get]
func (h *SocialHandler) ListComments(c *fiber.Ctx) error {
	views, err := services.ListComments(h.DB, c.Params("id"), userID(c))
	if err != nil {
		return utils.FromError(c, err)
	}
	return utils.SuccessResponse(c, views, fiber.StatusOK)
}

// UpdateComment handles PUT /api/social/comments/:id
// @Summary Edit a comment
// @Tags Social
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Comment ID"
// @Param body body contentRequest true "New content"
// @Success 200 {object} services.CommentView
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /social/comments/{id} [put]
func (h *SocialHandler) UpdateComment(c *fiber.Ctx) error {
	var input contentRequest
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, "Invalid request body", fiber.StatusBadRequest, "validation")
	}
	view, err := services.UpdateComment(h.DB, c.Params("id"), userID(c), input.Content)
	if err != nil {
		return utils.FromError(c, err)
	}
	return utils.SuccessResponse(c, view, fiber.StatusOK)
}

// DeleteComment handles DELETE /api/social/comments/:id
// @Summary Delete a comment
// @Description Remove a comment, its replies, and their likes; comment author or post owner only
// @Tags Social
// @Security BearerAuth
// @Param id path string true "Comment ID"
// @Success 204
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /social/comments/{id} [delete]
func (h *SocialHandler) DeleteComment(c *fiber.Ctx) error {
	if err := services.DeleteComment(h.DB, c.Params("id"), userID(c)); err != nil {
		return utils.FromError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ToggleCommentLike handles POST /api/social/comments/:id/likes
// @Summary Toggle a comment like
// @Tags Social
// @Produce json
// @Security BearerAuth
// @Param id path string true "Comment ID"
// @Success 200 {object} services.LikeStatus
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /social/comments/{id}/likes [post]
func (h *SocialHandler) ToggleCommentLike(c *fiber.Ctx) error {
	status, err := services.ToggleCommentLike(h.DB, c.Params("id"), userID(c))
	if err != nil {
		return utils.FromError(c, err)
	}
	return utils.SuccessResponse(c, status, fiber.StatusOK)
}

// ListCommentLikes handles GET /api/social/comments/:id/likes
// @Summary List comment likes
// @Tags Social
// @Produce json
// @Security BearerAuth
// @Param id path string true "Comment ID"
// @Success 200 {array} services.LikeView
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /social/comments/{id}/likes [get]
func (h *SocialHandler) ListCommentLikes(c *fiber.Ctx) error {
	likes, err := services.ListCommentLikes(h.DB, c.Params("id"))
	if err != nil {
		return utils.FromError(c, err)
	}
	return utils.SuccessResponse(c, likes, fiber.StatusOK)
}

// CreateReply handles POST /api/social/comments/:id/replies
// @Summary Reply to a comment
// @Tags Social
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Comment ID"
// @Param body body contentRequest true "Reply content"
// @Success 201 {object} services.ReplyView
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /social/comments/{id}/replies [post]
func (h *SocialHandler) CreateReply(c *fiber.Ctx) error {
	var input contentRequest
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, "Invalid request body", fiber.StatusBadRequest, "validation")
	}
	view, err := services.CreateReply(h.DB, c.Params("id"), userID(c), input.Content)
	if err != nil {
		return utils.FromError(c, err)
	}
	return utils.SuccessResponse(c, view, fiber.StatusCreated)
}

// ListReplies handles GET /api/social/comments/:id/replies
// @Summary List a comment's replies
// @Tags Social
// @Produce json
// @Security BearerAuth
// @Param id path string true "Comment ID"
// @Success 200 {array} services.ReplyView
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /social/comments/{id}/replies [get]
func (h *SocialHandler) ListReplies(c *fiber.Ctx) error {
	views, err := services.ListReplies(h.DB, c.Params("id"), userID(c))
	if err != nil {
		return utils.FromError(c, err)
	}
	return utils.SuccessResponse(c, views, fiber.StatusOK)
}

// UpdateReply handles PUT /api/social/replies/:id
// @Summary Edit a reply
// @Tags Social
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Reply ID"
// @Param body body contentRequest true "New content"
// @Success 200 {object} services.ReplyView
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /social/replies/{id} [put]
func (h *SocialHandler) UpdateReply(c *fiber.Ctx) error {
	var input contentRequest
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, "Invalid request body", fiber.StatusBadRequest, "validation")
	}
	view, err := services.UpdateReply(h.DB, c.Params("id"), userID(c), input.Content)
	if err != nil {
		return utils.FromError(c, err)
	}
	return utils.SuccessResponse(c, view, fiber.StatusOK)
}

// DeleteReply handles DELETE /api/social/replies/:id
// @Summary Delete a reply
// @Description Remove a reply and its likes; reply author or post owner only
// @Tags Social
// @Produce json
// @Security BearerAuth
// @Param id path string true "Reply ID"
// @Success 200 {object} utils.MessageResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /social/replies/{id} [delete]
func (h *SocialHandler) DeleteReply(c *fiber.Ctx) error {
	if err := services.DeleteReply(h.DB, c.Params("id"), userID(c)); err != nil {
		return utils.FromError(c, err)
	}
	return utils.MessageResponse(c, "Reply deleted", fiber.StatusOK)
}

// ToggleReplyLike handles POST /api/social/replies/:id/likes
// @Summary Toggle a reply like
// @Tags Social
// @Produce json
// @Security BearerAuth
// @Param id path string true "Reply ID"
// @Success 200 {object} services.LikeStatus
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /social/replies/{id}/likes [post]
func (h *SocialHandler) ToggleReplyLike(c *fiber.Ctx) error {
	status, err := services.ToggleReplyLike(h.DB, c.Params("id"), userID(c))
	if err != nil {
		return utils.FromError(c, err)
	}
	return utils.SuccessResponse(c, status, fiber.StatusOK)
}

// ListReplyLikes handles GET /api/social/replies/:id/likes
// @Summary List reply likes
// @Tags Social
// @Produce json
// @Security BearerAuth
// @Param id path string true "Reply ID"
// @Success 200 {array} services.LikeView
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /social/replies/{id}/likes [get]
func (h *SocialHandler) ListReplyLikes(c *fiber.Ctx) error {
	likes, err := services.ListReplyLikes(h.DB, c.Params("id"))
	if err != nil {
		return utils.FromError(c, err)
	}
	return utils.SuccessResponse(c, likes, fiber.StatusOK)
}
