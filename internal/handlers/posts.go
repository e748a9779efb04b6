// posts.go
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
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/devshare/internal/services"
	"github.com/localnerve/devshare/internal/storage"
	"github.com/localnerve/devshare/internal/utils"
	"gorm.io/gorm"
)

// PostsHandler handles post creation and the feed
type PostsHandler struct {
	DB    *gorm.DB
	Blobs storage.BlobStore
}

// parsePostForm builds a PostInput from a multipart form. The edit path
// also reads the existing_files keep-list when present.
func parsePostForm(c *fiber.Ctx, edit bool) (services.PostInput, error) {
	input := services.PostInput{
		Title:       c.FormValue("title"),
		Description: c.FormValue("description"),
		GithubLink:  c.FormValue("github_link"),
	}

	form, err := c.MultipartForm()
	if err != nil {
		return input, fmt.Errorf("multipart form required: %w", err)
	}
	input.TechStack = parseTechStack(form.Value["tech_stack"])
	if files, ok := form.File["files"]; ok {
		input.Files = files
	}
	if edit {
		if keep, ok := form.Value["existing_files"]; ok {
			// repeated and comma-separated values, same as tech_stack
			ids := parseTechStack(keep)
			if ids == nil {
				ids = []string{}
			}
			input.KeepFileIDs = ids
		}
	}
	return input, nil
}

// CreatePost handles POST /api/posts
// @Summary Create a post
// @Description Create a project post from a multipart form with optional file attachments
// @Tags Posts
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param title formData string true "Post title"
// @Param description formData string true "Post description"
// @Param tech_stack formData string true "Tech stack entries, repeated or comma-separated"
// @Param github_link formData string false "Repository link"
// @Param files formData file false "Attachments, up to 10"
// @Success 201 {object} services.PostView
// @Failure 400 {object} utils.ErrorResponseStruct
// @Router /posts [post]
func (h *PostsHandler) CreatePost(c *fiber.Ctx) error {
	input, err := parsePostForm(c, false)
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusBadRequest, "validation")
	}
	view, err := services.CreatePost(h.DB, h.Blobs, userID(c), input)
	if err != nil {
		return utils.FromError(c, err)
	}
	return utils.SuccessResponse(c, view, fiber.StatusCreated)
}

// Feed handles GET /api/feed
// @Summary Browse the post feed
// @Description Page through posts with search, tech filter, and sort
// @Tags Posts
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Param sort query string false "Sort key" Enums(created_at_desc, created_at_asc, title_asc, title_desc, updated_at_desc)
// @Param search query string false "Title/description search"
// @Param tech query string false "Tech stack filter"
// @Success 200 {object} services.FeedResult
// @Router /feed [get]
func (h *PostsHandler) Feed(c *fiber.Ctx) error {
	result, err := services.Feed(h.DB, userID(c), parseFeedQuery(c))
	if err != nil {
		return utils.FromError(c, err)
	}
	setListHeaders(c, result.Pagination.Total, result.Pagination.Page, result.Pagination.Limit)
	return utils.SuccessResponse(c, result, fiber.StatusOK)
}

// FeedDetail handles GET /api/feed/:post_id
// @Summary Get a post from the feed
// @Description Get one post with attachments and the viewer's liked flag
// @Tags Posts
// @Produce json
// @Security BearerAuth
// @Param post_id path string true "Post ID"
// @Success 200 {object} services.PostView
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /feed/{post_id} [get]
func (h *PostsHandler) FeedDetail(c *fiber.Ctx) error {
	view, err := services.GetPost(h.DB, c.Params("post_id"), userID(c))
	if err != nil {
		return utils.FromError(c, err)
	}
	return utils.SuccessResponse(c, view, fiber.StatusOK)
}
