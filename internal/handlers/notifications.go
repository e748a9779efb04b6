// notifications.go
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

// NotificationsHandler handles the notification inbox
type NotificationsHandler struct {
	DB *gorm.DB
}

// List handles GET /api/notifications
// @Summary List notifications
// @Description Page through the inbox, newest first, with count headers
// @Tags Notifications
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} services.NotificationPage
// @Router /notifications [get]
func (h *NotificationsHandler) List(c *fiber.Ctx) error {
	page, err := services.ListNotifications(h.DB, userID(c),
		c.QueryInt("page", 1), c.QueryInt("limit", 10))
	if err != nil {
		return utils.FromError(c, err)
	}
	setListHeaders(c, page.Pagination.Total, page.Pagination.Page, page.Pagination.Limit)
	return utils.SuccessResponse(c, page, fiber.StatusOK)
}

// UnreadCount handles GET /api/notifications/unread_count
// @Summary Get the unread notification count
// @Tags Notifications
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]int64
// @Router /notifications/unread_count [get]
func (h *NotificationsHandler) UnreadCount(c *fiber.Ctx) error {
	count, err := services.UnreadCount(h.DB, userID(c))
	if err != nil {
		return utils.FromError(c, err)
	}
	return utils.SuccessResponse(c, fiber.Map{"unread": count}, fiber.StatusOK)
}

// MarkRead handles POST /api/notifications/:id/read
// @Summary Mark one notification read
// @Tags Notifications
// @Produce json
// @Security BearerAuth
// @Param id path string true "Notification ID"
// @Success 200 {object} utils.MessageResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /notifications/{id}/read [post]
func (h *NotificationsHandler) MarkRead(c *fiber.Ctx) error {
	if err := services.MarkNotificationRead(h.DB, userID(c), c.Params("id")); err != nil {
		return utils.FromError(c, err)
	}
	return utils.MessageResponse(c, "Notification marked read", fiber.StatusOK)
}

// MarkAllRead handles POST /api/notifications/mark_all_read
// @Summary Mark every unread notification read
// @Tags Notifications
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]int64
// @Router /notifications/mark_all_read [post]
func (h *NotificationsHandler) MarkAllRead(c *fiber.Ctx) error {
	updated, err := services.MarkAllNotificationsRead(h.DB, userID(c))
	if err != nil {
		return utils.FromError(c, err)
	}
	return utils.SuccessResponse(c, fiber.Map{"updated": updated}, fiber.StatusOK)
}

// Delete handles DELETE /api/notifications/:id
// @Summary Delete one notification
// @Tags Notifications
// @Produce json
// @Security BearerAuth
// @Param id path string true "Notification ID"
// @Success 200 {object} utils.MessageResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /notifications/{id} [delete]
func (h *NotificationsHandler) Delete(c *fiber.Ctx) error {
	if err := services.DeleteNotification(h.DB, userID(c), c.Params("id")); err != nil {
		return utils.FromError(c, err)
	}
	return utils.MessageResponse(c, "Notification deleted", fiber.StatusOK)
}

// ClearAll handles POST /api/notifications/clear_all
// @Summary Delete every notification in the inbox
// @Tags Notifications
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]int64
// @Router /notifications/clear_all [post]
func (h *NotificationsHandler) ClearAll(c *fiber.Ctx) error {
	deleted, err := services.ClearNotifications(h.DB, userID(c))
	if err != nil {
		return utils.FromError(c, err)
	}
	return utils.SuccessResponse(c, fiber.Map{"deleted": deleted}, fiber.StatusOK)
}
