// common.go
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
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/devshare/internal/middleware"
	"github.com/localnerve/devshare/internal/services"
)

// userID returns the authenticated user id from the request context, or
// empty for anonymous requests on optional-auth routes.
func userID(c *fiber.Ctx) string {
	if id, ok := c.Locals(middleware.LocalsUserID).(string); ok {
		return id
	}
	return ""
}

// parseFeedQuery extracts the listing query parameters shared by feed
// and profile post routes.
func parseFeedQuery(c *fiber.Ctx) services.FeedQuery {
	return services.FeedQuery{
		Page:   c.QueryInt("page", 1),
		Limit:  c.QueryInt("limit", 10),
		Sort:   c.Query("sort"),
		Search: c.Query("search"),
		Tech:   c.Query("tech"),
	}
}

// parseTechStack accepts repeated 'tech_stack' form values and
// comma-separated values inside each.
func parseTechStack(values []string) []string {
	seen := make(map[string]struct{})
	var stack []string
	for _, value := range values {
		for _, v := range strings.Split(value, ",") {
			v = strings.TrimSpace(v)
			if v == "" {
				continue
			}
			key := strings.ToLower(v)
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			stack = append(stack, v)
		}
	}
	return stack
}

// setListHeaders sets the pagination response headers on listing routes
func setListHeaders(c *fiber.Ctx, total int64, page, limit int) {
	c.Set("X-Total-Count", strconv.FormatInt(total, 10))
	c.Set("X-Page", strconv.Itoa(page))
	c.Set("X-Limit", strconv.Itoa(limit))
}
