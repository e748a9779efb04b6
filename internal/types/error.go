// error.go
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

package types

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

type CustomError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Type    string `json:"type"`
}

func (e *CustomError) Error() string {
	return fmt.Sprintf("%d: %s [type: %s]", e.Code, e.Message, e.Type)
}

// NotFound indicates the referenced record does not exist.
func NotFound(message string) *CustomError {
	return &CustomError{Code: fiber.StatusNotFound, Message: message, Type: "not_found"}
}

// Validation indicates malformed input, detected before any mutation.
func Validation(message string) *CustomError {
	return &CustomError{Code: fiber.StatusBadRequest, Message: message, Type: "validation"}
}

// Forbidden indicates the record exists but the requester lacks rights to it.
func Forbidden(message string) *CustomError {
	return &CustomError{Code: fiber.StatusForbidden, Message: message, Type: "forbidden"}
}

// Unauthorized indicates missing or invalid credentials.
func Unauthorized(message string) *CustomError {
	return &CustomError{Code: fiber.StatusUnauthorized, Message: message, Type: "unauthorized"}
}

// Conflict indicates a uniqueness violation (duplicate like, username, email).
func Conflict(message string) *CustomError {
	return &CustomError{Code: fiber.StatusConflict, Message: message, Type: "conflict"}
}

// Inconsistency indicates a failed post-condition check: a cascade reported
// success but left a record it promised to remove.
func Inconsistency(message string) *CustomError {
	return &CustomError{Code: fiber.StatusInternalServerError, Message: message, Type: "inconsistency"}
}

// Internal hides an unexpected failure. The underlying error is logged by the
// caller; the client only ever sees the summary text.
func Internal() *CustomError {
	return &CustomError{Code: fiber.StatusInternalServerError, Message: "Internal server error", Type: "internal"}
}

// IsKind reports whether err is a CustomError carrying the given type tag.
func IsKind(err error, kind string) bool {
	var ce *CustomError
	return errors.As(err, &ce) && ce.Type == kind
}
