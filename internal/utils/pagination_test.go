// pagination_test.go
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

package utils

import "testing"

func TestValidatePagination(t *testing.T) {
	cases := []struct {
		page, limit, maxLimit int
		wantPage, wantLimit   int
	}{
		{1, 10, 50, 1, 10},
		{0, 10, 50, 1, 10},
		{-3, 10, 50, 1, 10},
		{2, 0, 50, 2, 10},
		{2, -1, 50, 2, 10},
		{1, 100, 50, 1, 50},
		{1, 50, 50, 1, 50},
	}
	for _, tc := range cases {
		page, limit := ValidatePagination(tc.page, tc.limit, tc.maxLimit)
		if page != tc.wantPage || limit != tc.wantLimit {
			t.Errorf("ValidatePagination(%d, %d, %d) = (%d, %d), want (%d, %d)",
				tc.page, tc.limit, tc.maxLimit, page, limit, tc.wantPage, tc.wantLimit)
		}
	}
}

func TestSortOrder(t *testing.T) {
	cases := map[string]string{
		"created_at_desc": "created_at DESC",
		"created_at_asc":  "created_at ASC",
		"title_asc":       "title ASC",
		"title_desc":      "title DESC",
		"updated_at_desc": "updated_at DESC",
		"":                "created_at DESC",
		"bogus":           "created_at DESC",
	}
	for key, want := range cases {
		if got := SortOrder(key); got != want {
			t.Errorf("SortOrder(%q) = %q, want %q", key, got, want)
		}
	}
}

func TestNewPagination(t *testing.T) {
	cases := []struct {
		page, limit int
		total       int64
		wantPages   int64
	}{
		{1, 10, 0, 0},
		{1, 10, 1, 1},
		{1, 10, 10, 1},
		{1, 10, 11, 2},
		{3, 7, 20, 3},
	}
	for _, tc := range cases {
		p := NewPagination(tc.page, tc.limit, tc.total)
		if p.Pages != tc.wantPages {
			t.Errorf("NewPagination(%d, %d, %d).Pages = %d, want %d",
				tc.page, tc.limit, tc.total, p.Pages, tc.wantPages)
		}
		if p.Page != tc.page || p.Limit != tc.limit || p.Total != tc.total {
			t.Errorf("NewPagination(%d, %d, %d) envelope mismatch: %+v", tc.page, tc.limit, tc.total, p)
		}
	}
}
