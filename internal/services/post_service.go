// post_service.go
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
	"fmt"
	"io"
	"mime/multipart"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/localnerve/devshare/internal/models"
	"github.com/localnerve/devshare/internal/storage"
	"github.com/localnerve/devshare/internal/types"
	"github.com/localnerve/devshare/internal/utils"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/hints"
)

const (
	maxPostTitle       = 200
	maxPostDescription = 2000
	maxPostFiles       = 10
	maxFileSize        = 16 << 20 // 16MB per file
	maxUploadSize      = 64 << 20 // 64MB aggregate
	maxFeedLimit       = 50
)

// PostInput carries the create/edit payload parsed out of a multipart form.
type PostInput struct {
	Title       string
	Description string
	TechStack   []string
	GithubLink  string
	Files       []*multipart.FileHeader
	// KeepFileIDs restricts which existing attachments survive an edit.
	// Nil means keep everything; empty means drop everything.
	KeepFileIDs []string
}

// FileView is the attachment metadata embedded in a post view.
type FileView struct {
	ID          string `json:"id"`
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
}

// PostView is the API shape of a post.
type PostView struct {
	ID            string     `json:"id"`
	User          *UserInfo  `json:"user"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	TechStack     []string   `json:"tech_stack"`
	GithubLink    string     `json:"github_link,omitempty"`
	Files         []FileView `json:"files"`
	LikesCount    int64      `json:"likes_count"`
	CommentsCount int64      `json:"comments_count"`
	Liked         bool       `json:"liked"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     *time.Time `json:"updated_at,omitempty"`
}

// FeedQuery is the parsed query string of a feed or listing request.
type FeedQuery struct {
	Page   int
	Limit  int
	Sort   string
	Search string
	Tech   string
}

// FeedResult is a page of posts plus the pagination envelope.
type FeedResult struct {
	Posts      []PostView       `json:"posts"`
	Pagination utils.Pagination `json:"pagination"`
}

func validatePostInput(input *PostInput) error {
	input.Title = strings.TrimSpace(input.Title)
	input.Description = strings.TrimSpace(input.Description)
	input.GithubLink = strings.TrimSpace(input.GithubLink)

	if input.Title == "" {
		return types.Validation("Title is required")
	}
	if len(input.Title) > maxPostTitle {
		return types.Validation(fmt.Sprintf("Title cannot exceed %d characters", maxPostTitle))
	}
	if input.Description == "" {
		return types.Validation("Description is required")
	}
	if len(input.Description) > maxPostDescription {
		return types.Validation(fmt.Sprintf("Description cannot exceed %d characters", maxPostDescription))
	}
	if len(input.TechStack) == 0 {
		return types.Validation("At least one tech stack entry is required")
	}
	if input.GithubLink != "" &&
		!strings.HasPrefix(input.GithubLink, "https://github.com/") &&
		!strings.HasPrefix(input.GithubLink, "http://github.com/") {
		return types.Validation("Github link must point to github.com")
	}
	return nil
}

func validateUploads(files []*multipart.FileHeader, existing int) error {
	if existing+len(files) > maxPostFiles {
		return types.Validation(fmt.Sprintf("A post cannot have more than %d files", maxPostFiles))
	}
	var total int64
	for _, fh := range files {
		if fh.Size > maxFileSize {
			return types.Validation(fmt.Sprintf("File %q exceeds the %dMB limit", fh.Filename, maxFileSize>>20))
		}
		total += fh.Size
	}
	if total > maxUploadSize {
		return types.Validation(fmt.Sprintf("Upload exceeds the %dMB aggregate limit", maxUploadSize>>20))
	}
	return nil
}

// saveUploads streams file headers into the blob store and returns the
// created file rows. On failure the blobs written so far are removed.
func saveUploads(blobs storage.BlobStore, postID string, files []*multipart.FileHeader) ([]models.PostFile, error) {
	saved := make([]models.PostFile, 0, len(files))
	cleanup := func() {
		for i := range saved {
			_ = blobs.Delete(saved[i].FileID)
		}
	}
	for _, fh := range files {
		src, err := fh.Open()
		if err != nil {
			cleanup()
			return nil, err
		}
		fileID := uuid.NewString()
		err = blobs.Save(fileID, io.LimitReader(src, maxFileSize))
		src.Close()
		if err != nil {
			cleanup()
			return nil, err
		}
		contentType := fh.Header.Get("Content-Type")
		saved = append(saved, models.PostFile{
			PostID:      postID,
			FileID:      fileID,
			Filename:    fh.Filename,
			ContentType: contentType,
			Size:        fh.Size,
		})
	}
	return saved, nil
}

func fileViews(files []models.PostFile) []FileView {
	views := make([]FileView, 0, len(files))
	for i := range files {
		views = append(views, FileView{
			ID:          files[i].FileID,
			Filename:    files[i].Filename,
			ContentType: files[i].ContentType,
			Size:        files[i].Size,
		})
	}
	return views
}

func postView(post *models.Post, author *UserInfo, liked bool) PostView {
	return PostView{
		ID:            post.ID,
		User:          author,
		Title:         post.Title,
		Description:   post.Description,
		TechStack:     post.TechStack,
		GithubLink:    post.GithubLink,
		Files:         fileViews(post.Files),
		LikesCount:    post.LikesCount,
		CommentsCount: post.CommentsCount,
		Liked:         liked,
		CreatedAt:     post.CreatedAt,
		UpdatedAt:     post.UpdatedAt,
	}
}

// CreatePost validates the input, stores the uploads, and creates the
// post with its file rows in one transaction.
func CreatePost(db *gorm.DB, blobs storage.BlobStore, userID string, input PostInput) (*PostView, error) {
	if err := validatePostInput(&input); err != nil {
		return nil, err
	}
	if err := validateUploads(input.Files, 0); err != nil {
		return nil, err
	}

	post := models.Post{
		UserID:      userID,
		Title:       input.Title,
		Description: input.Description,
		TechStack:   datatypes.JSONSlice[string](input.TechStack),
		GithubLink:  input.GithubLink,
	}
	post.ID = uuid.NewString()

	files, err := saveUploads(blobs, post.ID, input.Files)
	if err != nil {
		return nil, err
	}

	txErr := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&post).Error; err != nil {
			return err
		}
		for i := range files {
			if err := tx.Create(&files[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if txErr != nil {
		for i := range files {
			_ = blobs.Delete(files[i].FileID)
		}
		return nil, txErr
	}

	post.Files = files
	view := postView(&post, userInfo(db, userID), false)
	return &view, nil
}

// EditPost updates a post's fields and reconciles its attachments: files
// absent from KeepFileIDs are removed, new uploads are appended. Only the
// owner may edit.
func EditPost(db *gorm.DB, blobs storage.BlobStore, userID, postID string, input PostInput) (*PostView, error) {
	var post models.Post
	if err := db.Preload("Files").Where("id = ?", postID).First(&post).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.NotFound("Post not found")
		}
		return nil, err
	}
	if post.UserID != userID {
		return nil, types.Forbidden("You can only edit your own posts")
	}

	if err := validatePostInput(&input); err != nil {
		return nil, err
	}

	kept := post.Files
	var dropped []models.PostFile
	if input.KeepFileIDs != nil {
		keep := make(map[string]bool, len(input.KeepFileIDs))
		for _, id := range input.KeepFileIDs {
			keep[id] = true
		}
		kept = kept[:0]
		for i := range post.Files {
			if keep[post.Files[i].FileID] {
				kept = append(kept, post.Files[i])
			} else {
				dropped = append(dropped, post.Files[i])
			}
		}
	}
	if err := validateUploads(input.Files, len(kept)); err != nil {
		return nil, err
	}

	added, err := saveUploads(blobs, postID, input.Files)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	txErr := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Post{}).Where("id = ?", postID).Updates(map[string]interface{}{
			"title":       input.Title,
			"description": input.Description,
			"tech_stack":  datatypes.JSONSlice[string](input.TechStack),
			"github_link": input.GithubLink,
			"updated_at":  now,
		}).Error; err != nil {
			return err
		}
		for i := range dropped {
			if err := tx.Delete(&models.PostFile{}, "id = ?", dropped[i].ID).Error; err != nil {
				return err
			}
		}
		for i := range added {
			if err := tx.Create(&added[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if txErr != nil {
		for i := range added {
			_ = blobs.Delete(added[i].FileID)
		}
		return nil, txErr
	}

	droppedIDs := make([]string, 0, len(dropped))
	for i := range dropped {
		droppedIDs = append(droppedIDs, dropped[i].FileID)
	}
	deleteBlobs(blobs, droppedIDs)

	post.Title = input.Title
	post.Description = input.Description
	post.TechStack = datatypes.JSONSlice[string](input.TechStack)
	post.GithubLink = input.GithubLink
	post.UpdatedAt = &now
	post.Files = append(kept, added...)

	liked, _ := userLikedPost(db, userID, postID)
	view := postView(&post, userInfo(db, post.UserID), liked)
	return &view, nil
}

func userLikedPost(db *gorm.DB, userID, postID string) (bool, error) {
	if userID == "" {
		return false, nil
	}
	var count int64
	err := db.Model(&models.PostLike{}).
		Where("user_id = ? AND post_id = ?", userID, postID).Count(&count).Error
	return count > 0, err
}

// GetPost returns one post with attachments and the viewer's liked flag.
func GetPost(db *gorm.DB, postID, viewerID string) (*PostView, error) {
	var post models.Post
	if err := db.Preload("Files").Where("id = ?", postID).First(&post).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.NotFound("Post not found")
		}
		return nil, err
	}
	liked, err := userLikedPost(db, viewerID, postID)
	if err != nil {
		return nil, err
	}
	view := postView(&post, userInfo(db, post.UserID), liked)
	return &view, nil
}

// GetOwnPost returns a post in the owner's management view. A post that
// exists but belongs to someone else is forbidden, not hidden.
func GetOwnPost(db *gorm.DB, postID, ownerID string) (*PostView, error) {
	var post models.Post
	if err := db.Preload("Files").Where("id = ?", postID).First(&post).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.NotFound("Post not found")
		}
		return nil, err
	}
	if post.UserID != ownerID {
		return nil, types.Forbidden("You can only view your own posts here")
	}
	liked, err := userLikedPost(db, ownerID, postID)
	if err != nil {
		return nil, err
	}
	view := postView(&post, userInfo(db, ownerID), liked)
	return &view, nil
}

// feedScope applies search and tech filters to a post query.
func feedScope(db *gorm.DB, q FeedQuery) *gorm.DB {
	scope := db.Model(&models.Post{})
	if search := strings.TrimSpace(q.Search); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		scope = scope.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern)
	}
	if tech := strings.TrimSpace(q.Tech); tech != "" {
		// tech_stack is stored as a JSON array; matching the quoted value
		// works the same on every supported dialect.
		scope = scope.Where("tech_stack LIKE ?", "%\""+strings.ToLower(tech)+"\"%")
	}
	return scope
}

// Feed returns a page of posts, newest first by default, honoring search,
// tech filter, and the sort keys in utils.SortOrder.
func Feed(db *gorm.DB, viewerID string, q FeedQuery) (*FeedResult, error) {
	q.Page, q.Limit = utils.ValidatePagination(q.Page, q.Limit, maxFeedLimit)

	var total int64
	if err := feedScope(db, q).Count(&total).Error; err != nil {
		return nil, err
	}

	query := feedScope(db, q).
		Order(utils.SortOrder(q.Sort)).
		Offset((q.Page - 1) * q.Limit).
		Limit(q.Limit).
		Preload("Files")
	if db.Dialector.Name() == "mysql" {
		query = query.Clauses(hints.UseIndex("idx_posts_created_at"))
	}

	var posts []models.Post
	if err := query.Find(&posts).Error; err != nil {
		return nil, err
	}

	return assembleFeed(db, viewerID, posts, utils.NewPagination(q.Page, q.Limit, total))
}

// UserPosts returns a page of one user's posts.
func UserPosts(db *gorm.DB, ownerID, viewerID string, q FeedQuery) (*FeedResult, error) {
	q.Page, q.Limit = utils.ValidatePagination(q.Page, q.Limit, maxFeedLimit)

	var total int64
	if err := db.Model(&models.Post{}).Where("user_id = ?", ownerID).Count(&total).Error; err != nil {
		return nil, err
	}

	var posts []models.Post
	if err := db.Where("user_id = ?", ownerID).
		Order(utils.SortOrder(q.Sort)).
		Offset((q.Page - 1) * q.Limit).
		Limit(q.Limit).
		Preload("Files").
		Find(&posts).Error; err != nil {
		return nil, err
	}

	return assembleFeed(db, viewerID, posts, utils.NewPagination(q.Page, q.Limit, total))
}

func assembleFeed(db *gorm.DB, viewerID string, posts []models.Post, pagination utils.Pagination) (*FeedResult, error) {
	authorIDs := make([]string, 0, len(posts))
	postIDs := make([]string, 0, len(posts))
	for i := range posts {
		authorIDs = append(authorIDs, posts[i].UserID)
		postIDs = append(postIDs, posts[i].ID)
	}
	infos := userInfoMap(db, authorIDs)

	liked := make(map[string]bool)
	if viewerID != "" && len(postIDs) > 0 {
		var likes []models.PostLike
		db.Where("user_id = ? AND post_id IN ?", viewerID, postIDs).Find(&likes)
		for i := range likes {
			liked[likes[i].PostID] = true
		}
	}

	views := make([]PostView, 0, len(posts))
	for i := range posts {
		views = append(views, postView(&posts[i], infoOrFallback(infos, posts[i].UserID), liked[posts[i].ID]))
	}
	return &FeedResult{Posts: views, Pagination: pagination}, nil
}

// profileCounts returns the user's post count and the total likes
// received across those posts.
func profileCounts(db *gorm.DB, userID string) (posts, likes int64, err error) {
	if err = db.Model(&models.Post{}).Where("user_id = ?", userID).Count(&posts).Error; err != nil {
		return 0, 0, err
	}
	postIDs := db.Model(&models.Post{}).Select("id").Where("user_id = ?", userID)
	if err = db.Model(&models.PostLike{}).Where("post_id IN (?)", postIDs).Count(&likes).Error; err != nil {
		return 0, 0, err
	}
	return posts, likes, nil
}

// Profile returns the authenticated user's own profile including email.
func Profile(db *gorm.DB, userID string) (*ProfileView, error) {
	var user models.User
	if err := db.Where("id = ?", userID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.NotFound("User not found")
		}
		return nil, err
	}
	postsCount, likesReceived, err := profileCounts(db, userID)
	if err != nil {
		return nil, err
	}
	return &ProfileView{
		ID:            user.ID,
		Username:      user.Username,
		Email:         user.Email,
		FullName:      user.FullName,
		Bio:           user.Bio,
		PostsCount:    postsCount,
		LikesReceived: likesReceived,
		CreatedAt:     user.CreatedAt,
	}, nil
}

// PublicProfile returns another user's profile by id, without email.
func PublicProfile(db *gorm.DB, userID string) (*ProfileView, error) {
	var user models.User
	if err := db.Where("id = ?", userID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.NotFound("User not found")
		}
		return nil, err
	}
	postsCount, likesReceived, err := profileCounts(db, user.ID)
	if err != nil {
		return nil, err
	}
	return &ProfileView{
		ID:            user.ID,
		Username:      user.Username,
		FullName:      user.FullName,
		Bio:           user.Bio,
		PostsCount:    postsCount,
		LikesReceived: likesReceived,
		CreatedAt:     user.CreatedAt,
	}, nil
}

// OpenFile resolves a post attachment to its metadata and an open blob
// stream. The file must belong to the named post.
func OpenFile(db *gorm.DB, blobs storage.BlobStore, postID, fileID string) (*models.PostFile, io.ReadCloser, error) {
	var file models.PostFile
	if err := db.Where("post_id = ? AND file_id = ?", postID, fileID).First(&file).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, types.NotFound("File not found")
		}
		return nil, nil, err
	}
	rc, err := blobs.Open(file.FileID)
	if err != nil {
		if errors.Is(err, storage.ErrBlobNotFound) {
			return nil, nil, types.NotFound("File not found")
		}
		return nil, nil, err
	}
	return &file, rc, nil
}
