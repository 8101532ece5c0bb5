package service

import (
	"errors"
	"strings"
	"time"

	"github.com/inkwell/internal/db"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrPostNotFound     = errors.New("post not found")
	ErrTitleRequired    = errors.New("post title is required")
	ErrInvalidStatus    = errors.New("invalid post status")
	ErrCategoryNotFound = errors.New("category not found")
)

// PostService wraps post related database operations.
type PostService struct {
	db *gorm.DB
}

// PostInput represents fields accepted when creating a post.
type PostInput struct {
	Title              string
	Description        string
	Content            string
	Category           string
	Tags               []string
	Status             string
	Featured           bool
	ScheduledPublishAt *time.Time
	UserID             uint
}

// PostUpdate carries partial updates; nil fields are left untouched.
type PostUpdate struct {
	Title              *string
	Description        *string
	Content            *string
	Category           *string
	Tags               *[]string
	Status             *string
	Featured           *bool
	ScheduledPublishAt *time.Time
	ClearSchedule      bool
}

// PostFilter describes filters for the admin list.
type PostFilter struct {
	Status string
}

// PagedPosts aggregates a page of posts with the unpaginated total.
type PagedPosts struct {
	Posts  []db.Post
	Total  int64
	Limit  int
	Offset int
}

// NewPostService creates a PostService instance.
func NewPostService(gdb *gorm.DB) *PostService {
	return &PostService{db: gdb}
}

// Get fetches a post by id with its associations preloaded.
func (s *PostService) Get(id uint) (*db.Post, error) {
	var post db.Post
	if err := s.db.Preload("Tags").Preload("Category").Preload("User").First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	return &post, nil
}

// Create persists a post and associates tags in a transaction.
// 发布规则：status=published 且未指定定时发布时间时，立即落库 published_at。
func (s *PostService) Create(input PostInput) (*db.Post, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}

	status := strings.TrimSpace(input.Status)
	if status == "" {
		status = db.StatusDraft
	}
	if status != db.StatusDraft && status != db.StatusPublished {
		return nil, ErrInvalidStatus
	}

	category, err := s.findCategory(input.Category)
	if err != nil {
		return nil, err
	}

	post := db.Post{
		Title:              title,
		Description:        strings.TrimSpace(input.Description),
		Content:            input.Content,
		ReadingTime:        calculateReadingTime(input.Content),
		Status:             status,
		Featured:           input.Featured,
		ScheduledPublishAt: input.ScheduledPublishAt,
		CategoryID:         category.ID,
		UserID:             input.UserID,
	}
	applyPublishRule(&post, time.Now())

	return s.saveWithTags(&post, input.Tags)
}

// Update applies the supplied fields to an existing post and re-evaluates
// the publish rule. A published_at that is already set is never cleared.
func (s *PostService) Update(id uint, update PostUpdate) (*db.Post, error) {
	var existing db.Post
	if err := s.db.First(&existing, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}

	if update.Title != nil {
		title := strings.TrimSpace(*update.Title)
		if title == "" {
			return nil, ErrTitleRequired
		}
		existing.Title = title
	}

	if update.Description != nil {
		existing.Description = strings.TrimSpace(*update.Description)
	}

	if update.Content != nil {
		existing.Content = *update.Content
		existing.ReadingTime = calculateReadingTime(existing.Content)
	}

	if update.Category != nil {
		category, err := s.findCategory(*update.Category)
		if err != nil {
			return nil, err
		}
		existing.CategoryID = category.ID
	}

	if update.Status != nil {
		status := strings.TrimSpace(*update.Status)
		if status != db.StatusDraft && status != db.StatusPublished {
			return nil, ErrInvalidStatus
		}
		existing.Status = status
	}

	if update.Featured != nil {
		existing.Featured = *update.Featured
	}

	if update.ClearSchedule {
		existing.ScheduledPublishAt = nil
	} else if update.ScheduledPublishAt != nil {
		existing.ScheduledPublishAt = update.ScheduledPublishAt
	}

	applyPublishRule(&existing, time.Now())

	if update.Tags != nil {
		return s.saveWithTags(&existing, *update.Tags)
	}

	if err := s.db.Save(&existing).Error; err != nil {
		return nil, err
	}
	return s.Get(existing.ID)
}

// Delete hard-deletes a post together with its tag associations.
func (s *PostService) Delete(id uint) error {
	var post db.Post
	if err := s.db.First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPostNotFound
		}
		return err
	}

	return s.db.Select(clause.Associations).Unscoped().Delete(&post).Error
}

// List returns the full row set with an optional status filter.
func (s *PostService) List(filter PostFilter) ([]db.Post, error) {
	query := s.db.Preload("Tags").Preload("Category").Preload("User")

	status := strings.ToLower(strings.TrimSpace(filter.Status))
	switch status {
	case "", "all":
	case db.StatusDraft, db.StatusPublished:
		query = query.Where("posts.status = ?", status)
	default:
		return nil, ErrInvalidStatus
	}

	var posts []db.Post
	if err := query.Order("posts.created_at desc, posts.id desc").Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

// ListRecent returns live posts ordered by publish time descending,
// optionally scoped to featured posts, together with the total count.
func (s *PostService) ListRecent(limit, offset int, featured *bool) (*PagedPosts, error) {
	base := s.liveQuery()
	if featured != nil {
		base = base.Where("posts.featured = ?", *featured)
	}
	return s.pageLive(base, limit, offset)
}

// ListByCategory returns live posts of one category with the total count.
func (s *PostService) ListByCategory(categoryName string, limit, offset int) (*PagedPosts, error) {
	category, err := s.findCategory(categoryName)
	if err != nil {
		return nil, err
	}

	base := s.liveQuery().
		Joins("JOIN categories ON categories.id = posts.category_id").
		Where("categories.id = ?", category.ID)
	return s.pageLive(base, limit, offset)
}

func (s *PostService) liveQuery() *gorm.DB {
	return s.db.Model(&db.Post{}).
		Where("posts.status = ?", db.StatusPublished).
		Where("posts.published_at IS NOT NULL")
}

func (s *PostService) pageLive(base *gorm.DB, limit, offset int) (*PagedPosts, error) {
	result := &PagedPosts{Limit: limit, Offset: offset}
	if result.Limit <= 0 {
		result.Limit = 10
	}
	if result.Offset < 0 {
		result.Offset = 0
	}

	if err := base.Session(&gorm.Session{}).Count(&result.Total).Error; err != nil {
		return nil, err
	}

	var posts []db.Post
	if err := base.Session(&gorm.Session{}).
		Preload("Tags").
		Preload("Category").
		Preload("User").
		Order("posts.published_at desc, posts.id desc").
		Limit(result.Limit).
		Offset(result.Offset).
		Find(&posts).Error; err != nil {
		return nil, err
	}

	result.Posts = posts
	return result, nil
}

func (s *PostService) saveWithTags(post *db.Post, tagNames []string) (*db.Post, error) {
	return post, s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(post).Error; err != nil {
			return err
		}

		tags, err := ensureTags(tx, tagNames)
		if err != nil {
			return err
		}

		if err := tx.Model(post).Association("Tags").Replace(tags); err != nil {
			return err
		}

		if err := tx.Preload("Tags").Preload("Category").Preload("User").First(post, post.ID).Error; err != nil {
			return err
		}

		return nil
	})
}

func (s *PostService) findCategory(name string) (*db.Category, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return nil, ErrCategoryNotFound
	}

	var category db.Category
	if err := s.db.Where("name = ?", trimmed).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}
	return &category, nil
}

// applyPublishRule 落实立即发布与定时发布的区别：
// 未指定定时发布时间的 published 文章立即写入 published_at；
// 指定了定时发布时间的文章交由定时任务晋升。
func applyPublishRule(post *db.Post, now time.Time) {
	if post.Status != db.StatusPublished {
		return
	}
	if post.ScheduledPublishAt != nil {
		return
	}
	if post.PublishedAt == nil {
		at := now
		post.PublishedAt = &at
	}
}

// SplitTagList 解析逗号分隔的标签输入，去除空白与重复项。
func SplitTagList(raw string) []string {
	parts := strings.Split(raw, ",")
	names := make([]string, 0, len(parts))
	seen := make(map[string]struct{}, len(parts))
	for _, part := range parts {
		name := strings.TrimSpace(part)
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	return names
}

func calculateReadingTime(content string) int {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return 0
	}

	runes := []rune(trimmed)
	minutes := len(runes) / 400
	if len(runes)%400 != 0 {
		minutes++
	}
	if minutes < 1 {
		minutes = 1
	}
	return minutes
}
