package service

import (
	"errors"
	"strings"

	"github.com/inkwell/internal/db"
	"gorm.io/gorm"
)

var (
	ErrCategoryExists   = errors.New("category already exists")
	ErrCategoryRequired = errors.New("category name is required")
	ErrCategoryInUse    = errors.New("category is referenced by posts")
)

// CategoryService wraps category related operations.
type CategoryService struct {
	db *gorm.DB
}

// CategoryUsage 描述分类下已上线文章的数量
type CategoryUsage struct {
	ID    uint
	Name  string
	Count int64
}

// NewCategoryService creates a CategoryService instance.
func NewCategoryService(gdb *gorm.DB) *CategoryService {
	return &CategoryService{db: gdb}
}

// List returns all categories ordered by name ascending.
func (s *CategoryService) List() ([]db.Category, error) {
	var categories []db.Category
	if err := s.db.Order("name asc").Order("id asc").Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

// PublishedUsage 返回每个分类下已上线文章的数量，按分类名升序排列。
// 未被引用的分类计数为 0，每次请求实时计算。
func (s *CategoryService) PublishedUsage() ([]CategoryUsage, error) {
	var rows []CategoryUsage
	if err := s.db.Table("categories").
		Select("categories.id, categories.name, COUNT(posts.id) AS count").
		Joins("LEFT JOIN posts ON posts.category_id = categories.id AND posts.status = ? AND posts.published_at IS NOT NULL AND posts.deleted_at IS NULL", db.StatusPublished).
		Group("categories.id, categories.name").
		Order("categories.name asc").
		Order("categories.id asc").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Create inserts a new category with a unique name.
func (s *CategoryService) Create(name string) (*db.Category, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return nil, ErrCategoryRequired
	}

	var existing db.Category
	if err := s.db.Where("name = ?", trimmed).First(&existing).Error; err == nil {
		return nil, ErrCategoryExists
	}

	category := db.Category{Name: trimmed}
	if err := s.db.Create(&category).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

// Delete removes a category if no post references it.
func (s *CategoryService) Delete(id uint) error {
	var category db.Category
	if err := s.db.First(&category, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCategoryNotFound
		}
		return err
	}

	var count int64
	if err := s.db.Model(&db.Post{}).Where("category_id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrCategoryInUse
	}

	return s.db.Unscoped().Delete(&category).Error
}
