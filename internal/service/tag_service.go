package service

import (
	"github.com/inkwell/internal/db"
	"gorm.io/gorm"
)

// TagService wraps tag related operations.
type TagService struct {
	db *gorm.DB
}

// TagUsage 描述标签在已上线文章中的使用次数
type TagUsage struct {
	ID    uint
	Name  string
	Count int64
}

// NewTagService creates a TagService instance.
func NewTagService(gdb *gorm.DB) *TagService {
	return &TagService{db: gdb}
}

// List returns tags ordered by name ascending.
func (s *TagService) List() ([]db.Tag, error) {
	var tags []db.Tag
	if err := s.db.Order("name asc").Order("id asc").Find(&tags).Error; err != nil {
		return nil, err
	}
	return tags, nil
}

// PublishedUsage 返回每个标签下已上线文章的数量，按标签名升序排列。
// 每次请求实时计算，不做缓存。
func (s *TagService) PublishedUsage() ([]TagUsage, error) {
	var rows []TagUsage
	if err := s.db.Table("tags").
		Select("tags.id, tags.name, COUNT(DISTINCT posts.id) AS count").
		Joins("LEFT JOIN post_tags ON post_tags.tag_id = tags.id").
		Joins("LEFT JOIN posts ON posts.id = post_tags.post_id AND posts.status = ? AND posts.published_at IS NOT NULL AND posts.deleted_at IS NULL", db.StatusPublished).
		Group("tags.id, tags.name").
		Order("tags.name asc").
		Order("tags.id asc").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ensureTags 查找或创建给定名称的标签，供文章保存事务复用。
func ensureTags(tx *gorm.DB, names []string) ([]db.Tag, error) {
	tags := make([]db.Tag, 0, len(names))
	for _, name := range names {
		var tag db.Tag
		if err := tx.Where("name = ?", name).FirstOrCreate(&tag, db.Tag{Name: name}).Error; err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}
	return tags, nil
}
