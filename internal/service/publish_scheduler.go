package service

import (
	"log"
	"time"

	"github.com/inkwell/internal/db"
	"gorm.io/gorm"
)

// PublishScheduler promotes scheduled posts whose publish time has passed.
type PublishScheduler struct {
	db *gorm.DB
}

// NewPublishScheduler creates a PublishScheduler instance.
func NewPublishScheduler(gdb *gorm.DB) *PublishScheduler {
	return &PublishScheduler{db: gdb}
}

// Run 扫描所有到期的定时发布文章并逐行晋升为已发布。
// 每行使用条件更新（published_at IS NULL），并发执行时同一篇文章只会被晋升一次；
// 没有到期文章时重复调用是无副作用的。单行失败只记录日志，不影响其余行。
func (s *PublishScheduler) Run(now time.Time) ([]uint, error) {
	var due []db.Post
	if err := s.db.
		Where("status = ?", db.StatusPublished).
		Where("published_at IS NULL").
		Where("scheduled_publish_at IS NOT NULL").
		Where("scheduled_publish_at <= ?", now).
		Order("scheduled_publish_at asc, id asc").
		Find(&due).Error; err != nil {
		return nil, err
	}

	promoted := make([]uint, 0, len(due))
	for _, post := range due {
		result := s.db.Model(&db.Post{}).
			Where("id = ? AND published_at IS NULL", post.ID).
			Update("published_at", now)
		if result.Error != nil {
			log.Printf("publish scheduler: failed to promote post %d: %v", post.ID, result.Error)
			continue
		}
		if result.RowsAffected == 0 {
			// 另一次扫描已经抢先晋升了这篇文章
			continue
		}
		promoted = append(promoted, post.ID)
	}

	return promoted, nil
}
