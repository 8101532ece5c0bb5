package db

import (
	"time"

	"gorm.io/gorm"
)

// 文章状态枚举
const (
	StatusDraft     = "draft"
	StatusPublished = "published"
)

// Post 定义了文章模型
type Post struct {
	gorm.Model
	Title              string
	Description        string
	Content            string
	ReadingTime        int
	Status             string `gorm:"default:draft"`
	Featured           bool
	PublishedAt        *time.Time
	ScheduledPublishAt *time.Time
	CategoryID         uint
	Category           Category
	UserID             uint
	User               User
	Tags               []Tag `gorm:"many2many:post_tags;"`
}

// TagNames 返回文章关联的标签名列表
func (p *Post) TagNames() []string {
	names := make([]string, 0, len(p.Tags))
	for _, tag := range p.Tags {
		names = append(names, tag.Name)
	}
	return names
}
