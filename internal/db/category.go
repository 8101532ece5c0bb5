package db

import "gorm.io/gorm"

// Category 定义了分类模型，一篇文章只属于一个分类
type Category struct {
	gorm.Model
	Name  string `gorm:"unique;not null"`
	Posts []Post
}
