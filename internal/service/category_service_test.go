package service

import (
	"errors"
	"testing"
	"time"

	"github.com/inkwell/internal/db"
)

func TestCategoryServicePublishedUsageCountsLivePostsOnly(t *testing.T) {
	gdb, cleanup := setupPostServiceTestDB(t)
	defer cleanup()

	tech := seedCategory(t, gdb, "Tech")
	seedCategory(t, gdb, "Life")
	author := seedUser(t, gdb, "alice")

	now := time.Now()
	live1 := db.Post{Title: "L1", Status: db.StatusPublished, PublishedAt: &now, CategoryID: tech.ID, UserID: author.ID}
	live2 := db.Post{Title: "L2", Status: db.StatusPublished, PublishedAt: &now, CategoryID: tech.ID, UserID: author.ID}
	draft := db.Post{Title: "D", Status: db.StatusDraft, CategoryID: tech.ID, UserID: author.ID}
	scheduled := db.Post{Title: "S", Status: db.StatusPublished, ScheduledPublishAt: &now, CategoryID: tech.ID, UserID: author.ID}

	for _, post := range []*db.Post{&live1, &live2, &draft, &scheduled} {
		if err := gdb.Create(post).Error; err != nil {
			t.Fatalf("seed post %q: %v", post.Title, err)
		}
	}

	svc := NewCategoryService(gdb)
	usages, err := svc.PublishedUsage()
	if err != nil {
		t.Fatalf("published usage: %v", err)
	}

	if len(usages) != 2 {
		t.Fatalf("expected 2 categories, got %d", len(usages))
	}
	// 按名称升序：Life 在前
	if usages[0].Name != "Life" || usages[0].Count != 0 {
		t.Fatalf("unexpected first row: %+v", usages[0])
	}
	if usages[1].Name != "Tech" || usages[1].Count != 2 {
		t.Fatalf("unexpected second row: %+v", usages[1])
	}
}

func TestCategoryServiceCreateRejectsDuplicates(t *testing.T) {
	gdb, cleanup := setupPostServiceTestDB(t)
	defer cleanup()

	svc := NewCategoryService(gdb)

	if _, err := svc.Create("Tech"); err != nil {
		t.Fatalf("create category: %v", err)
	}
	if _, err := svc.Create(" Tech "); !errors.Is(err, ErrCategoryExists) {
		t.Fatalf("expected ErrCategoryExists, got %v", err)
	}
	if _, err := svc.Create("   "); !errors.Is(err, ErrCategoryRequired) {
		t.Fatalf("expected ErrCategoryRequired, got %v", err)
	}
}

func TestCategoryServiceDeleteBlockedWhenInUse(t *testing.T) {
	gdb, cleanup := setupPostServiceTestDB(t)
	defer cleanup()

	category := seedCategory(t, gdb, "Tech")
	author := seedUser(t, gdb, "alice")

	post := db.Post{Title: "A", Status: db.StatusDraft, CategoryID: category.ID, UserID: author.ID}
	if err := gdb.Create(&post).Error; err != nil {
		t.Fatalf("seed post: %v", err)
	}

	svc := NewCategoryService(gdb)
	if err := svc.Delete(category.ID); !errors.Is(err, ErrCategoryInUse) {
		t.Fatalf("expected ErrCategoryInUse, got %v", err)
	}

	if err := gdb.Unscoped().Delete(&post).Error; err != nil {
		t.Fatalf("remove post: %v", err)
	}
	if err := svc.Delete(category.ID); err != nil {
		t.Fatalf("delete category: %v", err)
	}

	if err := svc.Delete(category.ID); !errors.Is(err, ErrCategoryNotFound) {
		t.Fatalf("expected ErrCategoryNotFound, got %v", err)
	}
}
