package handler

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/inkwell/internal/db"
)

func TestGetCategoriesReturnsCounts(t *testing.T) {
	api, gdb, cleanup := setupTestDB(t)
	defer cleanup()
	category, user := seedHandlerFixtures(t, gdb)

	if err := gdb.Create(&db.Category{Name: "Life"}).Error; err != nil {
		t.Fatalf("failed to seed category: %v", err)
	}

	now := time.Now()
	live := db.Post{Title: "Live", Status: db.StatusPublished, PublishedAt: &now, CategoryID: category.ID, UserID: user.ID}
	draft := db.Post{Title: "Draft", Status: db.StatusDraft, CategoryID: category.ID, UserID: user.ID}
	for _, post := range []*db.Post{&live, &draft} {
		if err := gdb.Create(post).Error; err != nil {
			t.Fatalf("failed to seed post: %v", err)
		}
	}

	c, w := newJSONContext(t, http.MethodGet, "/categories", nil)
	api.GetCategories(c)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	var resp struct {
		Categories []struct {
			Name      string `json:"name"`
			PostCount int64  `json:"post_count"`
		} `json:"categories"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if len(resp.Categories) != 2 {
		t.Fatalf("expected 2 categories, got %d", len(resp.Categories))
	}
	if resp.Categories[0].Name != "Life" || resp.Categories[0].PostCount != 0 {
		t.Fatalf("unexpected first category: %+v", resp.Categories[0])
	}
	if resp.Categories[1].Name != "Tech" || resp.Categories[1].PostCount != 1 {
		t.Fatalf("unexpected second category: %+v", resp.Categories[1])
	}
}

func TestCreateCategoryDuplicateName(t *testing.T) {
	api, gdb, cleanup := setupTestDB(t)
	defer cleanup()

	if err := gdb.Create(&db.Category{Name: "Tech"}).Error; err != nil {
		t.Fatalf("failed to seed category: %v", err)
	}

	c, w := newJSONContext(t, http.MethodPost, "/categories", map[string]any{"name": "Tech"})
	api.CreateCategory(c)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", w.Code)
	}
}

func TestCreateCategorySuccess(t *testing.T) {
	api, _, cleanup := setupTestDB(t)
	defer cleanup()

	c, w := newJSONContext(t, http.MethodPost, "/categories", map[string]any{"name": "Tech"})
	api.CreateCategory(c)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", w.Code, w.Body.String())
	}
}
