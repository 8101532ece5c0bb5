package service

import (
	"testing"
	"time"

	"github.com/inkwell/internal/db"
)

func TestPublishSchedulerPromotesDuePosts(t *testing.T) {
	gdb, cleanup := setupPostServiceTestDB(t)
	defer cleanup()

	category := seedCategory(t, gdb, "Tech")
	author := seedUser(t, gdb, "alice")

	now := time.Now()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)
	alreadyLive := now.Add(-2 * time.Hour)

	due := db.Post{Title: "Due", Status: db.StatusPublished, ScheduledPublishAt: &past, CategoryID: category.ID, UserID: author.ID}
	notDue := db.Post{Title: "Future", Status: db.StatusPublished, ScheduledPublishAt: &future, CategoryID: category.ID, UserID: author.ID}
	draft := db.Post{Title: "Draft", Status: db.StatusDraft, ScheduledPublishAt: &past, CategoryID: category.ID, UserID: author.ID}
	live := db.Post{Title: "Live", Status: db.StatusPublished, ScheduledPublishAt: &past, PublishedAt: &alreadyLive, CategoryID: category.ID, UserID: author.ID}

	for _, post := range []*db.Post{&due, &notDue, &draft, &live} {
		if err := gdb.Create(post).Error; err != nil {
			t.Fatalf("seed post %q: %v", post.Title, err)
		}
	}

	scheduler := NewPublishScheduler(gdb)
	promoted, err := scheduler.Run(now)
	if err != nil {
		t.Fatalf("run scheduler: %v", err)
	}

	if len(promoted) != 1 || promoted[0] != due.ID {
		t.Fatalf("expected only post %d to be promoted, got %v", due.ID, promoted)
	}

	var reloaded db.Post
	if err := gdb.First(&reloaded, due.ID).Error; err != nil {
		t.Fatalf("reload due post: %v", err)
	}
	if reloaded.PublishedAt == nil {
		t.Fatal("expected published_at to be set after promotion")
	}

	var untouched db.Post
	if err := gdb.First(&untouched, notDue.ID).Error; err != nil {
		t.Fatalf("reload future post: %v", err)
	}
	if untouched.PublishedAt != nil {
		t.Fatalf("future post should not be promoted, got %v", untouched.PublishedAt)
	}

	var liveReloaded db.Post
	if err := gdb.First(&liveReloaded, live.ID).Error; err != nil {
		t.Fatalf("reload live post: %v", err)
	}
	if liveReloaded.PublishedAt == nil || !liveReloaded.PublishedAt.Equal(alreadyLive) {
		t.Fatalf("live post timestamp must not change, got %v", liveReloaded.PublishedAt)
	}
}

func TestPublishSchedulerIsIdempotent(t *testing.T) {
	gdb, cleanup := setupPostServiceTestDB(t)
	defer cleanup()

	category := seedCategory(t, gdb, "Tech")
	author := seedUser(t, gdb, "alice")

	now := time.Now()
	past := now.Add(-time.Minute)
	post := db.Post{Title: "Due", Status: db.StatusPublished, ScheduledPublishAt: &past, CategoryID: category.ID, UserID: author.ID}
	if err := gdb.Create(&post).Error; err != nil {
		t.Fatalf("seed post: %v", err)
	}

	scheduler := NewPublishScheduler(gdb)

	first, err := scheduler.Run(now)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	if len(first) != 1 {
		t.Fatalf("expected one promotion on first run, got %v", first)
	}

	var afterFirst db.Post
	if err := gdb.First(&afterFirst, post.ID).Error; err != nil {
		t.Fatalf("reload post: %v", err)
	}
	if afterFirst.PublishedAt == nil {
		t.Fatal("expected published_at after first run")
	}
	stamp := *afterFirst.PublishedAt

	second, err := scheduler.Run(now.Add(time.Minute))
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if len(second) != 0 {
		t.Fatalf("expected no-op on second run, got %v", second)
	}

	var afterSecond db.Post
	if err := gdb.First(&afterSecond, post.ID).Error; err != nil {
		t.Fatalf("reload post: %v", err)
	}
	if afterSecond.PublishedAt == nil || !afterSecond.PublishedAt.Equal(stamp) {
		t.Fatalf("published_at changed across runs: %v vs %v", stamp, afterSecond.PublishedAt)
	}
}

func TestPublishSchedulerEmptySweepIsNoOp(t *testing.T) {
	gdb, cleanup := setupPostServiceTestDB(t)
	defer cleanup()

	scheduler := NewPublishScheduler(gdb)
	promoted, err := scheduler.Run(time.Now())
	if err != nil {
		t.Fatalf("run scheduler: %v", err)
	}
	if len(promoted) != 0 {
		t.Fatalf("expected empty sweep, got %v", promoted)
	}
}
