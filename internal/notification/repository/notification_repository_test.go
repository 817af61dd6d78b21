package repository

import (
	"fmt"
	"testing"
	"time"

	notifdomain "eshop-backend/internal/notification/domain"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()))
	db, err := gorm.Open(dsn, &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&notifdomain.Notification{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestListByUser_NewestFirst(t *testing.T) {
	db := newTestDB(t)
	repo := NewNotificationRepository(db)

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 3; i++ {
		n := notifdomain.Notification{
			ID:        fmt.Sprintf("n-%d", i),
			UserID:    "u1",
			Title:     fmt.Sprintf("title %d", i),
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		if err := db.Create(&n).Error; err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	// Another user's record must not leak into the listing.
	other := notifdomain.Notification{ID: "n-other", UserID: "u2", Title: "other", CreatedAt: base}
	if err := db.Create(&other).Error; err != nil {
		t.Fatalf("seed other: %v", err)
	}

	notifications, total, unread, err := repo.ListByUser("u1", 10, 0)
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if total != 3 || unread != 3 {
		t.Fatalf("total = %d, unread = %d, want 3/3", total, unread)
	}
	if len(notifications) != 3 {
		t.Fatalf("len = %d, want 3", len(notifications))
	}
	if notifications[0].ID != "n-2" || notifications[2].ID != "n-0" {
		t.Fatalf("wrong order: %s, %s, %s", notifications[0].ID, notifications[1].ID, notifications[2].ID)
	}
}

func TestListByUser_Pagination(t *testing.T) {
	db := newTestDB(t)
	repo := NewNotificationRepository(db)

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 5; i++ {
		n := notifdomain.Notification{
			ID:        fmt.Sprintf("n-%d", i),
			UserID:    "u1",
			Title:     "t",
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		if err := db.Create(&n).Error; err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	page, total, _, err := repo.ListByUser("u1", 2, 2)
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if total != 5 {
		t.Fatalf("total = %d, want 5", total)
	}
	if len(page) != 2 || page[0].ID != "n-2" || page[1].ID != "n-1" {
		t.Fatalf("unexpected page: %+v", page)
	}
}

func TestMarkRead_Idempotent(t *testing.T) {
	db := newTestDB(t)
	repo := NewNotificationRepository(db)

	n := &notifdomain.Notification{UserID: "u1", Title: "t"}
	if err := repo.Create(n); err != nil {
		t.Fatalf("Create: %v", err)
	}

	for i := 0; i < 2; i++ {
		if err := repo.MarkRead(n.ID, "u1"); err != nil {
			t.Fatalf("MarkRead: %v", err)
		}
	}

	_, _, unread, err := repo.ListByUser("u1", 10, 0)
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if unread != 0 {
		t.Fatalf("unread = %d, want 0", unread)
	}
}

func TestMarkRead_WrongUserIsNoOp(t *testing.T) {
	db := newTestDB(t)
	repo := NewNotificationRepository(db)

	n := &notifdomain.Notification{UserID: "u1", Title: "t"}
	if err := repo.Create(n); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := repo.MarkRead(n.ID, "u2"); err != nil {
		t.Fatalf("MarkRead: %v", err)
	}

	_, _, unread, err := repo.ListByUser("u1", 10, 0)
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if unread != 1 {
		t.Fatalf("unread = %d, want 1", unread)
	}
}

func TestMarkAllRead(t *testing.T) {
	db := newTestDB(t)
	repo := NewNotificationRepository(db)

	for i := 0; i < 3; i++ {
		if err := repo.Create(&notifdomain.Notification{UserID: "u1", Title: "t"}); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	if err := repo.MarkAllRead("u1"); err != nil {
		t.Fatalf("MarkAllRead: %v", err)
	}
	if err := repo.MarkAllRead("u1"); err != nil {
		t.Fatalf("MarkAllRead again: %v", err)
	}

	_, total, unread, err := repo.ListByUser("u1", 10, 0)
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if total != 3 || unread != 0 {
		t.Fatalf("total = %d, unread = %d, want 3/0", total, unread)
	}
}

func TestCreateBatchAndDelete(t *testing.T) {
	db := newTestDB(t)
	repo := NewNotificationRepository(db)

	batch := []notifdomain.Notification{
		{UserID: "u1", Title: "a"},
		{UserID: "u2", Title: "b"},
	}
	if err := repo.CreateBatch(batch); err != nil {
		t.Fatalf("CreateBatch: %v", err)
	}
	if err := repo.CreateBatch(nil); err != nil {
		t.Fatalf("CreateBatch empty: %v", err)
	}

	list, total, _, err := repo.ListByUser("u1", 10, 0)
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if total != 1 {
		t.Fatalf("total = %d, want 1", total)
	}

	if err := repo.Delete(list[0].ID, "u1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	_, total, _, err = repo.ListByUser("u1", 10, 0)
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if total != 0 {
		t.Fatalf("total after delete = %d, want 0", total)
	}
}
