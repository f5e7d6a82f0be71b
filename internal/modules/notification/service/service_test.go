package service

import (
	"context"
	"errors"
	"testing"

	"anoa.com/practiceforum/internal/entity"
	"anoa.com/practiceforum/pkg/apperror"
	"github.com/google/uuid"
)

type fakeNotificationRepo struct {
	rows []entity.Notification
}

func (f *fakeNotificationRepo) Create(ctx context.Context, n *entity.Notification) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	f.rows = append(f.rows, *n)
	return nil
}

func (f *fakeNotificationRepo) GetByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]entity.Notification, error) {
	var out []entity.Notification
	for _, n := range f.rows {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (f *fakeNotificationRepo) MarkAsRead(ctx context.Context, id, userID uuid.UUID) (int64, error) {
	for i := range f.rows {
		if f.rows[i].ID == id && f.rows[i].UserID == userID {
			f.rows[i].IsRead = true
			return 1, nil
		}
	}
	return 0, nil
}

func (f *fakeNotificationRepo) MarkAllAsRead(ctx context.Context, userID uuid.UUID) error {
	for i := range f.rows {
		if f.rows[i].UserID == userID {
			f.rows[i].IsRead = true
		}
	}
	return nil
}

func (f *fakeNotificationRepo) CountUnread(ctx context.Context, userID uuid.UUID) (int64, error) {
	var n int64
	for _, row := range f.rows {
		if row.UserID == userID && !row.IsRead {
			n++
		}
	}
	return n, nil
}

func TestNotificationLifecycle(t *testing.T) {
	repo := &fakeNotificationRepo{}
	svc := NewNotificationService(repo, nil)
	ctx := context.Background()
	owner, stranger := uuid.New(), uuid.New()

	n := &entity.Notification{UserID: owner, EntityType: "rank", EntityID: uuid.New(), Type: entity.NotificationRankIncrease}
	if err := svc.CreateNotification(ctx, n); err != nil {
		t.Fatalf("CreateNotification() error = %v", err)
	}

	if count, _ := svc.UnreadCount(ctx, owner); count != 1 {
		t.Fatalf("unread = %d, want 1", count)
	}
	if err := svc.MarkAsRead(ctx, n.ID, stranger); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("marking someone else's notification: error = %v", err)
	}
	if err := svc.MarkAsRead(ctx, n.ID, owner); err != nil {
		t.Fatalf("MarkAsRead() error = %v", err)
	}
	if count, _ := svc.UnreadCount(ctx, owner); count != 0 {
		t.Errorf("unread = %d, want 0", count)
	}
}

func TestChannel(t *testing.T) {
	if got := Channel("abc"); got != "user_notifications:abc" {
		t.Errorf("Channel() = %q", got)
	}
}
