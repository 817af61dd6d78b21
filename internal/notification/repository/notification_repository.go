package repository

import (
	"time"

	notifdomain "eshop-backend/internal/notification/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// NotificationRepository is the append-only notification record store.
// Callers in the delivery path treat a store failure as loggable, never
// fatal: a missing in-app record is non-fatal, a crashed dispatcher is not.
type NotificationRepository interface {
	Create(n *notifdomain.Notification) error
	CreateBatch(ns []notifdomain.Notification) error
	// ListByUser returns a page of the user's notifications, newest first,
	// along with the total and unread counts.
	ListByUser(userID string, limit, offset int) ([]notifdomain.Notification, int64, int64, error)
	MarkRead(id, userID string) error
	MarkAllRead(userID string) error
	Delete(id, userID string) error
}

// notificationRepository implements NotificationRepository interface
type notificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository creates a new instance of notificationRepository
func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{
		db: db,
	}
}

func (r *notificationRepository) Create(n *notifdomain.Notification) error {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	n.CreatedAt = time.Now()
	return r.db.Create(n).Error
}

func (r *notificationRepository) CreateBatch(ns []notifdomain.Notification) error {
	if len(ns) == 0 {
		return nil
	}
	now := time.Now()
	for i := range ns {
		if ns[i].ID == "" {
			ns[i].ID = uuid.New().String()
		}
		ns[i].CreatedAt = now
	}
	return r.db.CreateInBatches(ns, 100).Error
}

func (r *notificationRepository) ListByUser(userID string, limit, offset int) ([]notifdomain.Notification, int64, int64, error) {
	if limit <= 0 {
		limit = 20
	}

	var notifications []notifdomain.Notification
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&notifications).Error
	if err != nil {
		return nil, 0, 0, err
	}

	var total int64
	if err := r.db.Model(&notifdomain.Notification{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, 0, err
	}

	var unread int64
	if err := r.db.Model(&notifdomain.Notification{}).Where("user_id = ? AND read = ?", userID, false).Count(&unread).Error; err != nil {
		return nil, 0, 0, err
	}

	return notifications, total, unread, nil
}

func (r *notificationRepository) MarkRead(id, userID string) error {
	return r.db.Model(&notifdomain.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("read", true).Error
}

func (r *notificationRepository) MarkAllRead(userID string) error {
	return r.db.Model(&notifdomain.Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Update("read", true).Error
}

func (r *notificationRepository) Delete(id, userID string) error {
	return r.db.Where("id = ? AND user_id = ?", id, userID).
		Delete(&notifdomain.Notification{}).Error
}
