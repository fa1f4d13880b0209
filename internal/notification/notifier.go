package notification

import (
	"encoding/json"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Notifier is the narrow interface domain packages emit events through.
type Notifier interface {
	Notify(userID uint, kind Kind, payload map[string]interface{})
}

// NotificationRepository defines persistence for notification rows.
type NotificationRepository interface {
	Create(n *Notification) error
	GetByUserID(userID uint, unreadOnly bool, page, limit int) ([]Notification, int64, error)
	MarkRead(id, userID uint) error
}

type notificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository creates a gorm-backed NotificationRepository.
func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(n *Notification) error {
	return r.db.Create(n).Error
}

func (r *notificationRepository) GetByUserID(userID uint, unreadOnly bool, page, limit int) ([]Notification, int64, error) {
	var items []Notification
	var total int64

	query := r.db.Model(&Notification{}).Where("user_id = ?", userID)
	if unreadOnly {
		query = query.Where("read_at IS NULL")
	}
	query.Count(&total)
	offset := (page - 1) * limit
	if err := query.Offset(offset).Limit(limit).Order("created_at desc").Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *notificationRepository) MarkRead(id, userID uint) error {
	result := r.db.Model(&Notification{}).
		Where("id = ? AND user_id = ? AND read_at IS NULL", id, userID).
		Update("read_at", gorm.Expr("CURRENT_TIMESTAMP"))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errors.New("notification not found or already read")
	}
	return nil
}

// Service persists notifications. Emission is best-effort: a failed insert is
// logged, never surfaced to the triggering operation.
type Service struct {
	repo NotificationRepository
}

// NewService creates a notification service.
func NewService(repo NotificationRepository) *Service {
	return &Service{repo: repo}
}

// Notify records a notification for userID.
func (s *Service) Notify(userID uint, kind Kind, payload map[string]interface{}) {
	body := ""
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			zap.L().Warn("failed to encode notification payload", zap.Error(err))
		} else {
			body = string(raw)
		}
	}
	n := &Notification{UserID: userID, Kind: kind, Payload: body}
	if err := s.repo.Create(n); err != nil {
		zap.L().Error("failed to persist notification",
			zap.Uint("user_id", userID), zap.String("kind", string(kind)), zap.Error(err))
	}
}
