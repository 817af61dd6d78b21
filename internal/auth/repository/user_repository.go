package repository

import (
	"errors"
	"time"

	authdomain "eshop-backend/internal/auth/domain"
	"eshop-backend/pkg/push"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrUserNotFound is returned when an operation targets a user id that
// does not exist.
var ErrUserNotFound = errors.New("user not found")

// UserRepository is the recipient directory: it maps user identity to
// zero-or-one current device token.
type UserRepository interface {
	Create(user *authdomain.User) error
	FindByID(id string) (*authdomain.User, error)
	FindByEmail(email string) (*authdomain.User, error)

	// GetToken returns the user's current device token, or "" if absent.
	GetToken(userID string) (string, error)
	// SetToken overwrites the user's token unconditionally. Structurally
	// invalid tokens are stored as absent.
	SetToken(userID, token string) error
	// ClearToken removes the user's token; no-op if already absent.
	ClearToken(userID string) error
	// AllWithToken returns a snapshot of every (user, token) pair. Tokens
	// may become stale between snapshot and use.
	AllWithToken() ([]push.Recipient, error)
	// BulkClearTokens clears tokens for exactly the given user ids in one
	// statement, silently skipping unknown ids.
	BulkClearTokens(userIDs []string) (int64, error)
	// ClearTokensByValue clears every token matching one of the given
	// values, regardless of owner.
	ClearTokensByValue(tokens []string) (int64, error)
}

// userRepository implements UserRepository interface
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new instance of userRepository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{
		db: db,
	}
}

func (r *userRepository) Create(user *authdomain.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	user.CreatedAt = time.Now()
	user.UpdatedAt = time.Now()
	return r.db.Create(user).Error
}

func (r *userRepository) FindByID(id string) (*authdomain.User, error) {
	var user authdomain.User
	err := r.db.Where("id = ?", id).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByEmail(email string) (*authdomain.User, error) {
	var user authdomain.User
	err := r.db.Where("email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetToken(userID string) (string, error) {
	user, err := r.FindByID(userID)
	if err != nil {
		return "", err
	}
	if user == nil || user.DeviceToken == nil {
		return "", nil
	}
	return *user.DeviceToken, nil
}

func (r *userRepository) SetToken(userID, token string) error {
	var value any
	if push.IsValidToken(token) {
		value = token
	} else {
		value = nil
	}

	res := r.db.Model(&authdomain.User{}).
		Where("id = ?", userID).
		Updates(map[string]any{"device_token": value, "updated_at": time.Now()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *userRepository) ClearToken(userID string) error {
	return r.db.Model(&authdomain.User{}).
		Where("id = ?", userID).
		Updates(map[string]any{"device_token": nil, "updated_at": time.Now()}).Error
}

func (r *userRepository) AllWithToken() ([]push.Recipient, error) {
	var recipients []push.Recipient
	err := r.db.Model(&authdomain.User{}).
		Select("id AS user_id, device_token AS token").
		Where("device_token IS NOT NULL").
		Scan(&recipients).Error
	if err != nil {
		return nil, err
	}
	return recipients, nil
}

func (r *userRepository) BulkClearTokens(userIDs []string) (int64, error) {
	if len(userIDs) == 0 {
		return 0, nil
	}
	res := r.db.Model(&authdomain.User{}).
		Where("id IN ?", userIDs).
		Updates(map[string]any{"device_token": nil, "updated_at": time.Now()})
	return res.RowsAffected, res.Error
}

func (r *userRepository) ClearTokensByValue(tokens []string) (int64, error) {
	if len(tokens) == 0 {
		return 0, nil
	}
	res := r.db.Model(&authdomain.User{}).
		Where("device_token IN ?", tokens).
		Updates(map[string]any{"device_token": nil, "updated_at": time.Now()})
	return res.RowsAffected, res.Error
}
