package store

import (
	"cafe_directory/internal/domain"

	"gorm.io/gorm"
)

// GetUserByID looks up an account by primary key.
func GetUserByID(db *gorm.DB, id uint) (*domain.User, error) {
	var user domain.User
	if err := db.First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByEmail looks up an account by its unique email.
func GetUserByEmail(db *gorm.DB, email string) (*domain.User, error) {
	var user domain.User
	if err := db.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// CreateUser persists a new account. The existence pre-check in the handler
// is best effort only; the unique constraints here are the authoritative
// enforcement point for concurrent registrations.
func CreateUser(db *gorm.DB, user *domain.User) error {
	return db.Create(user).Error
}

// ListUsers returns a page of accounts plus the total count.
func ListUsers(db *gorm.DB, offset, limit int) ([]domain.User, int64, error) {
	var total int64
	if err := db.Model(&domain.User{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var users []domain.User
	if err := db.Order("id").Offset(offset).Limit(limit).Find(&users).Error; err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

// AdminFlagUpdate is one entry of a bulk admin-promotion request.
type AdminFlagUpdate struct {
	ID    uint
	Admin bool
}

// SetAdminFlags applies a bulk admin-flag update inside one transaction, so
// a failure partway through leaves no half-applied promotion.
func SetAdminFlags(db *gorm.DB, updates []AdminFlagUpdate) error {
	return db.Transaction(func(tx *gorm.DB) error {
		for _, u := range updates {
			if err := tx.Model(&domain.User{}).Where("id = ?", u.ID).Update("admin", u.Admin).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
