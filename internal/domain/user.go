package domain

// User Model
type User struct {
	ID       uint   `gorm:"primaryKey" json:"id"`                     // Primary key
	Email    string `gorm:"size:100;unique;not null" json:"email"`    // Unique email address
	Username string `gorm:"size:100;unique;not null" json:"username"` // Unique display name, 5-20 characters
	Password string `gorm:"size:100;not null" json:"-"`               // Hashed password, never serialized
	Admin    bool   `gorm:"not null" json:"admin"`                    // Admin flag
}
