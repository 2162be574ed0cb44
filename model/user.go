package model

import (
	"time"

	"zapchat/platform"
)

// User is identified by the WhatsApp number typed at login.
type User struct {
	ID             uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	WhatsappNumber string    `gorm:"type:varchar(32);not null;unique" json:"whatsapp_number"`
	FullName       string    `gorm:"type:varchar(255);not null" json:"full_name"`
	IsAdmin        bool      `json:"is_admin"`
	LastLoginAt    time.Time `json:"last_login_at"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func GetUserByWhatsappNumber(number string) (*User, error) {
	var user User
	if err := platform.DB.Where("whatsapp_number = ?", number).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func GetUserByID(id uint) (*User, error) {
	var user User
	if err := platform.DB.First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func CreateUser(user *User) error {
	return platform.DB.Create(user).Error
}

func UpdateUserLogin(id uint, fullName string) error {
	return platform.DB.Model(&User{}).Where("id = ?", id).Updates(map[string]interface{}{
		"full_name":     fullName,
		"last_login_at": time.Now(),
	}).Error
}
