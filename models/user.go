package models

import "time"

type User struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	Username        string    `gorm:"column:username;uniqueIndex;size:80;not null" json:"username"`
	Email           string    `gorm:"column:email;uniqueIndex;size:120;not null" json:"email"`
	PasswordHash    string    `gorm:"column:password_hash;size:255;not null" json:"-"`
	Role            string    `gorm:"column:role;size:20;default:user" json:"role"`
	IsActiveAccount bool      `gorm:"column:is_active_account;default:false" json:"is_active"`
	IsPendingAdmin  bool      `gorm:"column:is_pending_admin;default:false" json:"is_pending_admin"`
	ActivationToken *string   `gorm:"column:activation_token;size:100" json:"-"`
	CreatedAt       time.Time `gorm:"column:created_at" json:"created_at"`
}

func (User) TableName() string { return "users" }
