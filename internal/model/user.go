// Package model defines database models
package model

import "time"

type User struct {
	ID           string `gorm:"primaryKey" bson:"_id" json:"id"`
	FirstName    string `gorm:"not null" bson:"first_name" json:"firstName" validate:"required,max=50"`
	LastName     string `gorm:"not null" bson:"last_name" json:"lastName" validate:"required,max=50"`
	Age          int    `gorm:"not null" bson:"age" json:"age" validate:"gte=0,lte=150"`
	Email        string `gorm:"uniqueIndex;not null" bson:"email" json:"email" validate:"required,email,max=254"`
	PasswordHash string `gorm:"not null" bson:"password_hash" json:"-" validate:"required"`

	// Both are nil or both are set
	ResetToken     *string    `bson:"reset_token" json:"-"`
	ResetExpiresAt *time.Time `gorm:"index" bson:"reset_expires_at" json:"-"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

func (u User) RecordID() string { return u.ID }

// ResetPending reports whether the account holds a reset token that hasn't
// expired at now.
func (u *User) ResetPending(now time.Time) bool {
	return u.ResetToken != nil && u.ResetExpiresAt != nil && now.Before(*u.ResetExpiresAt)
}
