package model

import "time"

type List struct {
	ID          string    `gorm:"primaryKey" bson:"_id" json:"id"`
	UserID      string    `gorm:"not null;uniqueIndex:idx_lists_user_title" bson:"user_id" json:"user" validate:"required"`
	Title       string    `gorm:"not null;uniqueIndex:idx_lists_user_title" bson:"title" json:"title" validate:"required,max=100"`
	Description string    `bson:"description" json:"description,omitempty" validate:"max=500"`
	CreatedAt   time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt   time.Time `bson:"updated_at" json:"updatedAt"`
}

func (l List) RecordID() string { return l.ID }
