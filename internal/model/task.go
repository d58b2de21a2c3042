package model

import "time"

type TaskStatus string

const (
	StatusUnassigned TaskStatus = "Unassigned"
	StatusOngoing    TaskStatus = "On-going"
	StatusDone       TaskStatus = "Done"
)

func (s TaskStatus) Valid() bool {
	switch s {
	case StatusUnassigned, StatusOngoing, StatusDone:
		return true
	}

	return false
}

type Task struct {
	ID          string     `gorm:"primaryKey" bson:"_id" json:"id"`
	UserID      string     `gorm:"not null;index" bson:"user_id" json:"user" validate:"required"`
	ListID      string     `gorm:"not null;index" bson:"list_id" json:"list" validate:"required"`
	Title       string     `gorm:"not null" bson:"title" json:"title" validate:"required,max=100"`
	Description string     `bson:"description" json:"description,omitempty" validate:"max=500"`
	Status      TaskStatus `gorm:"not null;default:Unassigned" bson:"status" json:"status" validate:"oneof=Unassigned On-going Done"`
	DueDate     *time.Time `bson:"due_date" json:"dueDate,omitempty"`
	CreatedAt   time.Time  `bson:"created_at" json:"createdAt"`
	UpdatedAt   time.Time  `bson:"updated_at" json:"updatedAt"`
}

func (t Task) RecordID() string { return t.ID }
