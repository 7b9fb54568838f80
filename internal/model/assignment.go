package model

import "time"

// Assignment is a piece of coursework attached to a course.
type Assignment struct {
	ID          uint       `json:"id" gorm:"primaryKey"`
	CourseID    uint       `json:"course_id" gorm:"index"`
	Title       string     `json:"title" gorm:"size:255"`
	Description string     `json:"description" gorm:"type:text"`
	DueDate     *time.Time `json:"due_date" gorm:"type:date"`
	CreatedAt   time.Time  `json:"created_at"`
}

// TableName pins the table name.
func (Assignment) TableName() string { return "assignments" }
