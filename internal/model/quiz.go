package model

import "time"

// Quiz is a set of questions attached to a course. Questions are stored as
// submitted by the client.
type Quiz struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CourseID  uint      `json:"course_id" gorm:"index"`
	Title     string    `json:"title" gorm:"size:255"`
	Questions string    `json:"questions" gorm:"type:text"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName pins the table name.
func (Quiz) TableName() string { return "quizzes" }
