package model

import "time"

// Course is the persisted CourseAsset: course metadata plus the stored file it links to.
type Course struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Title       string    `json:"title" gorm:"size:255"`
	Description string    `json:"description" gorm:"type:text"`
	FilePath    string    `json:"file_path" gorm:"size:512;not null"`
	FileType    string    `json:"file_type" gorm:"size:255;not null"`
	CreatedAt   time.Time `json:"created_at"`
}

// TableName pins the table name.
func (Course) TableName() string { return "courses" }
