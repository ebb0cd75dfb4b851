package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Response records one user's answer to a question. SelectedOptionText is a
// snapshot taken at submission time and survives later edits to the question.
// The composite unique index enforces one response per (question, user) at the
// storage layer, closing the window left by the pre-insert existence check.
type Response struct {
	ID                 string    `json:"id" gorm:"type:uuid;primaryKey"`
	QuestionID         string    `json:"question_id" gorm:"type:uuid;uniqueIndex:idx_responses_question_user"`
	UserID             string    `json:"user_id" gorm:"type:uuid;uniqueIndex:idx_responses_question_user"`
	UserEmail          string    `json:"user_email" gorm:"type:varchar(150)"`
	UserName           string    `json:"user_name" gorm:"type:varchar(100)"`
	SelectedOptionID   string    `json:"selected_option_id" gorm:"type:uuid;not null"`
	SelectedOptionText string    `json:"selected_option_text" gorm:"type:text"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

func (r *Response) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}
