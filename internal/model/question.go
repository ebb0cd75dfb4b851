package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Option is one selectable choice on a question. Order is 1-based and follows
// the submission sequence.
type Option struct {
	ID    string `json:"id"`
	Text  string `json:"text"`
	Order int    `json:"order"`
}

// Question represents a poll question inside a tenant partition. Options are
// stored inline; an update that carries options replaces the whole list and
// assigns fresh option ids.
type Question struct {
	ID        string    `json:"id" gorm:"type:uuid;primaryKey"`
	Text      string    `json:"text" gorm:"type:text;not null"`
	Options   []Option  `json:"options" gorm:"type:jsonb;serializer:json"`
	IsActive  bool      `json:"is_active" gorm:"default:true"`
	CreatedBy string    `json:"created_by" gorm:"type:varchar(150)"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (q *Question) BeforeCreate(tx *gorm.DB) error {
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	return nil
}

// OptionByID returns the option with the given id, or nil.
func (q *Question) OptionByID(id string) *Option {
	for i := range q.Options {
		if q.Options[i].ID == id {
			return &q.Options[i]
		}
	}
	return nil
}
