package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DateLayout is the calendar-date format of BlogPost.Date.
const DateLayout = "2006-01-02"

// BlogPost is a published blog entry. Seq is the insertion order and only
// breaks ties between posts sharing a date.
type BlogPost struct {
	Seq       uint      `json:"-" gorm:"primaryKey;autoIncrement"`
	ID        uuid.UUID `json:"id" gorm:"type:char(36);uniqueIndex;not null"`
	Title     string    `json:"title" gorm:"size:255;not null"`
	Excerpt   string    `json:"excerpt" gorm:"type:text;not null"`
	Content   string    `json:"content" gorm:"type:text;not null"`
	Date      string    `json:"date" gorm:"type:char(10);not null;index"`
	Theme     string    `json:"theme" gorm:"size:255;not null"`
	Author    string    `json:"author" gorm:"size:255;not null"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

// BeforeCreate sets UUID before creating the record.
func (p *BlogPost) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// Apply replaces every user-editable field with the input.
func (p *BlogPost) Apply(in PostInput) {
	p.Title = in.Title
	p.Excerpt = in.Excerpt
	p.Content = in.Content
	p.Date = in.Date
	p.Theme = in.Theme
	p.Author = in.Author
}

// Input returns the user-editable fields of the post.
func (p *BlogPost) Input() PostInput {
	return PostInput{
		Title:   p.Title,
		Excerpt: p.Excerpt,
		Content: p.Content,
		Date:    p.Date,
		Theme:   p.Theme,
		Author:  p.Author,
	}
}

// PostInput is the create/update payload: a BlogPost minus its id. Field
// order is the order in which validation reports the first failure.
type PostInput struct {
	Title   string `json:"title" validate:"required"`
	Excerpt string `json:"excerpt" validate:"required"`
	Content string `json:"content" validate:"required"`
	Date    string `json:"date" validate:"isodate"`
	Theme   string `json:"theme" validate:"required"`
	Author  string `json:"author" validate:"required"`
}

// Validate reports the first invalid field as a *errors.ValidationError.
func (in PostInput) Validate() error {
	return Validate(in)
}
