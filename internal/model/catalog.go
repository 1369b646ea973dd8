package model

import (
	"io"
	"time"
)

const (
	ModuleIDPrefix      = "module_"
	FinalModuleIDPrefix = "final_module_"
)

// Category groups subcategories (the purchasable learning tracks).
type Category struct {
	ID            int           `json:"id"`
	Name          string        `json:"name"`
	Image         *string       `json:"image"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
	Subcategories []Subcategory `json:"subcategories,omitempty"`
}

// Question is a multiple choice quiz item attached to a module.
type Question struct {
	QuestionText  string `json:"question_text" binding:"required"`
	Option1       string `json:"option_1" binding:"required"`
	Option2       string `json:"option_2" binding:"required"`
	Option3       string `json:"option_3" binding:"required"`
	Option4       string `json:"option_4" binding:"required"`
	CorrectOption string `json:"correct_option" binding:"required"`
}

// Module is one video lesson of a subcategory.
type Module struct {
	ModuleID   string     `json:"module_id"`
	ModuleName *string    `json:"module_name"`
	VideoURL   *string    `json:"video_url"`
	VideoFile  *string    `json:"video_file"`
	IsPassed   bool       `json:"is_passed"`
	Questions  []Question `json:"questions"`
}

// FinalModule is the closing quiz of a subcategory.
type FinalModule struct {
	ModuleID  string     `json:"module_id"`
	Questions []Question `json:"questions"`
}

// Subcategory is a course track with embedded modules, stored as JSONB.
type Subcategory struct {
	ID           int          `json:"id"`
	CategoryID   int          `json:"category_id"`
	CategoryName string       `json:"category_name,omitempty"`
	Name         string       `json:"name"`
	Rate         *float64     `json:"rate"`
	Images       *string      `json:"images"`
	Modules      []Module     `json:"modules"`
	FinalModule  *FinalModule `json:"final_module"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// ModuleInput is a module as supplied by the client. ModuleID is honoured on update only,
// VideoFile on create only. Module questions are stored as sent, without per-field rules.
type ModuleInput struct {
	ModuleID   *string    `json:"module_id"`
	ModuleName *string    `json:"module_name"`
	VideoURL   *string    `json:"video_url"`
	VideoFile  *string    `json:"video_file"`
	IsPassed   *bool      `json:"is_passed"`
	Questions  []Question `json:"questions"`
}

// FinalModuleInput is the client supplied final quiz.
type FinalModuleInput struct {
	Questions []Question `json:"questions" binding:"omitempty,dive"`
}

// SubcategoryRequest is the body for creating or updating a subcategory.
type SubcategoryRequest struct {
	Name        string            `json:"name" binding:"required"`
	CategoryID  int               `json:"category_id" binding:"required,gt=0"`
	Rate        *float64          `json:"rate" binding:"omitempty,gte=0"`
	Images      *string           `json:"images"`
	Modules     []ModuleInput     `json:"modules" binding:"omitempty,dive"`
	FinalModule *FinalModuleInput `json:"final_module"`
}

// Upload is a file received alongside a request, detached from the transport.
type Upload struct {
	Filename string
	Size     int64
	Open     func() (io.ReadCloser, error)
}
