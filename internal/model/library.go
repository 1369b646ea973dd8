package model

import "time"

// LibraryItem is how cart and favorite entries are presented: the subcategory and its category.
type LibraryItem struct {
	SubcategoryID   int      `json:"subcategory_id"`
	SubcategoryName string   `json:"subcategory_name"`
	CategoryID      int      `json:"category_id"`
	CategoryName    string   `json:"category_name"`
	Rate            *float64 `json:"rate"`
	Image           *string  `json:"image"`
}

// SubcategoryRef is the body shared by cart, favorite and my-course mutations.
type SubcategoryRef struct {
	SubcategoryID int `json:"subcategory_id" binding:"required,gt=0"`
}

// MyCourse is a subcategory the user enrolled in. Category and subcategory names are
// snapshotted at enrollment time; rate, image and modules are read live.
type MyCourse struct {
	UserID           int          `json:"user_id"`
	CategoryID       int          `json:"category_id"`
	CategoryName     string       `json:"category_name"`
	SubcategoryID    int          `json:"subcategory_id"`
	SubcategoryName  string       `json:"subcategory_name"`
	Rate             *float64     `json:"rate"`
	SubcategoryImage *string      `json:"subcategory_image"`
	Modules          []Module     `json:"modules"`
	FinalModule      *FinalModule `json:"final_module,omitempty"`
	CreatedAt        time.Time    `json:"-"`
}

// ModuleStatus records whether a user passed a module.
type ModuleStatus struct {
	ModuleID  string    `json:"module_id"`
	IsPassed  bool      `json:"is_passed"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CompleteModuleRequest is the body of POST /progress/modules.
type CompleteModuleRequest struct {
	ModuleID string `json:"module_id" binding:"required"`
	IsPassed *bool  `json:"is_passed" binding:"required"`
}
