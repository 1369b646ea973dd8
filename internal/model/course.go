package model

import "time"

// Course is a sellable course listed in the shop.
type Course struct {
	ID        int       `json:"id"`
	Course    string    `json:"course"`
	Rate      float64   `json:"rate"`
	Discount  *float64  `json:"discount"`
	Purchase  *float64  `json:"purchase"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CourseRequest is used for creating and updating a course.
type CourseRequest struct {
	Course   string   `json:"course" binding:"required,max=255"`
	Rate     *float64 `json:"rate" binding:"required,gte=0"`
	Discount *float64 `json:"discount" binding:"omitempty,gte=0"`
	Purchase *float64 `json:"purchase" binding:"omitempty,gte=0"`
}

// PurchasedCourse is one entry in a user's purchase history.
type PurchasedCourse struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}
