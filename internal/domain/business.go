package domain

import "time"

type BusinessStatus string

const (
	BusinessPending  BusinessStatus = "pending"
	BusinessApproved BusinessStatus = "approved"
	BusinessRejected BusinessStatus = "rejected"
)

func (s BusinessStatus) Valid() bool {
	switch s {
	case BusinessPending, BusinessApproved, BusinessRejected:
		return true
	}
	return false
}

type Business struct {
	ID            string         `db:"id" json:"id"`
	Name          string         `db:"name" json:"name"`
	EmployeeCount int            `db:"employee_count" json:"employeeCount"`
	PhoneNumber   string         `db:"phone_number" json:"phoneNumber"`
	Email         string         `db:"email" json:"email"`
	Country       string         `db:"country" json:"country"`
	City          string         `db:"city" json:"city"`
	OwnerFullName string         `db:"owner_full_name" json:"ownerFullName"`
	Description   string         `db:"description" json:"description"`
	Image         *string        `db:"image" json:"image"`
	UserID        string         `db:"user_id" json:"userId"`
	Status        BusinessStatus `db:"status" json:"status"`
	CreatedAt     time.Time      `db:"created_at" json:"createdAt"`
}

type BusinessInput struct {
	Name          string `form:"name" json:"name"`
	EmployeeCount int    `form:"employeeCount" json:"employeeCount"`
	PhoneNumber   string `form:"phoneNumber" json:"phoneNumber"`
	Email         string `form:"email" json:"email"`
	Country       string `form:"country" json:"country"`
	City          string `form:"city" json:"city"`
	Description   string `form:"description" json:"description"`
	Image         string `form:"-" json:"-"`
}

// BusinessPatch follows the same absent-means-unchanged rule as TaskPatch.
type BusinessPatch struct {
	Name          *string `json:"name"`
	EmployeeCount *int    `json:"employeeCount"`
	PhoneNumber   *string `json:"phoneNumber"`
	Email         *string `json:"email"`
	Country       *string `json:"country"`
	City          *string `json:"city"`
	Description   *string `json:"description"`
	Image         *string `json:"-"`
}
