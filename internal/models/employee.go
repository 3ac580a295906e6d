package models

import "time"

// Employee represents a staff member who can log in and be assigned chats.
type Employee struct {
	EmployeeID   string    `json:"employeeId"`
	FirstName    string    `json:"firstName,omitempty"`
	LastName     string    `json:"lastName,omitempty"`
	NickName     string    `json:"nickName,omitempty"`
	Email        string    `json:"email"`
	Role         string    `json:"role,omitempty"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}
