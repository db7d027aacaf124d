package model

import "time"

// User is a registered app user. The console only reads these.
type User struct {
	Name     string    `json:"name"`
	Phone    string    `json:"phone"`
	Program  string    `json:"program"`
	Branch   string    `json:"branch"`
	Semester int       `json:"semester"`
	JoinedAt time.Time `json:"joinedAt"`
}

// Subject is a code/name pair derived from the loaded resources.
type Subject struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// Credentials is the admin login form.
type Credentials struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}
