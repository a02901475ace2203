package models

// User represents a registered account. Username holds the e-mail
// address entered at registration.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Password string `json:"-"` // Never serialize password hash
}
