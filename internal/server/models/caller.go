package models

// Caller is the authenticated identity a request acts as.
type Caller struct {
	ID       string
	Username string
}
