// Package account holds the values returned by the user/account backend.
package account

// Status is the outcome of a successful account check.
type Status struct {
	Remaining int
}

// Profile is the outcome of a successful login.
type Profile struct {
	UserID string
	Role   string
}
