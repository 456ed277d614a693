package domain

// User is an application account created through sign-up.
type User struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	CreatedAt string `json:"createdAt,omitempty"`
}

// NewUser holds the data needed to register an account.
type NewUser struct {
	Name     string
	Email    string
	Password string
}
