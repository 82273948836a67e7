package response

// AdminUser is the identity returned by login and session checks. There is a
// single configured admin, so ID, Username, and Name are fixed.
type AdminUser struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username"`
	Name     string `json:"name"`
	Role     string `json:"role"`
}

func NewAdminUser(email string) AdminUser {
	return AdminUser{
		ID:       "admin-1",
		Email:    email,
		Username: "admin",
		Name:     "Admin User",
		Role:     "admin",
	}
}
