package models

// DefaultRole is assigned when a user is created without explicit roles.
const DefaultRole = "User"

// User captures application-facing fields for an account.
type User struct {
	ID           string   `json:"_id" bson:"_id"`
	Username     string   `json:"username" bson:"username"`
	PasswordHash string   `json:"-" bson:"password"`
	Avatar       string   `json:"avatar,omitempty" bson:"avatar,omitempty"`
	Roles        []string `json:"roles" bson:"roles"`
	Active       bool     `json:"active" bson:"active"`
}

// NewUser builds an active user with defaults resolved.
func NewUser(username, passwordHash string, roles []string) User {
	if len(roles) == 0 {
		roles = []string{DefaultRole}
	}
	return User{
		Username:     username,
		PasswordHash: passwordHash,
		Roles:        append([]string(nil), roles...),
		Active:       true,
	}
}
