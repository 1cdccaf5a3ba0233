package account

import "time"

// Roles.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Account is a stored user identity. JSON names match the durable record format.
type Account struct {
	Username       string    `json:"username"`
	Password       string    `json:"password"`
	Role           string    `json:"role,omitempty"`
	Email          string    `json:"email,omitempty"`
	FullName       string    `json:"fullName,omitempty"`
	Bio            string    `json:"bio,omitempty"`
	Phone          string    `json:"phone,omitempty"`
	ProfilePicture string    `json:"profilePicture,omitempty"`
	LoginTime      time.Time `json:"loginTime,omitzero"`
	LastActivity   time.Time `json:"lastActivity,omitzero"`
	CreatedAt      time.Time `json:"createdAt,omitzero"`
	UpdatedAt      time.Time `json:"updatedAt,omitzero"`
}

// HasRole reports whether the account holds role.
func (a Account) HasRole(role string) bool {
	return a.Role == role
}

// Patch carries profile changes. Nil fields are left untouched.
// Username, password and role cannot be patched.
type Patch struct {
	Email          *string `json:"email,omitempty"`
	FullName       *string `json:"fullName,omitempty"`
	Bio            *string `json:"bio,omitempty"`
	Phone          *string `json:"phone,omitempty"`
	ProfilePicture *string `json:"profilePicture,omitempty"`
}

// Apply returns a copy of a with the patch applied.
func (p Patch) Apply(a Account) Account {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	set(&a.Email, p.Email)
	set(&a.FullName, p.FullName)
	set(&a.Bio, p.Bio)
	set(&a.Phone, p.Phone)
	set(&a.ProfilePicture, p.ProfilePicture)
	return a
}

var seedCreatedAt = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// Seeds returns the built-in accounts present at every start.
func Seeds() []Account {
	return []Account{
		{
			Username:  "admin",
			Password:  "admin123",
			Role:      RoleAdmin,
			Email:     "admin@eventhub.com",
			FullName:  "System Administrator",
			Bio:       "System administrator with full access to EventHub platform.",
			CreatedAt: seedCreatedAt,
		},
		{
			Username:  "user",
			Password:  "user123",
			Role:      RoleUser,
			Email:     "user@example.com",
			FullName:  "Demo User",
			Bio:       "Regular user of EventHub platform.",
			CreatedAt: seedCreatedAt,
		},
	}
}

// IsSeed reports whether username belongs to a built-in account.
func IsSeed(username string) bool {
	return username == "admin" || username == "user"
}
