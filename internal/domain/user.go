package domain

// User is an account on the server of record.
type User struct {
	Entity
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	AvatarURL string     `json:"avatarUrl,omitempty"`
	Status    UserStatus `json:"status"`
}

var userSchema = MustCompileSchema("user", `{
	"type": "object",
	"properties": {
		"id":           {"type": "string"},
		"version":      {"type": "integer", "minimum": 0},
		"timeAdded":    {"type": "string"},
		"timeModified": {"type": ["string", "null"]},
		"name":         {"type": "string"},
		"email":        {"type": "string"},
		"avatarUrl":    {"type": ["string", "null"]},
		"status":       {"enum": ["registered", "active", "locked"]}
	},
	"required": ["id", "version", "timeAdded", "name", "email", "status"]
}`)

var Users = &Factory[*User]{
	Plural: "users",
	Schema: userSchema,
	Build:  decode[User],
}

func (u *User) IsRegistered() bool { return u.Status == UserRegistered }
func (u *User) IsActive() bool     { return u.Status == UserActive }
func (u *User) IsLocked() bool     { return u.Status == UserLocked }

var _ Versioned = (*User)(nil)
