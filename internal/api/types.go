package api

// User identifies an authenticated account and its role
type User struct {
	Username string `json:"username"`
	Role     string `json:"role"`
}

// Roles known to the backend (dbo.Users Role column)
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// IsAdmin reports whether the user carries the admin role
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// LoginRequest is the payload for POST auth/login
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse is the result of POST auth/login
type LoginResponse struct {
	Success bool   `json:"success"`
	User    *User  `json:"user,omitempty"`
	Message string `json:"message,omitempty"`
}

// QueryRequest is the payload for POST query
type QueryRequest struct {
	Question string `json:"question"`
	TopK     int    `json:"top_k"`
}

// Context is one retrieved passage as returned by the backend.
// Order within QueryResponse.Contexts reflects retrieval rank.
type Context struct {
	Text     string         `json:"text"`
	Metadata map[string]any `json:"metadata"`
	Distance float64        `json:"distance"`
}

// QueryResponse is the result of POST query
type QueryResponse struct {
	Answer   string    `json:"answer"`
	Contexts []Context `json:"contexts"`
}

// HealthResponse is the result of GET health
type HealthResponse struct {
	Status string   `json:"status"`
	Checks []string `json:"checks"`
}

// errorBody is the FastAPI error envelope
type errorBody struct {
	Detail string `json:"detail"`
}
