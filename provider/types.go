package provider

// User is the provider's auth user record, the identity behind a profile row.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Session is an issued token pair plus the user it belongs to.
type Session struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	User         *User  `json:"user"`
}

// Sign-out scopes. Global invalidates the session everywhere, not just the
// calling context.
const (
	ScopeGlobal = "global"
	ScopeLocal  = "local"
)
