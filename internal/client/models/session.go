package models

// Session pairs the signed-in user with the bearer token issued for them.
// A session is valid only when both halves are present.
type Session struct {
	User  *User
	Token string
}

func (s *Session) Valid() bool {
	return s != nil && s.User != nil && s.Token != ""
}

// Clone returns a deep copy so callers cannot mutate stored state.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	c := &Session{Token: s.Token}
	if s.User != nil {
		u := *s.User
		c.User = &u
	}
	return c
}

// AuthResponse is the body returned by the login and register endpoints.
type AuthResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type,omitempty"`
	Message     string `json:"message,omitempty"`
	User        *User  `json:"user"`
}
