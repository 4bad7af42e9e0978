package common

import "strings"

// WipeByteArray overwrites the contents of b with zeros. Passwords read from
// the terminal are wiped this way once they have been sent.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// BearerToken extracts the token from an "Authorization: Bearer <token>"
// header value.
func BearerToken(header string) (string, error) {
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, BearerScheme) || strings.TrimSpace(token) == "" {
		return "", ErrInvalidAuthHeaderFormat
	}
	return strings.TrimSpace(token), nil
}
