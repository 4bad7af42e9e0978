package models

import "encoding/json"

// User is the client's read-mostly copy of the backend account record.
type User struct {
	ID                 string `json:"id"`
	Name               string `json:"name"`
	Email              string `json:"email"`
	Role               Role   `json:"role"`
	OnboardingComplete bool   `json:"onboarding_complete"`
}

// UnmarshalJSON accepts both "id" and the raw "_id" some endpoints return.
func (u *User) UnmarshalJSON(data []byte) error {
	type plain User
	aux := struct {
		*plain
		MongoID string `json:"_id"`
	}{plain: (*plain)(u)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if u.ID == "" {
		u.ID = aux.MongoID
	}
	return nil
}

// UserSummary is the embedded {id, name, email} form used in listings.
type UserSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (u *UserSummary) UnmarshalJSON(data []byte) error {
	type plain UserSummary
	aux := struct {
		*plain
		MongoID string `json:"_id"`
	}{plain: (*plain)(u)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if u.ID == "" {
		u.ID = aux.MongoID
	}
	return nil
}
