package cli

import (
	"context"
	"time"

	"github.com/dmitrijs2005/hospivibe/internal/client/forms"
	"github.com/dmitrijs2005/hospivibe/internal/client/session"
	"github.com/dmitrijs2005/hospivibe/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

const rolePrompt = "Role (admin, doctor, nurse, patient) [patient]"

// Login prompts for credentials and signs in. Validation failures are
// returned before anything is sent.
func (a *App) Login(ctx context.Context, _ []string) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	roleText, err := getSimpleText(a.reader, rolePrompt, a.out)
	if err != nil {
		return err
	}

	role, err := a.forms.ValidateLogin(forms.Login{Email: email, Password: string(password), Role: roleText})
	if err != nil {
		return err
	}

	u, err := a.auth.Login(ctx, email, string(password), role)
	if err != nil {
		return err
	}

	a.printf("Welcome back, %s!", u.Name)
	if !u.OnboardingComplete {
		a.printf("Run 'onboard' to finish setting up your account.")
	}
	return nil
}

// Signup prompts for the new account's details and registers it.
func (a *App) Signup(ctx context.Context, _ []string) error {
	name, err := getSimpleText(a.reader, "Enter full name", a.out)
	if err != nil {
		return err
	}
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	roleText, err := getSimpleText(a.reader, rolePrompt, a.out)
	if err != nil {
		return err
	}

	role, err := a.forms.ValidateSignup(forms.Signup{Name: name, Email: email, Password: string(password), Role: roleText})
	if err != nil {
		return err
	}

	u, err := a.auth.Signup(ctx, name, email, string(password), role)
	if err != nil {
		return err
	}

	a.printf("Account created for %s (%s).", u.Name, u.Role.Title())
	a.printf("Run 'onboard' to finish setting up your account.")
	return nil
}

func (a *App) Logout(ctx context.Context, _ []string) error {
	if err := a.auth.Logout(ctx); err != nil {
		return err
	}
	a.printf("Signed out.")
	return nil
}

// Status prints the session state, the current screen and the token expiry.
func (a *App) Status(ctx context.Context, _ []string) error {
	snap := a.auth.Snapshot()
	a.printf("State: %s", snap.State)
	a.printf("Screen: %s", a.currentRoute())
	if mode := a.Mode(); mode != "" {
		a.printf("Connection: %s", mode)
	}
	if snap.User == nil {
		return nil
	}

	a.printf("User: %s <%s>", snap.User.Name, snap.User.Email)
	a.printf("Role: %s", snap.User.Role.Title())
	if exp, err := session.TokenExpiry(a.auth.AccessToken()); err == nil && !exp.IsZero() {
		if session.Expired(a.auth.AccessToken(), a.now()) {
			a.printf("Token: expired at %s", exp.Format(time.RFC3339))
		} else {
			a.printf("Token: valid until %s", exp.Format(time.RFC3339))
		}
	}
	return nil
}
