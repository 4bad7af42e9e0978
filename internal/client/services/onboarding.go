package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/hospivibe/internal/client/client"
	"github.com/dmitrijs2005/hospivibe/internal/client/models"
)

// KeyPreferences is the metadata key holding the onboarding preferences.
const KeyPreferences = "preferences"

// PreferenceStore is the slice of the metadata repository onboarding needs.
type PreferenceStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

type OnboardingStep int

const (
	StepWelcome OnboardingStep = iota
	StepRoleOverview
	StepPreferences
	StepFinish
)

var stepTitles = [...]string{"Welcome", "Your role", "Preferences", "All set"}

func (s OnboardingStep) String() string {
	if s < 0 || int(s) >= len(stepTitles) {
		return "unknown"
	}
	return stepTitles[s]
}

// OnboardingFlow walks a new user through the four onboarding steps and
// finishes by completing onboarding on the backend.
type OnboardingFlow struct {
	auth  *AuthService
	prefs PreferenceStore
	step  OnboardingStep
}

func NewOnboardingFlow(auth *AuthService, prefs PreferenceStore) *OnboardingFlow {
	return &OnboardingFlow{auth: auth, prefs: prefs}
}

func (f *OnboardingFlow) Step() OnboardingStep {
	return f.step
}

// Next advances one step and reports whether it moved.
func (f *OnboardingFlow) Next() bool {
	if f.step >= StepFinish {
		return false
	}
	f.step++
	return true
}

// Back returns one step and reports whether it moved.
func (f *OnboardingFlow) Back() bool {
	if f.step <= StepWelcome {
		return false
	}
	f.step--
	return true
}

// Content renders the current step for the signed-in user.
func (f *OnboardingFlow) Content() []string {
	snap := f.auth.Snapshot()
	name := ""
	if snap.User != nil {
		name = snap.User.Name
	}
	role := snap.Role()

	switch f.step {
	case StepWelcome:
		return []string{
			fmt.Sprintf("Welcome to HospiVibe, %s!", name),
			"A few quick steps and your dashboard is ready.",
		}
	case StepRoleOverview:
		lines := []string{fmt.Sprintf("You are signed in as %s.", role.Title()), role.Description()}
		for _, a := range role.Actions() {
			lines = append(lines, "  - "+strings.ReplaceAll(string(a), "_", " "))
		}
		return lines
	case StepPreferences:
		return []string{"Choose notifications, email updates, dark mode and accessibility options."}
	case StepFinish:
		return []string{"You're all set. Finishing takes you to your dashboard."}
	}
	return nil
}

// Preferences returns the stored preferences, or the defaults when none
// were saved.
func (f *OnboardingFlow) Preferences(ctx context.Context) (models.Preferences, error) {
	raw, err := f.prefs.Get(ctx, KeyPreferences)
	if err != nil {
		return models.Preferences{}, fmt.Errorf("load preferences: %w", err)
	}
	if len(raw) == 0 {
		return models.DefaultPreferences(), nil
	}
	var p models.Preferences
	if err := json.Unmarshal(raw, &p); err != nil {
		return models.Preferences{}, fmt.Errorf("decode preferences: %w", err)
	}
	return p, nil
}

func (f *OnboardingFlow) SavePreferences(ctx context.Context, p models.Preferences) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode preferences: %w", err)
	}
	if err := f.prefs.Set(ctx, KeyPreferences, raw); err != nil {
		return fmt.Errorf("save preferences: %w", err)
	}
	return nil
}

// Finish stores p and completes onboarding. It requires a session that
// still needs onboarding.
func (f *OnboardingFlow) Finish(ctx context.Context, p models.Preferences) error {
	snap := f.auth.Snapshot()
	if !snap.IsAuthenticated {
		return client.ErrAuthRequired
	}
	if err := f.SavePreferences(ctx, p); err != nil {
		return err
	}
	if err := f.auth.CompleteOnboarding(ctx); err != nil {
		return err
	}
	f.step = StepFinish
	return nil
}
