package cli

import (
	"context"

	"github.com/dmitrijs2005/hospivibe/internal/client/client"
	"github.com/dmitrijs2005/hospivibe/internal/client/services"
)

var getYesNo = GetYesNo

// Onboard walks through the onboarding steps, stores the chosen preferences
// and completes onboarding.
func (a *App) Onboard(ctx context.Context, _ []string) error {
	snap := a.auth.Snapshot()
	switch snap.State {
	case services.StateReady:
		a.printf("Onboarding is already complete.")
		return nil
	case services.StateNeedsOnboarding:
	default:
		return client.ErrAuthRequired
	}

	flow := services.NewOnboardingFlow(a.auth, a.prefs)
	prefs, err := flow.Preferences(ctx)
	if err != nil {
		return err
	}

	for {
		step := flow.Step()
		a.printf("Step %d/4: %s", int(step)+1, step)
		for _, line := range flow.Content() {
			a.printf("%s", line)
		}

		switch step {
		case services.StepPreferences:
			questions := []struct {
				prompt string
				value  *bool
			}{
				{"Enable notifications?", &prefs.Notifications},
				{"Receive email updates?", &prefs.EmailUpdates},
				{"Use dark mode?", &prefs.DarkMode},
				{"Enable accessibility features?", &prefs.Accessibility},
			}
			for _, q := range questions {
				v, err := getYesNo(a.reader, q.prompt, *q.value, a.out)
				if err != nil {
					return err
				}
				*q.value = v
			}

		case services.StepFinish:
			ok, err := getYesNo(a.reader, "Finish onboarding now?", true, a.out)
			if err != nil {
				return err
			}
			if !ok {
				if err := flow.SavePreferences(ctx, prefs); err != nil {
					return err
				}
				a.printf("Preferences saved. Run 'onboard' again when you are ready.")
				return nil
			}
			if err := flow.Finish(ctx, prefs); err != nil {
				return err
			}
			a.printf("Onboarding complete. Run 'dashboard' to see your overview.")
			return nil
		}

		flow.Next()
	}
}
