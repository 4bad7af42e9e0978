package cli

import (
	"context"

	"github.com/dmitrijs2005/hospivibe/internal/client/routes"
)

// Root runs the interactive session until the user exits or ctx is done.
func (a *App) Root(ctx context.Context) {
	a.printf("Welcome to HospiVibe (type 'help' for commands)")

	a.checkOnline(ctx)
	go a.StartOnlineStatusWatcher(ctx, a.config.OnlineCheckInterval)

	a.Navigate(routes.Dashboard)
	if snap := a.auth.Snapshot(); snap.User != nil {
		a.printf("Signed in as %s (%s).", snap.User.Name, snap.User.Role.Title())
		if !snap.OnboardingComplete {
			a.printf("Run 'onboard' to finish setting up your account.")
		}
	}

	runREPL(ctx, a, a.status, a.reader)
}
