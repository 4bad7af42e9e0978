package cli

import (
	"context"

	"github.com/dmitrijs2005/hospivibe/internal/client/client"
	"github.com/dmitrijs2005/hospivibe/internal/client/services"
)

// Dashboard loads and prints the dashboard for the signed-in role. A panel
// that failed to load is shown with its error; the rest still render.
func (a *App) Dashboard(ctx context.Context, _ []string) error {
	snap := a.auth.Snapshot()
	if !snap.IsAuthenticated {
		return client.ErrAuthRequired
	}

	provider, err := services.NewDashboardProvider(snap.Role(), a.api, a.auth, a.now)
	if err != nil {
		return err
	}
	d, err := provider.Load(ctx)
	if err != nil {
		return err
	}

	a.printf("%s", d.Greeting)
	a.printf("%s dashboard", d.Role.Title())
	for _, p := range d.Panels {
		a.printf("")
		a.printf("== %s ==", p.Title)
		if p.Err != nil {
			a.printf("  unavailable: %s", userMessage(p.Err))
			continue
		}
		for _, line := range p.Lines {
			a.printf("  %s", line)
		}
	}
	return nil
}
