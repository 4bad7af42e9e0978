package cli

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/dmitrijs2005/hospivibe/internal/client/client"
	"github.com/dmitrijs2005/hospivibe/internal/client/forms"
	"github.com/dmitrijs2005/hospivibe/internal/client/services"
)

// userMessage turns an error into the line shown to the user. Backend
// messages are shown as sent.
func userMessage(err error) string {
	var verrs forms.ValidationErrors
	var apiErr *client.APIError

	switch {
	case errors.As(err, &verrs):
		return "Please fix: " + verrs.Error()
	case errors.As(err, &apiErr):
		return apiErr.Message
	case errors.Is(err, client.ErrUnavailable):
		return "The server is unavailable, please try again later."
	case errors.Is(err, client.ErrAuthRequired):
		return "Please log in first."
	case errors.Is(err, services.ErrOnboardingRequired):
		return "Please complete onboarding first (run 'onboard')."
	case errors.Is(err, services.ErrNotPermitted):
		return "That command is not available for your role."
	}
	return err.Error()
}

// table renders rows as aligned columns.
func table(header []string, rows [][]string) string {
	var buf bytes.Buffer
	w := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, strings.Join(header, "\t"))
	for _, r := range rows {
		fmt.Fprintln(w, strings.Join(r, "\t"))
	}
	_ = w.Flush()
	return strings.TrimRight(buf.String(), "\n")
}
