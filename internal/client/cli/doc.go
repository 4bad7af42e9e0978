// Package cli provides the interactive HospiVibe command-line client.
//
// It wires configuration, session storage and the backend client into the
// services and renders their results. Commands run either inside the shell
// started by App.Root or one at a time through the cobra subcommands
// returned by NewRootCommand. Both share the persisted session.
//
// "help" lists only the commands the current session may use: signed-out
// users see login and signup, users who have not finished onboarding see
// onboard, and the remaining commands depend on the user's role.
package cli
