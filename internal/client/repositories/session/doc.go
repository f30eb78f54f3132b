// Package session persists the CLI session (server URL, XSRF token and the
// signed-in user) in the local SQLite database between runs.
package session
