// Package cli provides the interactive biobank command-line client.
//
// It wires configuration, the local session database, the REST transport
// and the domain services into a small REPL. On start the saved session, if
// any, is resumed; otherwise the user logs in with the "login" command.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See runREPL for the command set.
package cli
