// Package cli provides the interactive IdeaForge command-line client.
//
// It wires configuration, the local SQLite store, API services and an
// interactive REPL. Plan owners log in with an access token and manage plans,
// versions and share links. Anyone holding a share link can open the plan
// live: the client joins as a collaborator, heartbeats in the background and
// prints updates pushed by the server.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App and runREPL for details.
package cli
