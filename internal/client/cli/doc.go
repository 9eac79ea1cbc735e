// Package cli is the interactive AI Doc Pro terminal client.
//
// NewApp opens the local store, builds the document API, identity and
// artifact clients from configuration and wires the workflows from package
// services. App.Run restores the saved session, fetches the quota and the
// template list, starts a background health watcher and then blocks in the
// REPL until the user exits.
//
// Commands are listed by "help"; see runREPL for the dispatch table.
package cli
