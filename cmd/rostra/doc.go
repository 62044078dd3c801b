// Command rostra runs the client-side storage engine and its HTTP/JSON API.
//
// Subcommands: gen-id (generate an identity), web-ui (serve the API over a
// data directory), heads (read an author's current heads directly off
// disk, without starting the server).
package main
