// Package credentials persists the backend auth configuration (base URL,
// anonymous API key, and user access token) in a single-row SQLite table.
//
// The library bridge only ever reads from the store. Writes come from the CLI
// login/logout commands and from the host session when the phone app pushes a
// fresh token.
package credentials
