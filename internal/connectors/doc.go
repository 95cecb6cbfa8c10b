// Package connectors holds the clients for the external systems the
// pipeline talks to: the Zotero web API (library reads and curation
// writes), Slack (channel posts and the member directory), and Google
// Drive (remote state file transfer).
//
// Each connector implements the driven ports it serves and keeps its
// protocol details, rate limiting and error mapping to itself.
package connectors
