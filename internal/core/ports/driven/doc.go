// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the pipeline to function:
//
//   - Library: Reads records and child notes from the source library
//   - StateStore: Loads and persists the watermark table
//   - ChatClient: Joins channels and posts messages
//   - MentionResolver: Maps mention tokens to destination user ids
//
// # Optional Interfaces
//
// These can be nil - the pipeline degrades gracefully:
//
//   - MailSender: Aggregated email delivery. Without it, chat only.
//   - StateTransfer: Remote pull/push of the state file. CLI-invoked only.
//   - LibraryAdmin: Inspection and curation, used by maintenance commands.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or connector package
package driven
