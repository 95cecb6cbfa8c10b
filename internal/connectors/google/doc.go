// Package google moves the watermark state file between its local path and
// its canonical copy on Google Drive. The deployment treats Drive as the
// shared home of the file; operators pull before editing and push after.
//
// Authentication uses a service account (JSON key file) with the Drive
// scope. Transfers run only when the state commands ask for them - the
// notification pipeline itself never touches Drive.
package google
