// Package cli provides the taskdesk command-line client.
//
// Every command loads configuration (defaults, dotenv file, config file,
// TASKDESK_* environment and flags), wires the task services through a
// Builder and runs a single workflow:
//
//   - submit: create or update a task, uploading attached files first
//   - show: render a task with its sub-tasks and activity timeline
//   - toggle: flip the completion state of a sub-task
//   - activity: append an entry to a task's timeline
//   - orphans: list uploaded files whose task was never saved
//   - status: check API reachability and the session token
//   - serve: expose the services to a local front-end over HTTP
//
// Missing required input is prompted for when stdin is a terminal.
package cli
