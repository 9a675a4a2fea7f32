// Package client contains the client-side building blocks that talk to the
// outside world.
//
// # Overview
//
// The package provides:
//  1. The contract of the remote persistence API (see the Client interface):
//     CreateTask, UpdateTask, GetTask, ChangeSubTaskStatus, PostActivity and
//     Ping.
//  2. A REST/JSON implementation (see HTTPClient) that sends an optional
//     bearer token, refuses to call out with a token whose exp claim has
//     passed, and turns non-2xx replies into *APIError.
//  3. Bootstrap of the local upload journal (InitDatabase, RunMigrations)
//     on SQLite or PostgreSQL with embedded goose migrations.
//
// # Error Handling
//
// *APIError carries the server's message and matches the sentinels in
// internal/common with errors.Is: 401/403 match ErrUnauthorized, 404
// matches ErrNotFound and 5xx matches ErrUnavailable. Transport failures
// match ErrUnavailable as well.
//
// All operations accept context.Context and honor cancellation.
package client
