// Package uploads provides the upload journal: a local record of every file
// that reached the asset host, and what became of the submission attempt
// that uploaded it.
//
// A record starts as StatusUploaded. When the task is persisted the records
// of that attempt move to StatusCommitted and carry the task id; when the
// attempt aborts they move to StatusOrphaned. Orphaned records name remote
// objects no task refers to, so they can be cleaned up on the host by hand.
//
// The journal is bookkeeping only. It never retries and never deletes remote
// objects.
package uploads
