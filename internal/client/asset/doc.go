// Package asset uploads task attachments to a remote asset host and returns
// the public URL of each stored object.
//
// Two backends are provided: CloudinaryUploader, which posts the file to the
// host's unsigned upload endpoint, and S3Uploader, which writes the object to
// an S3-compatible bucket.
package asset
