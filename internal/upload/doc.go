// Package upload parses multipart file uploads against a Policy that limits
// the field name, file count, per-file size and filename pattern. Violations
// surface as *Error values whose messages are meant for the client.
package upload
