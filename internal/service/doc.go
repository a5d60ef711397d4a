// Package service contains the application use cases. It coordinates domain
// objects and the store interfaces (defined in internal/store) so that the
// API layer never talks to storage directly.
//
// Services receive their dependencies through constructor injection and
// apply transactional boundaries with store.RunInTransaction when an
// operation touches storage more than once.
//
// Errors are returned as sentinels or wrapped store errors; the API layer
// maps them to HTTP status codes with errors.Is.
package service
