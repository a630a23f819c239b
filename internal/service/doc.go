// Package service contains the application use cases that sit between the
// HTTP handlers and the stores: accounts, content sources, the journal,
// generated lessons and writing practice.
//
// Services receive their stores and text-generation collaborators through
// constructor injection and never depend on a concrete storage backend.
// Expected conditions are reported with the sentinel errors in errors.go;
// unexpected failures are wrapped in a ServiceError naming the service and
// operation, so callers can use errors.Is and errors.As instead of string
// matching.
//
// Saved words and flashcard reviews live in the vocabulary subpackage and
// token handling in the auth subpackage.
package service
