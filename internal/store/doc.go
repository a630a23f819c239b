// Package store defines the persistence contracts for users, saved words,
// content sources, journal entries and lessons, together with the error
// values every backend returns. Backends live under internal/platform:
// postgres, memory and filestore.
package store
