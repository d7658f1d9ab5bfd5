// Package types defines the shared domain types for the launcher backend.
//
// The central type is Profile: a named persona with its own storage
// partition, job tag, and window preferences. Profiles are persisted to
// profiles.json and every field must round-trip through persistence
// unchanged unless explicitly modified.
//
// Types here have no behavior beyond validation and normalization helpers;
// lifecycle logic lives in the domain packages.
package types
