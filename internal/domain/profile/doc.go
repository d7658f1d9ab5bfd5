// Package profile implements the durable profile store.
//
// Profiles live in a single profiles.json file under the data directory.
// Every mutation is a read-modify-write of the whole list under one lock,
// so the file on disk is always a complete, well-formed snapshot. Loading
// is tolerant: legacy entries (bare name strings, records missing fields
// added later) are upgraded in memory and written back in the current
// shape on the next save.
package profile
