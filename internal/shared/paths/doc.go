// Package paths provides the on-disk layout of the launcher's data
// directory.
//
// Every component that touches persisted state (profile store, pending
// delete queue, partition reaper) resolves its paths through a Layout so
// the whole backend agrees on one directory structure:
//
//	<data>/profiles.json        profile records
//	<data>/pending_deletes.json directories owed deletion
//	<data>/settings.json        user preferences
//	<data>/Partitions/<token>   one directory per storage partition
//	<data>/Trash/               staging area for deletions
//
// The directory names mirror the layout used by earlier releases so that
// existing installations upgrade in place.
package paths
