/*
Package persistence stores desktop state between runs.

Each state container (icons, windows, theme) is saved under its own name as
an envelope:

	{"state": {...}, "version": 0}

FileStore writes one file per name, optionally zstd-compressed, replacing it
atomically. MemoryStore is used in tests.

A Mirror ties a container to a store: Rehydrate loads the saved state at
startup and Start runs a writer that saves the latest snapshot after each
change. Bursts of changes collapse into a single write.
*/
package persistence
