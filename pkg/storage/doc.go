// Package storage defines where side-file documents live.
//
// Store only loads, saves and deletes one whole document per path; merging
// and pruning stay in pkg/savedata and the root exsave package. A missing
// document is never an error: Load and Delete report it through their ok
// result so callers can treat "nothing there" as a normal outcome.
//
// FileStore works over any afero.Fs. Production code uses the OS filesystem;
// NewMemoryStore gives tests and tools a private in-memory tree.
package storage
