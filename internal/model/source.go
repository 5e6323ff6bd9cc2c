// Package model defines the data structures shared by the migration workflow.
package model

// Path represents a file system path.
type Path string

// File represents a test file selected for migration.
type File struct {
	// ShortPath is the path relative to the working directory, used in reports.
	ShortPath Path
	// FullPath is the absolute path used for reading and writing.
	FullPath Path
	// Hash is the SHA-256 of the content at discovery. A migration refuses
	// to overwrite the file once it no longer matches.
	Hash string
}
