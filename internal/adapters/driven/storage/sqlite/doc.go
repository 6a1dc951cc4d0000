// Package sqlite provides a local vector store backed by a single SQLite file.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. Every index is a row in the indexes
// table and its chunks live in the chunks table, keyed by (index, chunk ID).
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory.
//
// # Search
//
// Queries are brute force: candidate rows are narrowed by metadata equality in
// SQL, then scored by cosine similarity in Go. This suits the few thousand rows
// of a CRM base; larger corpora belong in Pinecone.
//
// # Data Location
//
// By default, the database is stored at ~/.ragbot/data/vectors.db
package sqlite
