// Package sheet holds the recipient table: a header of column names and one
// record per data row.
//
// Three [Store] implementations share the same semantics:
// [PostgresStore] keeps the table in PostgreSQL (schema in pkg/db),
// [CSVStore] edits a CSV file in place, and [MemoryStore] backs tests.
// Rows are addressed by their 1-based data row position and are never
// deleted. Writes are cell by cell and the last write wins.
package sheet
