// Package record abstracts durable storage of JSON-encoded records: result
// files, request-queue entries and the vote ledger. Implementations carry no
// business logic beyond read/write/list.
package record

import "context"

type Store interface {
	// List returns every record path under the given prefix.
	List(ctx context.Context, prefix string) ([]string, error)

	// ReadJSON decodes the record at path into v. Returns errors.ErrNotFound
	// when no such record exists.
	ReadJSON(ctx context.Context, path string, v any) error

	// WriteJSON encodes v as the record at path, replacing any previous value.
	WriteJSON(ctx context.Context, path string, v any) error

	// AppendLine appends one line to a JSON-lines record, creating it if
	// needed.
	AppendLine(ctx context.Context, path, line string) error

	// ReadLines returns the lines of a JSON-lines record. A missing record
	// yields no lines, not an error.
	ReadLines(ctx context.Context, path string) ([]string, error)

	// Upload copies a local file to a remote record path. Returns
	// errors.ErrTransfer on failure. The message annotates the write for
	// stores that version their contents.
	Upload(ctx context.Context, localPath, remotePath, message string) error
}
