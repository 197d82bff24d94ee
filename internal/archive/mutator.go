package archive

import "context"

// Mutator adds or replaces one entry of an existing archive.
type Mutator interface {
	// Inject stores the contents of the file at source as entry inside
	// archive. An existing entry with the same name is replaced; all other
	// entries are preserved.
	Inject(ctx context.Context, archive, source, entry string) error
}
