package db

import "errors"

var (
	// the program is not served by the database.
	ErrUnknownProgram = errors.New("unknown program")

	// the program has no aggregation for the dimension.
	ErrUnknownDimension = errors.New("unknown dimension")
)

type GrantsDatabase interface {
	// Program returns the repository bound to the program table.
	//
	// args:
	//     - path: Program.Path, e.g. "gia"
	//
	// returns:
	//     - GrantsInterface
	//     - bool: false if no such program is served.
	Program(path string) (GrantsInterface, bool)

	Schema() SchemaInterface

	Close() error
}
