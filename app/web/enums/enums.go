// Package enums provides type-safe enumeration types for the tracker.
//
// This package uses code generation via go-pkgz/enum to create enum types
// with automatic string conversion, database marshaling, and parsing capabilities.
//
// The enum types are defined as unexported integer types (e.g., partition int) in this file,
// and the go:generate directives invoke the enum generator to create corresponding exported
// types with all necessary methods in separate files (*_enum.go).
//
// Usage:
//
//	p := enums.PartitionWatched
//	fmt.Println(p.String()) // "watched"
//
//	parsed, err := enums.ParsePartition("ignored")
//	if err != nil {
//	    // handle invalid input
//	}
//
// To regenerate the enum types after modifications:
//
//	go generate ./app/web/enums
//
// Note: The unexported type definitions below are only used by the generator.
// All actual code should use the generated exported types.
package enums

//go:generate go run github.com/go-pkgz/enum@latest -type partition -lower
//go:generate go run github.com/go-pkgz/enum@latest -type theme -lower
//go:generate go run github.com/go-pkgz/enum@latest -type format -lower

// partition represents a named subset of items in the store.
// cached holds every known item, ignored and watched are the status partitions.
type partition int

const (
	partitionCached partition = iota
	partitionIgnored
	partitionWatched
)

// theme represents UI themes.
type theme int

const (
	themeLight theme = iota
	themeDark
)

// format represents snapshot encodings.
type format int

const (
	formatJSON format = iota
	formatYAML
)
