package castnet

// types.go re-exports types (and helpers) of the internal packages that are part of the public API

import (
	"github.com/andrewwphillips/castnet/internal/errs"
	"github.com/andrewwphillips/castnet/internal/mutation"
	"github.com/andrewwphillips/castnet/internal/params"
	"github.com/andrewwphillips/castnet/internal/schema"
)

type (
	// Schema is the declaration of the labels of the graph, usually read from YAML (see ParseSchema)
	Schema = schema.Raw

	// Query is a compiled (Cypher) query with its parameters
	Query = mutation.Query

	// Ref is a relationship assignment found by Conn.ParseParams
	Ref = params.Ref

	// ErrorKind classifies the errors returned from compiling requests
	ErrorKind = errs.Kind
)

const (
	ErrConfig     = errs.Config
	ErrValidation = errs.Validation
	ErrMismatch   = errs.Mismatch
	ErrSyntax     = errs.Syntax
)

// ParseSchema decodes a schema from YAML
func ParseSchema(data []byte) (Schema, error) {
	return schema.Parse(data)
}

// LoadSchema reads a schema from a YAML file
func LoadSchema(path string) (Schema, error) {
	return schema.Load(path)
}

// ErrorKindOf returns the kind of error, ok is false if err is not from the compiler
func ErrorKindOf(err error) (kind ErrorKind, ok bool) {
	return errs.KindOf(err)
}

// IsConfig is true if the schema (or URL keys) is invalid
func IsConfig(err error) bool { return errs.Is(err, errs.Config) }

// IsValidation is true if a value could not be cast to the type of its attribute
func IsValidation(err error) bool { return errs.Is(err, errs.Validation) }

// IsMismatch is true if a request used a name not declared in the schema
func IsMismatch(err error) bool { return errs.Is(err, errs.Mismatch) }

// IsSyntax is true if a query could not be tokenized or parsed
func IsSyntax(err error) bool { return errs.Is(err, errs.Syntax) }
