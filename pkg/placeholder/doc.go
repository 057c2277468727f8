// Package placeholder extracts merge fields from template text.
//
// Templates reference recipient fields with double-brace tokens:
//
//	{{FirstName}}   required field
//	{{?Address2}}   optional field
//
// The token grammar is two literal opening braces, an optional '?' marker,
// one or more characters other than '}', and two literal closing braces.
// Whitespace around the name is ignored, so "{{ City }}" and "{{City}}"
// reference the same field.
//
// # Usage
//
//	m := placeholder.Parse("Dear {{FirstName}}, {{?Title}}")
//	m.Required() // [FirstName]
//	m.Optional() // [Title]
//
// A field declared in both forms is treated as optional. Such fields are
// reported by Manifest.Conflicts so callers can warn the template author.
package placeholder
