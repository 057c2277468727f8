// Package template loads merge templates: markdown documents with optional
// YAML frontmatter, parsed into a richtext.Document.
//
// A template file looks like:
//
//	---
//	title: Offer letter
//	subject: Your offer, {{FirstName}}
//	---
//	# Offer
//
//	Dear **{{FirstName}}**,
//
//	{{Address1}}, {{?Address2}}
//
// The frontmatter is optional. Title falls back to the first heading and then
// to the template id. Templates are read on every Load; nothing is cached, so
// edits are visible to the next operation.
//
// Two stores are provided: FSStore reads from any fs.FS (a directory or an
// embedded file system) and ObjectStore reads from object storage.
package template
