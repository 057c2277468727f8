// Package richtext models styled template documents and converts them to HTML
// markup without breaking merge tokens apart.
//
// A Document is an ordered list of blocks. Text-bearing blocks are paragraphs
// (plain paragraphs, headings and list items); tables hold cells which hold
// paragraphs. Each paragraph is a list of spans, and each span carries bold,
// italic and link attributes.
//
// Editors often split a single word into several spans because of invisible
// formatting changes. Emitting tags per span would interleave markup inside
// tokens such as {{FirstName}}. MergeRuns first groups consecutive characters
// that share every attribute into runs, so a token that is uniformly styled
// always lands inside a single run and survives serialization intact.
//
//	runs := richtext.MergeRuns(paragraph)
//	html := richtext.Markup(runs)
//
// Documents can be built from markdown with FromMarkdown, which uses goldmark
// with the GFM table extension.
package richtext
