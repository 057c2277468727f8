// Package merge substitutes recipient values into templates.
//
// Two forms are supported. Markup substitutes into a plain or HTML string,
// such as an email body, a subject line or a file name template:
//
//	body := merge.Markup("<p>Hi {{FirstName}}</p>", rec)
//
// Document substitutes into a structured rich-text document and then repairs
// punctuation left behind by empty optional fields:
//
//	doc := merge.Document(tpl, rec) // tpl is left untouched
//
// Both forms resolve unknown fields to an empty string; no token is ever
// left in the output.
package merge
