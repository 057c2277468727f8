// Package recipient models a single row of campaign data and validates it
// against a template's field manifest.
//
// A Record is an ordered field-name to value mapping. Any column of the
// source table is reachable through Get and Set; the handful of fields the
// campaign engine manages itself have typed accessors:
//
//	r.Email()     // "Email"
//	r.DocID()     // "DocId"
//	r.PdfID()     // "PdfId"
//	r.Status()    // "DeliveryStatus"
//	r.MessageID() // "MessageId"
//
// Validation is driven entirely by the template: only the manifest's
// required fields are checked, so the same record may be valid for one
// template and invalid for another.
package recipient
