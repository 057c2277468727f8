// Package campaign runs mail-merge operations over the recipient table.
//
// A [Generator] creates and regenerates per-recipient documents and PDFs,
// a [Tracker] sends messages and follows their delivery status, and a
// [Reconciler] finds stored artifacts no recipient references. Every
// operation processes recipients one at a time and returns a [Run]: a
// failure for one recipient is recorded and the batch moves on, while a
// failure that affects every recipient (an unreadable template, a missing
// converter) aborts before the first one.
package campaign
