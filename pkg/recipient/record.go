package recipient

import (
	"net/mail"
	"slices"
	"strconv"
	"strings"
)

// Well-known field names.
const (
	FieldEmail      = "Email"
	FieldFirstName  = "FirstName"
	FieldLastName   = "LastName"
	FieldName       = "Name"
	FieldFilename   = "Filename"
	FieldDocID      = "DocId"
	FieldPdfID      = "PdfId"
	FieldStatus     = "DeliveryStatus"
	FieldMessageID  = "MessageId"
	FieldRowIndex   = "_row"
	fallbackDisplay = "Recipient"
)

// ReservedColumns are created in the source table when missing.
var ReservedColumns = []string{FieldDocID, FieldPdfID, FieldStatus, FieldMessageID, FieldFilename}

// systemFields are never merged into documents.
var systemFields = map[string]struct{}{
	FieldRowIndex:  {},
	FieldDocID:     {},
	FieldPdfID:     {},
	FieldStatus:    {},
	FieldMessageID: {},
}

// IsSystemField reports whether name is managed by the campaign engine.
func IsSystemField(name string) bool {
	_, ok := systemFields[name]
	return ok
}

// Record is one recipient row.
type Record struct {
	values map[string]string
	order  []string
	Row    int // 1-based data row position in the source table
}

// New creates an empty record at the given row.
func New(row int) *Record {
	return &Record{Row: row, values: make(map[string]string)}
}

// FromPairs builds a record from alternating name/value arguments.
// A trailing name without a value is ignored.
func FromPairs(row int, pairs ...string) *Record {
	r := New(row)
	for i := 0; i+1 < len(pairs); i += 2 {
		r.Set(pairs[i], pairs[i+1])
	}
	return r
}

// Get returns the value of a field, or "" when absent.
func (r *Record) Get(name string) string {
	return r.values[name]
}

// Lookup returns the value of a field and whether it exists.
func (r *Record) Lookup(name string) (string, bool) {
	v, ok := r.values[name]
	return v, ok
}

// Has reports whether the field is present and non-blank.
func (r *Record) Has(name string) bool {
	return strings.TrimSpace(r.values[name]) != ""
}

// Set assigns a field, keeping first-insertion order.
func (r *Record) Set(name, value string) {
	if _, ok := r.values[name]; !ok {
		r.order = append(r.order, name)
	}
	r.values[name] = value
}

// Fields returns field names in column order.
func (r *Record) Fields() []string {
	return slices.Clone(r.order)
}

// Map returns a copy of all fields.
func (r *Record) Map() map[string]string {
	out := make(map[string]string, len(r.values))
	for k, v := range r.values {
		out[k] = v
	}
	return out
}

// Email returns the trimmed recipient address.
func (r *Record) Email() string { return strings.TrimSpace(r.values[FieldEmail]) }

// DocID returns the generated document identifier.
func (r *Record) DocID() string { return strings.TrimSpace(r.values[FieldDocID]) }

// PdfID returns the generated PDF identifier.
func (r *Record) PdfID() string { return strings.TrimSpace(r.values[FieldPdfID]) }

// MessageID returns the identifier of the sent message.
func (r *Record) MessageID() string { return strings.TrimSpace(r.values[FieldMessageID]) }

// Status returns the delivery status, defaulting to pending.
func (r *Record) Status() Status { return ParseStatus(r.values[FieldStatus]) }

// Addressable reports whether the record has an email and may take part in
// campaign operations.
func (r *Record) Addressable() bool {
	return r.Email() != ""
}

// HasValidEmail reports whether Email is a single bare RFC 5322 address.
func (r *Record) HasValidEmail() bool {
	email := r.Email()
	if email == "" {
		return false
	}
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Name == "" && addr.Address == email
}

// DisplayName returns the best human name for the record: first and last
// name, either of them, Name, Email, or "Recipient".
func (r *Record) DisplayName() string {
	full := strings.TrimSpace(strings.TrimSpace(r.Get(FieldFirstName)) + " " + strings.TrimSpace(r.Get(FieldLastName)))
	switch {
	case full != "":
		return full
	case r.Has(FieldName):
		return strings.TrimSpace(r.Get(FieldName))
	case r.Email() != "":
		return r.Email()
	default:
		return fallbackDisplay
	}
}

// Label identifies the record in reports and logs.
func (r *Record) Label() string {
	if email := r.Email(); email != "" {
		return email
	}
	return "row " + strconv.Itoa(r.Row)
}
