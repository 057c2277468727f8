// Package slug turns arbitrary display names into storage-safe path segments.
//
// Diacritics are folded with Unicode normalization, characters outside
// [A-Za-z0-9] become separators, and runs of separators collapse:
//
//	slug.Make("Offer - Zoë Müller")                      // "offer-zoe-muller"
//	slug.Make("Offer - Zoë Müller", slug.Lowercase(false)) // "Offer-Zoe-Muller"
//	slug.Make("Straße", slug.MaxLength(4))               // "stra"
//
// Characters with no Latin decomposition (Cyrillic, CJK, ...) are dropped.
package slug
