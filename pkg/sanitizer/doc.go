// Package sanitizer normalizes booking form input before validation and storage.
//
// All normalization functions are idempotent - applying them multiple times produces
// the same result. Invalid input is returned as an empty string or dropped from slices
// rather than reported as an error; the validator decides what is required.
//
// Normalization includes:
//   - Phone numbers: Convert to E.164 format (+[country][number]), US numbers by default
//   - Emails: Trim and lowercase
//   - Strings: Collapse whitespace, trim leading/trailing spaces
//   - States: Uppercase two-letter codes
//   - URLs: Enforce HTTPS, lowercase hosts, drop utm_ tracking parameters
//   - Slices: Remove duplicates and empty values after normalization
package sanitizer
