// Package ir provides the constrained value types shared by the query
// descriptor, the reference executor and the golden snapshots.
//
// This package contains type definitions and serialization only. All other
// internal packages may import ir; ir imports nothing internal.
//
// Key design constraints:
//   - NO float types: descriptor literals are strings, integers and booleans
//   - Canonical JSON (RFC 8785 key order, NFC strings) is the only encoding
//     used for fingerprints and golden files
//   - Timestamps travel as 14-digit strings (YYYYMMDDhhmmss), never time.Time
package ir
