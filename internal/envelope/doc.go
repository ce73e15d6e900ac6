// Package envelope owns the self-describing wire wrapper around a value payload.
//
// Ownership boundary:
// - fixed 36-byte header (type token, data token, payload length)
// - type and integrity digests
// - UTF-16LE text encoding shared by every string on the wire
package envelope
