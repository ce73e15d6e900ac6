// Package object implements the self-describing value model.
//
// Every Value knows its variant name and how to encode and decode its own
// payload. Marshal wraps that payload in an envelope; Unmarshal checks the
// envelope against the target's name before handing the payload over.
// SerialArray and SerialDictionary store their children as opaque envelopes,
// so nesting is heterogeneous and needs no schema. The reader states the type
// it expects by the target it passes in, or asks a TypeResolver.
//
// Values are plain single-owner data with no internal locking.
package object
