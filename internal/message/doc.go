// Package message parses and serializes object header messages.
//
// Parse returns a [Message] that callers type-assert by Type(). Messages
// the writer emits implement [Serializable]. Unrecognised message types are
// kept as [Unknown].
package message
