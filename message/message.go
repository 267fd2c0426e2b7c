// Package message defines the narrow "schema/IDL" boundary that the rest
// of this module treats as a black box. It never inspects field values
// itself; it only asks a Message to marshal/unmarshal itself and to name
// itself, the same way protostream.Encoder/Decoder only ever deal in
// proto.Message without caring what's inside.
package message

// Message is the minimal contract a record's payload type must satisfy to
// travel through a stream. Built-in record types (StreamHeader,
// StreamFooter, ...) and any application-defined content/metadata type
// implement it the same way.
type Message interface {
	// Marshal serializes the message to its canonical byte encoding.
	Marshal() ([]byte, error)
	// Unmarshal parses data into the receiver, replacing its contents.
	Unmarshal(data []byte) error
	// FullName returns the message type's stable, dotted full name. It is
	// used as the registry key when a writer assigns a class id and, for
	// dynamically discovered classes, as the value carried in a ProtoClass
	// record.
	FullName() string
}

// Factory allocates a new, empty instance of some Message type. Class
// registries store a Factory alongside a class id so a reader can
// materialize fresh instances while parsing.
type Factory func() Message
