package message

// Dynamic is the placeholder Message type used for a class a reader
// learned about from a ProtoClass record rather than from its own
// compile-time registrations. This module treats message payloads as
// opaque bytes by design (see the Message doc comment); Dynamic simply
// carries those bytes, its full name, and the schema blob the writer
// attached, so a higher-level schema layer can do real decoding later.
type Dynamic struct {
	Name   string
	Schema []byte
	Raw    []byte
}

var _ Message = (*Dynamic)(nil)

// NewDynamicFactory returns a Factory producing Dynamic instances bound to
// a specific full name and schema blob, for use in a classreg Entry.
func NewDynamicFactory(name string, schema []byte) Factory {
	return func() Message {
		return &Dynamic{Name: name, Schema: schema}
	}
}

func (d *Dynamic) Marshal() ([]byte, error) {
	return append([]byte(nil), d.Raw...), nil
}

func (d *Dynamic) Unmarshal(b []byte) error {
	d.Raw = append([]byte(nil), b...)
	return nil
}

func (d *Dynamic) FullName() string { return d.Name }
