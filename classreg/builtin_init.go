package classreg

import "github.com/JohannesEbke/a4io/message"

// init registers the five required built-in record types into the
// compile-time table, the same way the schema layer's module init would
// register every type it knows about. These ids are fixed: they never
// collide with ContentBase, MetadataBase, or a dynamically assigned id.
func init() {
	RegisterFixed(message.ClassIDStreamHeader, "a4.StreamHeader", func() message.Message { return &message.StreamHeader{} })
	RegisterFixed(message.ClassIDStreamFooter, "a4.StreamFooter", func() message.Message { return &message.StreamFooter{} })
	RegisterFixed(message.ClassIDStartCompressedSection, "a4.StartCompressedSection", func() message.Message { return &message.StartCompressedSection{} })
	RegisterFixed(message.ClassIDEndCompressedSection, "a4.EndCompressedSection", func() message.Message { return &message.EndCompressedSection{} })
	RegisterFixed(message.ClassIDProtoClass, "a4.ProtoClass", func() message.Message { return &message.ProtoClass{} })
}
