package message

import "github.com/golang/protobuf/proto"

// The built-in record types below are hand-authored in the legacy
// struct-tag style of a protoc-generated message: Reset/String/ProtoMessage
// satisfy proto.Message, and the `protobuf:"..."` tags drive the same
// reflective proto.Buffer marshal/unmarshal path protostream.Encoder and
// Decoder use for application messages. There is no .proto source for
// these; they exist only as Go types, the way protostream's own callers
// never required a .proto file either — protostream operates on whatever
// proto.Message it's handed.

// Fixed, compile-time class ids for the five required built-in record
// types. These never collide with a content/metadata base or a
// dynamically assigned class id; classreg reserves them at init.
const (
	ClassIDStreamHeader           uint32 = 2
	ClassIDStreamFooter           uint32 = 3
	ClassIDStartCompressedSection uint32 = 4
	ClassIDEndCompressedSection   uint32 = 5
	ClassIDProtoClass             uint32 = 6
)

// StreamHeader is the first record of every segment.
type StreamHeader struct {
	A4Version             uint32 `protobuf:"varint,1,opt,name=a4_version,json=a4Version,proto3" json:"a4_version,omitempty"`
	MetadataRefersForward bool   `protobuf:"varint,2,opt,name=metadata_refers_forward,json=metadataRefersForward,proto3" json:"metadata_refers_forward,omitempty"`
	ContentClassId        uint32 `protobuf:"varint,3,opt,name=content_class_id,json=contentClassId,proto3" json:"content_class_id,omitempty"`
	MetadataClassId       uint32 `protobuf:"varint,4,opt,name=metadata_class_id,json=metadataClassId,proto3" json:"metadata_class_id,omitempty"`
	Description           string `protobuf:"bytes,5,opt,name=description,proto3" json:"description,omitempty"`
}

func (m *StreamHeader) Reset()         { *m = StreamHeader{} }
func (m *StreamHeader) String() string { return proto.CompactTextString(m) }
func (*StreamHeader) ProtoMessage()    {}

func (m *StreamHeader) Marshal() ([]byte, error) { return proto.Marshal(m) }
func (m *StreamHeader) Unmarshal(b []byte) error { return proto.Unmarshal(b, m) }
func (m *StreamHeader) FullName() string         { return "a4.StreamHeader" }

// StreamFooter_ClassCount is a single per-class tally line in a footer.
type StreamFooter_ClassCount struct {
	ClassId   uint32 `protobuf:"varint,1,opt,name=class_id,json=classId,proto3" json:"class_id,omitempty"`
	Count     uint64 `protobuf:"varint,2,opt,name=count,proto3" json:"count,omitempty"`
	ClassName string `protobuf:"bytes,3,opt,name=class_name,json=className,proto3" json:"class_name,omitempty"`
}

func (m *StreamFooter_ClassCount) Reset()         { *m = StreamFooter_ClassCount{} }
func (m *StreamFooter_ClassCount) String() string { return proto.CompactTextString(m) }
func (*StreamFooter_ClassCount) ProtoMessage()    {}

// StreamFooter is the final record of a segment, carrying the offsets and
// counters a reader needs to discover the segment without a forward scan.
type StreamFooter struct {
	Size              uint64                     `protobuf:"varint,1,opt,name=size,proto3" json:"size,omitempty"`
	MetadataOffsets   []uint64                   `protobuf:"varint,2,rep,packed,name=metadata_offsets,json=metadataOffsets,proto3" json:"metadata_offsets,omitempty"`
	ProtoclassOffsets []uint64                   `protobuf:"varint,3,rep,packed,name=protoclass_offsets,json=protoclassOffsets,proto3" json:"protoclass_offsets,omitempty"`
	ClassCounts       []*StreamFooter_ClassCount `protobuf:"bytes,4,rep,name=class_counts,json=classCounts,proto3" json:"class_counts,omitempty"`
}

func (m *StreamFooter) Reset()         { *m = StreamFooter{} }
func (m *StreamFooter) String() string { return proto.CompactTextString(m) }
func (*StreamFooter) ProtoMessage()    {}

func (m *StreamFooter) Marshal() ([]byte, error) { return proto.Marshal(m) }
func (m *StreamFooter) Unmarshal(b []byte) error { return proto.Unmarshal(b, m) }
func (m *StreamFooter) FullName() string         { return "a4.StreamFooter" }

// StartCompressedSection marks the transition from plain to compressed;
// it is always written and read in the plain state.
type StartCompressedSection struct {
	Codec uint32 `protobuf:"varint,1,opt,name=codec,proto3" json:"codec,omitempty"`
	Level int32  `protobuf:"zigzag32,2,opt,name=level,proto3" json:"level,omitempty"`
}

func (m *StartCompressedSection) Reset()         { *m = StartCompressedSection{} }
func (m *StartCompressedSection) String() string { return proto.CompactTextString(m) }
func (*StartCompressedSection) ProtoMessage()    {}

func (m *StartCompressedSection) Marshal() ([]byte, error) { return proto.Marshal(m) }
func (m *StartCompressedSection) Unmarshal(b []byte) error { return proto.Unmarshal(b, m) }
func (m *StartCompressedSection) FullName() string         { return "a4.StartCompressedSection" }

// EndCompressedSection marks the transition from compressed back to
// plain. It carries no fields; its presence is the entire signal, and it
// is itself the last record read from the codec stream before the codec
// stream is torn down.
type EndCompressedSection struct{}

func (m *EndCompressedSection) Reset()         { *m = EndCompressedSection{} }
func (m *EndCompressedSection) String() string { return proto.CompactTextString(m) }
func (*EndCompressedSection) ProtoMessage()    {}

func (m *EndCompressedSection) Marshal() ([]byte, error) { return proto.Marshal(m) }
func (m *EndCompressedSection) Unmarshal(b []byte) error { return proto.Unmarshal(b, m) }
func (m *EndCompressedSection) FullName() string         { return "a4.EndCompressedSection" }

// ProtoClass kind values, distinguishing which of the two class "slots" a
// dynamically discovered class fills.
const (
	ProtoClassKindContent  uint32 = 0
	ProtoClassKindMetadata uint32 = 1
	ProtoClassKindOther    uint32 = 2
)

// ProtoClass names a class id the first time a writer uses it for a type
// that isn't already resolvable from the compile-time registry. Schema is
// an opaque descriptor blob; this module never interprets it, it only
// carries it for a higher-level schema layer.
type ProtoClass struct {
	ClassId       uint32 `protobuf:"varint,1,opt,name=class_id,json=classId,proto3" json:"class_id,omitempty"`
	ClassFullName string `protobuf:"bytes,2,opt,name=full_name,json=fullName,proto3" json:"full_name,omitempty"`
	Kind          uint32 `protobuf:"varint,3,opt,name=kind,proto3" json:"kind,omitempty"`
	Schema        []byte `protobuf:"bytes,4,opt,name=schema,proto3" json:"schema,omitempty"`
}

func (m *ProtoClass) Reset()         { *m = ProtoClass{} }
func (m *ProtoClass) String() string { return proto.CompactTextString(m) }
func (*ProtoClass) ProtoMessage()    {}

func (m *ProtoClass) Marshal() ([]byte, error) { return proto.Marshal(m) }
func (m *ProtoClass) Unmarshal(b []byte) error { return proto.Unmarshal(b, m) }
func (m *ProtoClass) FullName() string         { return "a4.ProtoClass" }
