package message

import "github.com/golang/protobuf/proto"

// Event is a demo content message: small enough to keep round-trip tests
// readable, varied enough (scalar, bytes, string) to exercise
// the proto.Buffer marshal path the same way protostream's own tests use
// structpb.Struct/duration.Duration/empty.Empty as stand-ins for "some
// real message".
type Event struct {
	SequenceNumber uint64 `protobuf:"varint,1,opt,name=sequence_number,json=sequenceNumber,proto3" json:"sequence_number,omitempty"`
	Payload        []byte `protobuf:"bytes,2,opt,name=payload,proto3" json:"payload,omitempty"`
	Label          string `protobuf:"bytes,3,opt,name=label,proto3" json:"label,omitempty"`
}

func (m *Event) Reset()         { *m = Event{} }
func (m *Event) String() string { return proto.CompactTextString(m) }
func (*Event) ProtoMessage()    {}

func (m *Event) Marshal() ([]byte, error) { return proto.Marshal(m) }
func (m *Event) Unmarshal(b []byte) error { return proto.Unmarshal(b, m) }
func (m *Event) FullName() string         { return "a4.demo.Event" }

// RunMetadata is a demo metadata message: a description plus a
// collision-resistant run identifier, the same role a UUID plays for the
// teacher's temporary staging file names, now applied to identifying a
// metadata block's origin rather than a filesystem path.
type RunMetadata struct {
	RunId       string `protobuf:"bytes,1,opt,name=run_id,json=runId,proto3" json:"run_id,omitempty"`
	Description string `protobuf:"bytes,2,opt,name=description,proto3" json:"description,omitempty"`
	EventCount  uint64 `protobuf:"varint,3,opt,name=event_count,json=eventCount,proto3" json:"event_count,omitempty"`
}

func (m *RunMetadata) Reset()         { *m = RunMetadata{} }
func (m *RunMetadata) String() string { return proto.CompactTextString(m) }
func (*RunMetadata) ProtoMessage()    {}

func (m *RunMetadata) Marshal() ([]byte, error) { return proto.Marshal(m) }
func (m *RunMetadata) Unmarshal(b []byte) error { return proto.Unmarshal(b, m) }
func (m *RunMetadata) FullName() string         { return "a4.demo.RunMetadata" }
