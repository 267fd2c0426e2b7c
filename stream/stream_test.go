package stream

import (
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/JohannesEbke/a4io/compress"
	"github.com/JohannesEbke/a4io/message"
	"github.com/JohannesEbke/a4io/resource"
)

func writeEvents(w *Writer, from, to uint64) {
	for seq := from; seq <= to; seq++ {
		Expect(w.Write(&message.Event{SequenceNumber: seq})).To(Succeed())
	}
}

// drain runs r to completion, returning every content Event seen in
// order and the metadata in force at the moment each was read.
func drain(r *Reader) (events []*message.Event, metadataAt []string) {
	for {
		env := r.Next()
		switch {
		case env.IsMessage():
			if ev, ok := As[*message.Event](env); ok {
				events = append(events, ev)
				var label string
				if m := r.CurrentMetadata(); m != nil {
					if rm, ok := m.(*message.RunMetadata); ok {
						label = rm.RunId
					}
				}
				metadataAt = append(metadataAt, label)
			}
		case env.IsEnd():
			return
		case env.IsError():
			return
		}
	}
}

var _ = Describe("Writer/Reader round trip", func() {
	It("delivers forward metadata immediately to the records that follow it", func() {
		res := resource.NewMemory(nil)
		w := NewWriter(res, &message.Event{}, &message.RunMetadata{}, "forward test")
		Expect(w.SetForwardMetadata()).To(Succeed())

		Expect(w.Metadata(&message.RunMetadata{RunId: "run-a"})).To(Succeed())
		writeEvents(w, 1, 3)
		Expect(w.Metadata(&message.RunMetadata{RunId: "run-b"})).To(Succeed())
		writeEvents(w, 4, 5)
		Expect(w.Close()).To(Succeed())

		Expect(res.Seek(0)).To(Succeed())
		r := NewReader(res)
		events, labels := drain(r)

		Expect(events).To(HaveLen(5))
		for i, ev := range events {
			Expect(ev.SequenceNumber).To(Equal(uint64(i) + 1))
		}
		Expect(labels).To(Equal([]string{"run-a", "run-a", "run-a", "run-b", "run-b"}))
		Expect(r.Error()).To(BeFalse())
		Expect(r.End()).To(BeTrue())
	})

	It("associates backward metadata with the content that precedes it", func() {
		res := resource.NewMemory(nil)
		w := NewWriter(res, &message.Event{}, &message.RunMetadata{}, "backward test")
		// forwardMetadata defaults to false: MetadataRefersForward=false.

		writeEvents(w, 1, 3)
		Expect(w.Metadata(&message.RunMetadata{RunId: "run-a"})).To(Succeed())
		writeEvents(w, 4, 5)
		Expect(w.Close()).To(Succeed())

		Expect(res.Seek(0)).To(Succeed())
		r := NewReader(res)
		events, labels := drain(r)

		Expect(events).To(HaveLen(5))
		Expect(labels[:3]).To(Equal([]string{"run-a", "run-a", "run-a"}))
		// Nothing after the last metadata record backward-labels events 4-5.
		Expect(labels[3]).To(Equal(""))
		Expect(labels[4]).To(Equal(""))
	})
})

var _ = Describe("Compression transparency", func() {
	codecs := []uint32{compress.Uncompressed, compress.Zlib, compress.Gzip, compress.Snappy, compress.LZ4}

	It("reads the same message sequence regardless of codec", func() {
		for _, codec := range codecs {
			res := resource.NewMemory(nil)
			w := NewWriter(res, &message.Event{}, nil, "codec test")
			Expect(w.SetForwardMetadata()).To(Succeed())
			Expect(w.SetCompression(codec, 0)).To(Succeed())
			writeEvents(w, 1, 20)
			Expect(w.Close()).To(Succeed())

			Expect(res.Seek(0)).To(Succeed())
			r := NewReader(res)
			events, _ := drain(r)
			Expect(events).To(HaveLen(20), "codec %d", codec)
			for i, ev := range events {
				Expect(ev.SequenceNumber).To(Equal(uint64(i)+1), "codec %d", codec)
			}
			Expect(r.Error()).To(BeFalse(), "codec %d", codec)
		}
	})
})

var _ = Describe("Concatenation closure", func() {
	It("iterates a concatenated resource as the concatenation of its segments", func() {
		res1 := resource.NewMemory(nil)
		w1 := NewWriter(res1, &message.Event{}, nil, "first")
		Expect(w1.SetForwardMetadata()).To(Succeed())
		writeEvents(w1, 1, 3)
		Expect(w1.Close()).To(Succeed())

		res2 := resource.NewMemory(nil)
		w2 := NewWriter(res2, &message.Event{}, nil, "second")
		Expect(w2.SetForwardMetadata()).To(Succeed())
		writeEvents(w2, 4, 6)
		Expect(w2.Close()).To(Succeed())

		combined := resource.NewMemory(nil)
		Expect(Concatenate(combined, byteReader(res1.Bytes()), byteReader(res2.Bytes()))).To(Succeed())

		Expect(combined.Seek(0)).To(Succeed())
		r := NewReader(combined)
		events, _ := drain(r)
		Expect(events).To(HaveLen(6))
		for i, ev := range events {
			Expect(ev.SequenceNumber).To(Equal(uint64(i) + 1))
		}
		Expect(r.End()).To(BeTrue())
	})
})

var _ = Describe("Termination", func() {
	It("reports Error, not End, on a truncated resource", func() {
		res := resource.NewMemory(nil)
		w := NewWriter(res, &message.Event{}, nil, "truncated")
		Expect(w.SetForwardMetadata()).To(Succeed())
		writeEvents(w, 1, 3)
		Expect(w.Close()).To(Succeed())

		full := res.Bytes()
		truncated := resource.NewMemory(full[:len(full)-4])

		r := NewReader(truncated)
		for {
			env := r.Next()
			if env.IsError() || env.IsEnd() {
				Expect(env.IsError()).To(BeTrue())
				break
			}
		}
		Expect(r.Error()).To(BeTrue())
		Expect(r.End()).To(BeFalse())
	})

	It("reports End cleanly for an empty stream with forward metadata", func() {
		res := resource.NewMemory(nil)
		w := NewWriter(res, nil, nil, "empty")
		Expect(w.SetForwardMetadata()).To(Succeed())
		Expect(w.Close()).To(Succeed())

		Expect(res.Seek(0)).To(Succeed())
		r := NewReader(res)
		env := r.Next()
		Expect(env.IsEnd()).To(BeTrue())
		Expect(r.CurrentMetadata()).To(BeNil())
	})
})

var _ = Describe("Seek carry mode", func() {
	It("resolves an out-of-range metadata index by borrowing from the next segment", func() {
		res1 := resource.NewMemory(nil)
		w1 := NewWriter(res1, &message.Event{}, &message.RunMetadata{}, "seg0")
		Expect(w1.SetForwardMetadata()).To(Succeed())
		Expect(w1.Metadata(&message.RunMetadata{RunId: "seg0-only"})).To(Succeed())
		writeEvents(w1, 1, 2)
		Expect(w1.Close()).To(Succeed())

		res2 := resource.NewMemory(nil)
		w2 := NewWriter(res2, &message.Event{}, &message.RunMetadata{}, "seg1")
		Expect(w2.SetForwardMetadata()).To(Succeed())
		Expect(w2.Metadata(&message.RunMetadata{RunId: "seg1-first"})).To(Succeed())
		writeEvents(w2, 3, 4)
		Expect(w2.Metadata(&message.RunMetadata{RunId: "seg1-second"})).To(Succeed())
		writeEvents(w2, 5, 6)
		Expect(w2.Close()).To(Succeed())

		combined := resource.NewMemory(nil)
		Expect(Concatenate(combined, byteReader(res1.Bytes()), byteReader(res2.Bytes()))).To(Succeed())

		r := NewReader(combined)
		// Segment 0 has exactly one metadata record (index 0); asking for
		// index 1 carries into segment 1's index 0.
		Expect(r.SeekTo(0, 1)).To(Succeed())
		env := r.Next()
		Expect(env.IsMessage()).To(BeTrue())
		ev, ok := As[*message.Event](env)
		Expect(ok).To(BeTrue())
		Expect(ev.SequenceNumber).To(Equal(uint64(3)))
		rm, ok := r.CurrentMetadata().(*message.RunMetadata)
		Expect(ok).To(BeTrue())
		Expect(rm.RunId).To(Equal("seg1-first"))
	})

	It("lands on the first content record, not the header, for a backward segment's metadata index 0", func() {
		res := resource.NewMemory(nil)
		w := NewWriter(res, &message.Event{}, &message.RunMetadata{}, "backward seek")
		// forwardMetadata defaults to false: MetadataRefersForward=false.
		writeEvents(w, 1, 2)
		Expect(w.Metadata(&message.RunMetadata{RunId: "run-a"})).To(Succeed())
		writeEvents(w, 3, 4)
		Expect(w.Close()).To(Succeed())

		r := NewReader(res)
		Expect(r.SeekTo(0, 0)).To(Succeed())

		env := r.Next()
		Expect(env.IsMessage()).To(BeTrue())
		ev, ok := As[*message.Event](env)
		Expect(ok).To(BeTrue())
		Expect(ev.SequenceNumber).To(Equal(uint64(1)))
		rm, ok := r.CurrentMetadata().(*message.RunMetadata)
		Expect(ok).To(BeTrue())
		Expect(rm.RunId).To(Equal("run-a"))
	})

	It("rejects a seek target that falls inside a compressed section", func() {
		res := resource.NewMemory(nil)
		w := NewWriter(res, &message.Event{}, &message.RunMetadata{}, "compressed seek")
		Expect(w.SetForwardMetadata()).To(Succeed())
		Expect(w.SetCompression(compress.Zlib, 0)).To(Succeed())
		Expect(w.Metadata(&message.RunMetadata{RunId: "only"})).To(Succeed())
		writeEvents(w, 1, 5)
		Expect(w.Close()).To(Succeed())

		r := NewReader(res)
		err := r.SeekTo(0, 0)
		Expect(err).To(MatchError(ErrCompressedSeekTarget))
	})
})

// byteReader wraps a byte slice as an io.Reader without importing bytes
// directly into every test that needs one.
func byteReader(b []byte) *sliceReader {
	return &sliceReader{b: append([]byte(nil), b...)}
}
