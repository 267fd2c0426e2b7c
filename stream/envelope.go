package stream

import (
	"github.com/JohannesEbke/a4io/classreg"
	"github.com/JohannesEbke/a4io/message"
)

// Envelope is the value delivered by Reader.Next: a Message, End, or
// Error. The zero value is never handed to a caller.
type Envelope struct {
	classID uint32
	msg     message.Message
	err     error
}

func messageEnvelope(classID uint32, msg message.Message) Envelope {
	return Envelope{classID: classID, msg: msg}
}

func endEnvelope() Envelope {
	return Envelope{classID: classreg.ClassIDEnd}
}

func errorEnvelope(err error) Envelope {
	return Envelope{classID: classreg.ClassIDError, err: err}
}

// ClassID returns the envelope's class id: the message's wire class id,
// classreg.ClassIDEnd, or classreg.ClassIDError.
func (e Envelope) ClassID() uint32 { return e.classID }

// Message returns the carried message, or nil for End/Error.
func (e Envelope) Message() message.Message { return e.msg }

// IsMessage reports whether the envelope carries a message: its "truthy"
// test.
func (e Envelope) IsMessage() bool { return e.msg != nil }

// IsEnd reports whether the envelope is the end-of-stream sentinel.
func (e Envelope) IsEnd() bool { return e.msg == nil && e.err == nil }

// IsError reports whether the envelope is the error sentinel.
func (e Envelope) IsError() bool { return e.err != nil }

// Err returns the error carried by an Error envelope, or nil otherwise.
func (e Envelope) Err() error { return e.err }

// As attempts to view the envelope's message as T. T is typically a
// pointer to a concrete message type, e.g. As[*message.Event](env).
func As[T message.Message](e Envelope) (T, bool) {
	var zero T
	if e.msg == nil {
		return zero, false
	}
	v, ok := e.msg.(T)
	return v, ok
}

// Is reports whether the envelope's message can be viewed as T.
func Is[T message.Message](e Envelope) bool {
	_, ok := As[T](e)
	return ok
}
