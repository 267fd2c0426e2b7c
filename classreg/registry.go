// Package classreg implements the class registry described by the A4
// format: a process-wide compile-time table mapping stable class ids and
// full names to message factories, plus the per-stream writer and reader
// registries layered on top of it. It mirrors the shape of the teacher's
// device.Registry (a mutex-guarded map populated at runtime) but the
// compile-time half is closer to a protobuf-style global type registry:
// populated once at init time and read-only thereafter.
package classreg

import (
	"sync"

	"github.com/pkg/errors"

	"github.com/JohannesEbke/a4io/message"
)

// Reserved class ids. 0 and 1 never appear on the wire; they are the
// Envelope's End/Error sentinels (message.Message values never use them).
const (
	ClassIDEnd   uint32 = 0
	ClassIDError uint32 = 1
)

// Base ids a stream assigns its declared content/metadata default classes
// from, and the first id available for any other dynamically encountered
// class. Built-in record types occupy 2-6 (see message.ClassIDStreamHeader
// and friends); content/metadata bases sit just above them so a stream
// with no custom content/metadata declaration still has room to grow.
const (
	ContentBase         uint32 = 16
	MetadataBase        uint32 = 17
	FirstDynamicClassID uint32 = 32
)

// Entry is a single class registration: its wire id, its full name, and a
// factory for fresh instances.
type Entry struct {
	ClassID  uint32
	FullName string
	New      message.Factory
}

var (
	globalMu   sync.RWMutex
	globalByID = map[uint32]Entry{}
	globalByNm = map[string]Entry{}
)

// RegisterFixed adds id/name/factory to the process-wide compile-time
// table. It is meant to be called from package init() functions only (the
// schema layer's "module init" in spec.md §4.3); the table is effectively
// immutable once the program is running its main logic.
func RegisterFixed(id uint32, name string, new message.Factory) {
	globalMu.Lock()
	defer globalMu.Unlock()

	e := Entry{ClassID: id, FullName: name, New: new}
	globalByID[id] = e
	globalByNm[name] = e
}

// LookupFixedByID returns the compile-time entry for id, if any.
func LookupFixedByID(id uint32) (Entry, bool) {
	globalMu.RLock()
	defer globalMu.RUnlock()
	e, ok := globalByID[id]
	return e, ok
}

// LookupFixedByName returns the compile-time entry for name, if any.
func LookupFixedByName(name string) (Entry, bool) {
	globalMu.RLock()
	defer globalMu.RUnlock()
	e, ok := globalByNm[name]
	return e, ok
}

// ErrUnknownClass is returned when a class id has neither a compile-time
// nor an in-stream (dynamic) descriptor.
var ErrUnknownClass = errors.New("classreg: unknown class id")
