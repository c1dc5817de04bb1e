package midi

// MIDI status bytes
const (
	NoteOff uint8 = 0x80
	NoteOn  uint8 = 0x90
	CC      uint8 = 0xB0

	Clock    uint8 = 0xF8
	Start    uint8 = 0xFA
	Continue uint8 = 0xFB
	Stop     uint8 = 0xFC
)

// CCAllNotesOff is the controller number for "all notes off"
const CCAllNotesOff uint8 = 123

// Event is a single emitted MIDI message, at most three bytes
type Event struct {
	Status uint8
	Data1  uint8
	Data2  uint8
	Len    int
}

// NewNoteOn builds a note-on event
func NewNoteOn(note, velocity uint8) Event {
	return Event{Status: NoteOn, Data1: note, Data2: velocity, Len: 3}
}

// NewNoteOff builds a note-off event
func NewNoteOff(note uint8) Event {
	return Event{Status: NoteOff, Data1: note, Len: 3}
}

// NewAllNotesOff builds a CC123 "all notes off" event
func NewAllNotesOff() Event {
	return Event{Status: CC, Data1: CCAllNotesOff, Len: 3}
}

// Raw builds a passthrough event from an incoming message, truncated to
// three bytes
func Raw(msg []byte) Event {
	e := Event{Len: len(msg)}
	if e.Len > 3 {
		e.Len = 3
	}
	if e.Len > 0 {
		e.Status = msg[0]
	}
	if e.Len > 1 {
		e.Data1 = msg[1]
	}
	if e.Len > 2 {
		e.Data2 = msg[2]
	}
	return e
}

// Bytes returns the wire form of the event
func (e Event) Bytes() []byte {
	b := [3]uint8{e.Status, e.Data1, e.Data2}
	n := e.Len
	if n < 1 {
		n = 1
	}
	if n > 3 {
		n = 3
	}
	return b[:n]
}

// IsNoteOn reports whether the event is a note-on with non-zero velocity
func (e Event) IsNoteOn() bool {
	return e.Status&0xF0 == NoteOn && e.Data2 > 0
}

// IsNoteOff reports whether the event is a note-off, or a note-on with
// velocity zero
func (e Event) IsNoteOff() bool {
	return e.Status&0xF0 == NoteOff || (e.Status&0xF0 == NoteOn && e.Data2 == 0)
}
