package midi

import "testing"

func TestBufferBoundedAppend(t *testing.T) {
	b := NewBuffer(2)
	if !b.Append(NewNoteOn(60, 100)) || !b.Append(NewNoteOff(60)) {
		t.Fatal("appends within capacity must succeed")
	}
	if b.Append(NewNoteOn(64, 100)) {
		t.Fatal("append past capacity must fail")
	}
	if b.Len() != 2 || b.Room() != 0 {
		t.Fatalf("len=%d room=%d after fill", b.Len(), b.Room())
	}
	b.Reset()
	if b.Len() != 0 || b.Room() != 2 {
		t.Fatal("reset must restore full capacity")
	}
}

func TestEventBytes(t *testing.T) {
	on := NewNoteOn(60, 100)
	if got := on.Bytes(); len(got) != 3 || got[0] != 0x90 || got[1] != 60 || got[2] != 100 {
		t.Fatalf("note-on bytes = % X", got)
	}
	raw := Raw([]byte{0xD0, 64})
	if got := raw.Bytes(); len(got) != 2 || got[0] != 0xD0 || got[1] != 64 {
		t.Fatalf("2-byte raw must keep its length, got % X", got)
	}
	cc := NewAllNotesOff()
	if got := cc.Bytes(); got[0] != 0xB0 || got[1] != 123 || got[2] != 0 {
		t.Fatalf("CC123 bytes = % X", got)
	}
}

func TestNoteOnOffClassification(t *testing.T) {
	if !NewNoteOn(60, 1).IsNoteOn() || NewNoteOn(60, 1).IsNoteOff() {
		t.Fatal("note-on misclassified")
	}
	if !NewNoteOff(60).IsNoteOff() {
		t.Fatal("note-off misclassified")
	}
	// Running-status style note-on with velocity 0 counts as a release
	zeroVel := Event{Status: NoteOn, Data1: 60, Len: 3}
	if zeroVel.IsNoteOn() || !zeroVel.IsNoteOff() {
		t.Fatal("velocity-0 note-on must classify as note-off")
	}
}
