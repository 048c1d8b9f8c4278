package eventlog

import (
	"testing"
	"time"
)

func TestLogRecord(t *testing.T) {
	var l Log
	l.Record("Fax", false)
	l.Record("Backup", true)
	l.Record("Backup", true)

	if l.Initial != 1 || l.Copied != 2 {
		t.Errorf("expected 1 initial and 2 copied, got %d and %d", l.Initial, l.Copied)
	}
	if l.Total() != 3 {
		t.Errorf("expected total 3, got %d", l.Total())
	}
	if len(l.Sources) != 3 || l.Sources[0] != "Fax" {
		t.Errorf("unexpected sources %v", l.Sources)
	}
}

func TestWriterRoundTrip(t *testing.T) {
	dir := t.TempDir()
	w, err := Create(dir, "01TEST")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	events := []Event{
		{At: at, Turn: 1, Kind: "task", Task: "Breakfast", Currency: 100},
		{At: at, Turn: 2, Kind: "fight", Task: "Target fights", Encounter: "Knob Goblin Embezzler", Currency: 8100},
	}
	for _, e := range events {
		if err := w.Write(e); err != nil {
			t.Fatalf("Write: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
	if err := w.Write(events[0]); err == nil {
		t.Error("expected error writing to closed log")
	}

	got, err := ReadFile(Path(dir, "01TEST"))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 events, got %d", len(got))
	}
	if got[1].Encounter != "Knob Goblin Embezzler" || got[1].Currency != 8100 {
		t.Errorf("unexpected event %+v", got[1])
	}
	if !got[0].At.Equal(at) {
		t.Errorf("expected time %s, got %s", at, got[0].At)
	}
}
