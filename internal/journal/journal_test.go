package journal

import (
	"path/filepath"
	"testing"

	"kisquant/internal/kis"
)

func TestJournalRecordAndEntries(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "journal.db")
	j, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer j.Close()

	cmds := []kis.Command{
		kis.NewPriceCommand("005930"),
		kis.NewOrderBuyCommand("12345678", "01", "005930", 1),
	}
	if err := j.Record(3, cmds); err != nil {
		t.Fatalf("Record: %v", err)
	}

	entries, err := j.Entries(j.RunID())
	if err != nil {
		t.Fatalf("Entries: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("Entries returned %d rows, want 2", len(entries))
	}

	first := entries[0]
	if first.StepIdx != 3 {
		t.Errorf("StepIdx = %d, want 3", first.StepIdx)
	}
	if first.TrID != "FHKST01010100" {
		t.Errorf("TrID = %q, want FHKST01010100", first.TrID)
	}
	if first.Params["fid_input_iscd"] != "005930" {
		t.Errorf("Params[fid_input_iscd] = %q, want 005930", first.Params["fid_input_iscd"])
	}

	second := entries[1]
	if second.Method != "POST" {
		t.Errorf("order entry Method = %q, want POST", second.Method)
	}
	if second.Params["ORD_QTY"] != "1" {
		t.Errorf("order entry ORD_QTY = %q, want 1", second.Params["ORD_QTY"])
	}
}

func TestJournalRecordDispatch(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "journal.db")
	j, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer j.Close()

	cmd := kis.NewBalanceCommand("12345678", "01")
	resp := map[string]any{"rt_cd": "0", "msg1": "ok"}
	if err := j.RecordDispatch(cmd, resp); err != nil {
		t.Fatalf("RecordDispatch: %v", err)
	}

	entries, err := j.Entries(j.RunID())
	if err != nil {
		t.Fatalf("Entries: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("Entries returned %d rows, want 1", len(entries))
	}
	if entries[0].RtCd != "0" || entries[0].Msg != "ok" {
		t.Errorf("entry response = {%q %q}, want {\"0\" \"ok\"}", entries[0].RtCd, entries[0].Msg)
	}
}

func TestJournalRunsAreIsolated(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "journal.db")

	j1, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open (first): %v", err)
	}
	if err := j1.Record(0, []kis.Command{kis.NewPriceCommand("005930")}); err != nil {
		t.Fatalf("Record: %v", err)
	}
	run1 := j1.RunID()
	j1.Close()

	j2, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open (second): %v", err)
	}
	defer j2.Close()

	if j2.RunID() == run1 {
		t.Fatal("second Open reused the first run id")
	}
	entries, err := j2.Entries(j2.RunID())
	if err != nil {
		t.Fatalf("Entries: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("new run sees %d entries, want 0", len(entries))
	}

	old, err := j2.Entries(run1)
	if err != nil {
		t.Fatalf("Entries (old run): %v", err)
	}
	if len(old) != 1 {
		t.Errorf("old run has %d entries, want 1", len(old))
	}
}
