package uuid

import "testing"

func TestScan_Binary(t *testing.T) {
	want := NewUUID()
	raw, err := want.Value()
	if err != nil {
		t.Fatalf("Value: %v", err)
	}

	var got UUID
	if err := got.Scan(raw); err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if got != want {
		t.Errorf("got %s; want %s", got, want)
	}
}

func TestScan_Text(t *testing.T) {
	const s = "aaaaaaaa-bbbb-cccc-dddd-eeeeeeeeeeee"

	var fromString, fromBytes UUID
	if err := fromString.Scan(s); err != nil {
		t.Fatalf("Scan(string): %v", err)
	}
	if err := fromBytes.Scan([]byte(s)); err != nil {
		t.Fatalf("Scan([]byte): %v", err)
	}
	if fromString.String() != s || fromBytes.String() != s {
		t.Errorf("got %s and %s; want %s", fromString, fromBytes, s)
	}
}

func TestScan_BadType(t *testing.T) {
	var u UUID
	if err := u.Scan(42); err == nil {
		t.Fatal("expected error for int source")
	}
}

func TestParse(t *testing.T) {
	if _, err := Parse("not-a-uuid"); err == nil {
		t.Error("expected error for malformed input")
	}
	id, err := Parse("aaaaaaaa-bbbb-cccc-dddd-eeeeeeeeeeee")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if id.IsNil() {
		t.Error("parsed id should not be nil")
	}
	if !Nil.IsNil() {
		t.Error("Nil should report IsNil")
	}
}
