package creds

import "testing"

func TestLoadMissingFileIsEmpty(t *testing.T) {
	s := NewStore(t.TempDir())

	c, err := s.Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Token != "" || c.TLSFingerprint != "" {
		t.Errorf("expected empty credentials, got %+v", c)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := NewStore(t.TempDir())

	want := Credentials{Token: "tok-1", TLSFingerprint: "ab12"}
	if err := s.Save(want); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := s.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got != want {
		t.Errorf("round-trip mismatch: got %+v, want %+v", got, want)
	}
}
