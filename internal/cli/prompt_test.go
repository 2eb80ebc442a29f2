package cli

import (
	"bytes"
	"strings"
	"testing"
)

func newTestPrompter(input string) (*Prompter, *bytes.Buffer) {
	out := &bytes.Buffer{}
	return &Prompter{
		In:  strings.NewReader(input),
		Out: out,
	}, out
}

func TestAsk_WithInput(t *testing.T) {
	p, _ := newTestPrompter("gw.example\n")
	got := p.Ask("Host", "localhost")
	if got != "gw.example" {
		t.Errorf("Ask() = %q, want %q", got, "gw.example")
	}
}

func TestAsk_EmptyUsesDefault(t *testing.T) {
	p, _ := newTestPrompter("\n")
	got := p.Ask("Host", "localhost")
	if got != "localhost" {
		t.Errorf("Ask() = %q, want %q", got, "localhost")
	}
}

func TestAskSecret_Fallback(t *testing.T) {
	// Not a real terminal, so it falls back to plain read.
	p, _ := newTestPrompter("tok-123\n")
	got := p.AskSecret("Token")
	if got != "tok-123" {
		t.Errorf("AskSecret() = %q, want %q", got, "tok-123")
	}
}

func TestAskPort_ValidInput(t *testing.T) {
	p, _ := newTestPrompter("18789\n")
	got := p.AskPort("Port", 80)
	if got != 18789 {
		t.Errorf("AskPort() = %d, want %d", got, 18789)
	}
}

func TestAskPort_RetryOnOutOfRange(t *testing.T) {
	p, out := newTestPrompter("70000\nabc\n42\n")
	got := p.AskPort("Port", 99)
	if got != 42 {
		t.Errorf("AskPort() = %d, want %d", got, 42)
	}
	if !strings.Contains(out.String(), "between 1 and 65535") {
		t.Error("expected range hint in output")
	}
}

func TestAskPort_EmptyUsesDefault(t *testing.T) {
	p, _ := newTestPrompter("\n")
	if got := p.AskPort("Port", 18789); got != 18789 {
		t.Errorf("AskPort() = %d, want default %d", got, 18789)
	}
}

func TestAskFingerprint_NormalizesOpensslForm(t *testing.T) {
	hexDigest := strings.Repeat("ab", 32)
	colons := strings.ToUpper(strings.Join(splitPairs(hexDigest), ":"))

	p, _ := newTestPrompter(colons + "\n")
	got := p.AskFingerprint("Fingerprint")
	if got != hexDigest {
		t.Errorf("AskFingerprint() = %q, want %q", got, hexDigest)
	}
}

func TestAskFingerprint_RetryOnGarbage(t *testing.T) {
	valid := strings.Repeat("0f", 32)
	p, out := newTestPrompter("not-a-digest\n" + valid + "\n")
	got := p.AskFingerprint("Fingerprint")
	if got != valid {
		t.Errorf("AskFingerprint() = %q, want %q", got, valid)
	}
	if !strings.Contains(out.String(), "64 hex digits") {
		t.Error("expected format hint in output")
	}
}

func TestAskFingerprint_EmptyDisablesPinning(t *testing.T) {
	p, _ := newTestPrompter("\n")
	if got := p.AskFingerprint("Fingerprint"); got != "" {
		t.Errorf("AskFingerprint() = %q, want empty", got)
	}
}

func TestConfirm_DefaultNo(t *testing.T) {
	p, _ := newTestPrompter("\n")
	if p.Confirm("Use TLS?", false) {
		t.Error("expected default no")
	}
}

func TestConfirm_Yes(t *testing.T) {
	p, _ := newTestPrompter("y\n")
	if !p.Confirm("Use TLS?", false) {
		t.Error("expected yes")
	}
}

// splitPairs chops a hex string into its byte pairs.
func splitPairs(s string) []string {
	pairs := make([]string, 0, len(s)/2)
	for i := 0; i+1 < len(s); i += 2 {
		pairs = append(pairs, s[i:i+2])
	}
	return pairs
}
