// Package cli implements the terminal prompts behind `clawlink init`:
// plain questions, hidden token entry, and validated gateway-specific
// inputs (TCP port, certificate fingerprint).
package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/term"
)

// fingerprintRe matches a SHA-256 certificate pin the way clawlink stores
// it: exactly 64 lowercase hex digits.
var fingerprintRe = regexp.MustCompile(`^[0-9a-f]{64}$`)

// Prompter asks setup questions on a terminal. In and Out default to the
// process stdin/stdout; tests substitute buffers.
type Prompter struct {
	In  io.Reader
	Out io.Writer

	r *bufio.Reader
}

// DefaultPrompter returns a Prompter bound to stdin/stdout.
func DefaultPrompter() *Prompter {
	return &Prompter{In: os.Stdin, Out: os.Stdout}
}

// line reads one trimmed input line; exhausted input yields "".
func (p *Prompter) line() string {
	if p.r == nil {
		p.r = bufio.NewReader(p.In)
	}
	s, _ := p.r.ReadString('\n')
	return strings.TrimSpace(s)
}

// Ask poses a question and returns the typed answer, or defaultVal when
// the user just presses Enter.
func (p *Prompter) Ask(question, defaultVal string) string {
	if defaultVal == "" {
		fmt.Fprintf(p.Out, "%s: ", question)
	} else {
		fmt.Fprintf(p.Out, "%s [%s]: ", question, defaultVal)
	}
	if ans := p.line(); ans != "" {
		return ans
	}
	return defaultVal
}

// AskSecret reads the gateway token without echoing it. Piped input (and
// tests) fall back to a plain read.
func (p *Prompter) AskSecret(question string) string {
	fmt.Fprintf(p.Out, "%s: ", question)

	if f, ok := p.In.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(p.Out) // newline after hidden input
		if err == nil {
			return strings.TrimSpace(string(b))
		}
	}

	return p.line()
}

// AskPort asks for a TCP port, reprompting until the answer is in range.
func (p *Prompter) AskPort(question string, defaultVal int) int {
	for {
		ans := p.Ask(question, strconv.Itoa(defaultVal))
		n, err := strconv.Atoi(ans)
		if err == nil && n >= 1 && n <= 65535 {
			return n
		}
		fmt.Fprintf(p.Out, "  Port must be a number between 1 and 65535.\n")
	}
}

// AskFingerprint asks for a certificate pin. Empty disables pinning.
// Uppercase digits and the colon byte separators openssl prints are
// tolerated and normalized away; anything else reprompts.
func (p *Prompter) AskFingerprint(question string) string {
	for {
		ans := p.Ask(question, "")
		if ans == "" {
			return ""
		}
		fp := strings.ToLower(strings.ReplaceAll(ans, ":", ""))
		if fingerprintRe.MatchString(fp) {
			return fp
		}
		fmt.Fprintf(p.Out, "  Fingerprint must be a sha256 digest: 64 hex digits.\n")
	}
}

// Confirm asks a yes/no question; Enter picks the default.
func (p *Prompter) Confirm(question string, defaultYes bool) bool {
	hint := "y/N"
	if defaultYes {
		hint = "Y/n"
	}
	ans := strings.ToLower(p.Ask(question+" ["+hint+"]", ""))
	if ans == "" {
		return defaultYes
	}
	return strings.HasPrefix(ans, "y")
}
