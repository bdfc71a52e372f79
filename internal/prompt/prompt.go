// Package prompt reads interactive answers from a terminal.
package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// MaxAttempts bounds how many times a question is asked before giving up.
const MaxAttempts = 3

// ErrNotInteractive is returned when input is not a terminal and an answer
// is required.
var ErrNotInteractive = errors.New("input is not an interactive terminal")

// ErrTooManyAttempts is returned when every attempt was rejected.
var ErrTooManyAttempts = errors.New("too many invalid answers")

// Prompter asks questions on out and reads answers from in.
type Prompter struct {
	in          *bufio.Reader
	out         io.Writer
	interactive bool
}

// New creates a Prompter. interactive reports whether questions may be
// asked at all.
func New(in io.Reader, out io.Writer, interactive bool) *Prompter {
	return &Prompter{
		in:          bufio.NewReader(in),
		out:         out,
		interactive: interactive,
	}
}

// NewTerminal creates a Prompter on stdin and stderr, interactive only when
// stdin is a terminal.
func NewTerminal() *Prompter {
	return New(os.Stdin, os.Stderr, IsTerminal(os.Stdin))
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd())) // #nosec G115 -- file descriptors fit in int
}

// Interactive reports whether the prompter may ask questions.
func (p *Prompter) Interactive() bool {
	return p.interactive
}

// Ask prints "label [def]: " and returns the trimmed answer, or def when the
// answer is empty. A non-interactive prompter returns def without asking.
func (p *Prompter) Ask(label, def string) (string, error) {
	if !p.interactive {
		return def, nil
	}
	if def != "" {
		fmt.Fprintf(p.out, "%s [%s]: ", label, def)
	} else {
		fmt.Fprintf(p.out, "%s: ", label)
	}

	line, err := p.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read answer: %w", err)
	}

	answer := strings.TrimRight(line, "\r\n")
	if strings.TrimSpace(answer) == "" {
		return def, nil
	}
	return answer, nil
}

// AskValid asks until validate accepts the answer, at most MaxAttempts
// times. Rejections are printed with the validation error.
func (p *Prompter) AskValid(label string, validate func(string) error) (string, error) {
	if !p.interactive {
		return "", ErrNotInteractive
	}

	var lastErr error
	for attempt := 1; attempt <= MaxAttempts; attempt++ {
		answer, err := p.Ask(label, "")
		if err != nil {
			return "", err
		}
		answer = strings.TrimSpace(answer)
		if lastErr = validate(answer); lastErr == nil {
			return answer, nil
		}
		fmt.Fprintf(p.out, "%v\n", lastErr)
	}
	return "", fmt.Errorf("%w: %w", ErrTooManyAttempts, lastErr)
}
