package console

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrClosed is returned when input ends before an answer is read.
var ErrClosed = errors.New("input closed")

// Prompter reads line-oriented answers.
type Prompter struct {
	in  *bufio.Scanner
	out io.Writer
}

func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: bufio.NewScanner(in), out: out}
}

// Ask prints question and returns the trimmed answer.
func (p *Prompter) Ask(question string) (string, error) {
	fmt.Fprint(p.out, question)
	if !p.in.Scan() {
		if err := p.in.Err(); err != nil {
			return "", err
		}
		return "", ErrClosed
	}
	return strings.TrimSpace(p.in.Text()), nil
}

// Confirm asks a yes/no question until it gets a usable answer. An empty
// answer means no.
func (p *Prompter) Confirm(question string) (bool, error) {
	for {
		answer, err := p.Ask(question)
		if err != nil {
			return false, err
		}
		switch strings.ToLower(answer) {
		case "yes", "y":
			return true, nil
		case "no", "n", "":
			return false, nil
		}
		fmt.Fprintln(p.out, "Please answer yes or no.")
	}
}
