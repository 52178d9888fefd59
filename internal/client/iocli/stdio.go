package iocli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/term"
)

// ErrInterrupted оператор нажал Ctrl-C в raw режиме
var ErrInterrupted = errors.New("interrupted")

const keyCtrlC = 0x03

type Stdio struct {
	in     *os.File
	reader *bufio.Reader
	out    io.Writer
}

func NewStdio() IO {
	return NewStdioFrom(os.Stdin, os.Stdout)
}

// NewStdioFrom ввод из in, вывод в out
func NewStdioFrom(in *os.File, out io.Writer) *Stdio {
	return &Stdio{in: in, reader: bufio.NewReader(in), out: out}
}

func (s *Stdio) Println(a ...any) {
	_, _ = fmt.Fprintln(s.out, a...)
}

func (s *Stdio) Printf(format string, a ...any) {
	_, _ = fmt.Fprintf(s.out, format, a...)
}

func (s *Stdio) Write(p []byte) (int, error) {
	return s.out.Write(p)
}

func (s *Stdio) ReadInput(prompt string) (string, error) {
	s.Printf("%s", prompt)
	input, err := s.reader.ReadString('\n')
	if err != nil && (!errors.Is(err, io.EOF) || input == "") {
		return "", err
	}
	return strings.TrimSpace(input), nil
}

func (s *Stdio) ReadPassword(prompt string) (string, error) {
	s.Printf("%s", prompt)
	fd := int(s.in.Fd())
	if !term.IsTerminal(fd) {
		return s.ReadInput("")
	}
	pwBytes, err := term.ReadPassword(fd)
	s.Println("")
	if err != nil {
		return "", err
	}
	return string(pwBytes), nil
}

func (s *Stdio) ReadKey(prompt string) (rune, error) {
	s.Printf("%s", prompt)

	fd := int(s.in.Fd())
	if !term.IsTerminal(fd) {
		// не терминал (pipe, тесты): первая буква строки
		line, err := s.ReadInput("")
		if err != nil {
			return 0, err
		}
		r, _ := utf8.DecodeRuneInString(line)
		if r == utf8.RuneError {
			r = '\n'
		}
		return r, nil
	}

	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return 0, fmt.Errorf("failed to switch terminal to raw mode: %w", err)
	}
	defer func() {
		_ = term.Restore(fd, oldState)
		s.Println("")
	}()

	r, _, err := s.reader.ReadRune()
	if err != nil {
		return 0, err
	}
	if r == keyCtrlC {
		return 0, ErrInterrupted
	}
	return r, nil
}
