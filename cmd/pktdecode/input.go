package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// maxInputBytes bounds input read from a file or stdin
const maxInputBytes = 16 << 20

// input is one command input (hex) and where it came from
type input struct {
	text   string
	source string
}

// readInput picks the input from the argument, --file, or stdin.
// An argument of "-" reads stdin explicitly.
func readInput(args []string, file string, stdin io.Reader) (input, error) {
	if file != "" && len(args) > 0 {
		return input{}, errors.New("give input as an argument or with --file, not both")
	}

	var (
		in  input
		err error
	)
	switch {
	case file != "":
		in.source = file
		in.text, err = readFile(file)
	case len(args) > 0 && args[0] != "-":
		in.source = "argument"
		in.text = args[0]
	default:
		if f, ok := stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
			return input{}, errors.New("no input: pass it as an argument, use --file, or pipe it to stdin")
		}
		in.source = "stdin"
		in.text, err = readAll(stdin)
	}
	if err != nil {
		return input{}, fmt.Errorf("failed to read %s: %w", in.source, err)
	}

	in.text = strings.TrimSpace(in.text)
	if in.text == "" {
		return input{}, fmt.Errorf("no input in %s", in.source)
	}
	return in, nil
}

func readFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer func() { _ = f.Close() }()
	return readAll(f)
}

func readAll(r io.Reader) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxInputBytes+1))
	if err != nil {
		return "", err
	}
	if len(data) > maxInputBytes {
		return "", fmt.Errorf("input larger than %d bytes", maxInputBytes)
	}
	return string(data), nil
}
