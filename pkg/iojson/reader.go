package iojson

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"
	"golang.org/x/term"
)

// Stdin is the input read when no path is given. Tests may replace it.
var Stdin io.Reader = os.Stdin

// ReadAll reads the file at path, or stdin when path is empty or "-".
// Reading from an interactive terminal is refused.
func ReadAll(path string) ([]byte, error) {
	if path != "" && path != "-" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		return data, nil
	}

	if f, ok := Stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return nil, fmt.Errorf("no input provided (stdin is a terminal); pass a file or pipe input")
	}

	data, err := io.ReadAll(Stdin)
	if err != nil {
		return nil, fmt.Errorf("read stdin: %w", err)
	}
	return data, nil
}

// Read decodes JSON from the file at path, or stdin when path is empty.
func Read[T any](path string) (T, error) {
	var out T

	data, err := ReadAll(path)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return out, fmt.Errorf("decode JSON: %w", err)
	}
	return out, nil
}

// FileReader binds a JSON input file to a named command flag.
type FileReader[T any] struct {
	name  string
	usage string
	path  string
}

// NewFileReader creates a reader for the flag --name.
func NewFileReader[T any](name, usage string) *FileReader[T] {
	return &FileReader[T]{name: name, usage: usage}
}

// Flag returns the flag that sets the file path.
func (fr *FileReader[T]) Flag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:        fr.name,
		Usage:       fr.usage,
		Destination: &fr.path,
	}
}

// Path returns the configured path.
func (fr *FileReader[T]) Path() string { return fr.path }

// Read decodes the file named by the flag, or stdin when it is unset.
func (fr *FileReader[T]) Read() (T, error) {
	return Read[T](fr.path)
}
