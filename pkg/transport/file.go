package transport

import (
	"bufio"
	"fmt"
	"io"
	"os"
)

// FileSource replays a captured P1 stream from disk, for offline runs and
// tests. EOF is terminal.
type FileSource struct {
	file    *os.File
	scanner *bufio.Scanner
}

func OpenFile(path string) (*FileSource, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}
	return &FileSource{
		file:    file,
		scanner: bufio.NewScanner(file),
	}, nil
}

func (f *FileSource) ReadLine() (string, error) {
	if f.scanner.Scan() {
		return f.scanner.Text(), nil
	}
	if err := f.scanner.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}

func (f *FileSource) Close() error {
	return f.file.Close()
}
