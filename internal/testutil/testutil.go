// Package testutil provides helpers shared by the umlab tests.
package testutil

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	dataframe "github.com/rocketlaunchr/dataframe-go"
)

// TempFile creates a temporary file with the given content and extension.
// The file is automatically cleaned up when the test finishes.
func TempFile(t *testing.T, content, ext string) string {
	t.Helper()
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "test"+ext)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}
	return path
}

// ReadFile returns the contents of path, failing the test if it cannot be read.
func ReadFile(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read %s: %v", path, err)
	}
	return data
}

// ReadWords reads a program file as big-endian 32-bit words.
func ReadWords(t *testing.T, path string) []uint32 {
	t.Helper()
	data := ReadFile(t, path)
	if len(data)%4 != 0 {
		t.Fatalf("%s: length %d is not a multiple of 4", path, len(data))
	}
	words := make([]uint32, len(data)/4)
	for i := range words {
		words[i] = binary.BigEndian.Uint32(data[i*4:])
	}
	return words
}

// AssertMissing fails the test if path exists.
func AssertMissing(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("expected %s to be absent, stat error: %v", path, err)
	}
}

// CatalogCSV returns a small catalog with two valid scenarios.
func CatalogCSV() string {
	return `name,input,output,program
echo,a,a,"in r1
out r1
halt"
bang,,!,"lv r1, '!'
out r1
halt"`
}

// CatalogJSON returns CatalogCSV's scenarios as a JSON array.
func CatalogJSON() string {
	return `[
  {"name": "echo", "input": "a", "output": "a", "program": "in r1\nout r1\nhalt"},
  {"name": "bang", "input": "", "output": "!", "program": "lv r1, '!'\nout r1\nhalt"}
]`
}

// MakeCatalogFrame builds CatalogCSV's scenarios as a data frame.
func MakeCatalogFrame() *dataframe.DataFrame {
	return dataframe.NewDataFrame(
		dataframe.NewSeriesString("name", nil, "echo", "bang"),
		dataframe.NewSeriesString("input", nil, "a", nil),
		dataframe.NewSeriesString("output", nil, "a", "!"),
		dataframe.NewSeriesString("program", nil, "in r1\nout r1\nhalt", "lv r1, '!'\nout r1\nhalt"),
	)
}
