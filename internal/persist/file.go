package persist

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

const (
	DefaultFileName = ".stocks.json"
	PathEnv         = "STOCK_WATCH_DB_PATH"
)

// Error is a storage read/write failure. It is reported to the user and
// never ends the program.
type Error struct {
	Op   string
	Path string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s watchlist %s: %v", e.Op, e.Path, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

type item struct {
	Code string `json:"code"`
}

type document struct {
	Stocks []item `json:"stocks"`
}

// File stores the watchlist codes as {"stocks":[{"code":"..."}]}.
type File struct {
	path string
}

func NewFile(path string) *File {
	return &File{path: path}
}

func (f *File) Path() string { return f.path }

// DefaultPath resolves the watchlist file: the env override first, then
// ~/.stocks.json.
func DefaultPath() (string, error) {
	if v := os.Getenv(PathEnv); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("home directory not found: %w", err)
	}
	return filepath.Join(home, DefaultFileName), nil
}

// Load returns the saved codes in order. A missing file is an empty list.
func (f *File) Load() ([]string, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return []string{}, nil
	}
	if err != nil {
		return nil, &Error{Op: "read", Path: f.path, Err: err}
	}
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &Error{Op: "parse", Path: f.path, Err: fmt.Errorf("invalid storage data: %w", err)}
	}
	codes := make([]string, 0, len(doc.Stocks))
	for _, s := range doc.Stocks {
		codes = append(codes, s.Code)
	}
	return codes, nil
}

// Save writes codes in order, replacing the file atomically.
func (f *File) Save(codes []string) error {
	doc := document{Stocks: make([]item, 0, len(codes))}
	for _, c := range codes {
		doc.Stocks = append(doc.Stocks, item{Code: c})
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return &Error{Op: "encode", Path: f.path, Err: err}
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &Error{Op: "write", Path: f.path, Err: err}
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(f.path)+".*.tmp")
	if err != nil {
		return &Error{Op: "write", Path: f.path, Err: err}
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return &Error{Op: "write", Path: f.path, Err: err}
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return &Error{Op: "write", Path: f.path, Err: err}
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		_ = os.Remove(tmpName)
		return &Error{Op: "write", Path: f.path, Err: err}
	}
	return nil
}
