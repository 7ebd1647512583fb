// Package ports declares the interfaces every side effect in this module
// goes through: the LIMS/QC/ACORD/history databases, the filesystem, the
// outbound carrier transports, and the clock/logger. Every component takes
// these as constructor arguments rather than reaching for a global, so a
// scheduler run can be driven against fakes in tests (spec.md §9 Design
// Notes; grounded on the teacher's storage.Storage / StorageProvider
// seam in internal/storage/provider.go).
package ports

import (
	"context"
	"io"
	"time"
)

// Clock abstracts time.Now so retry/backoff and poll-interval logic can be
// driven deterministically in tests.
type Clock interface {
	Now() time.Time
}

// systemClock is the production Clock.
type systemClock struct{}

// SystemClock returns the real wall clock.
func SystemClock() Clock { return systemClock{} }

func (systemClock) Now() time.Time { return time.Now() }

// Logger is the structured logger every component logs through. It is
// intentionally minimal — components attach fields with With and log at
// one of four levels, matching the level of structure the teacher's own
// ambient logging uses without pulling in a specific logging library's
// full API into every package's dependency surface.
type Logger interface {
	With(fields ...any) Logger
	Debug(msg string, fields ...any)
	Info(msg string, fields ...any)
	Warn(msg string, fields ...any)
	Error(msg string, err error, fields ...any)
}

// Row is a generic query result row, keyed by column name, used by the
// narrow read ports below instead of exposing *sql.Rows directly so fakes
// don't need a real driver.
type Row map[string]any

// DB is the narrow slice of database/sql this module needs: parameterized
// query and exec, nothing ORM-shaped. Every store (LIMS, CaseQC, ACORD 103,
// document history) is built on this one port.
type DB interface {
	Query(ctx context.Context, query string, args ...any) ([]Row, error)
	QueryRow(ctx context.Context, query string, args ...any) (Row, error)
	Exec(ctx context.Context, query string, args ...any) (rowsAffected int64, err error)
}

// FileInfo is the subset of os.FileInfo the tracked-file manager needs.
type FileInfo struct {
	Name    string
	Size    int64
	ModTime time.Time
	IsDir   bool
}

// Filesystem abstracts the tracked-file manager's view of disk, so its
// state machine (spec.md §4.3) can be tested without touching real files.
type Filesystem interface {
	Glob(pattern string) ([]string, error)
	Stat(path string) (FileInfo, error)
	ReadFile(path string) ([]byte, error)
	WriteFile(path string, data []byte) error
	Remove(path string) error
	Rename(oldPath, newPath string) error
	MkdirAll(path string) error
}

// Transport is the outbound delivery mechanism a carrier's TransmitHooks
// send a staged bundle over (spec.md §4.7). Concrete implementations wrap
// FTP/SFTP/SMTP/pickup; PGP encryption, if configured, wraps the io.Reader
// before Send is called.
type Transport interface {
	Send(ctx context.Context, remotePath string, body io.Reader) error
	Close() error
}

// Encryptor wraps a plaintext stream in an encrypted one for transports
// configured with PGP (spec.md §4.7, TransportConfig.PGP).
type Encryptor interface {
	Encrypt(ctx context.Context, plaintext io.Reader) (io.Reader, error)
}

// ImageConverter renders an imaged document page to the wire format a
// carrier expects (spec.md §3 Document — most carriers take the tracked
// TIFF as-is, some require re-encoding).
type ImageConverter interface {
	Convert(ctx context.Context, src io.Reader, srcFormat, dstFormat string) (io.Reader, error)
}

// XMLLookup resolves a dotted path (spec.md §4.3 IndexField.Reference,
// "ACORD103"/"ACORD121" sources) against a parsed ACORD XML document.
type XMLLookup interface {
	Lookup(doc []byte, dottedPath string) (string, bool)
}
