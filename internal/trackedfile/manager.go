// Package trackedfile implements the crash-safe tracked-file manager: a
// thin state machine over the filesystem, backed by a database table so a
// file's logical state survives a process restart independent of whatever
// is or isn't actually on disk. Grounded on
// original_source/ASAP_2.7/FileManager.py's ASAPFile/ASAPFileManager.
package trackedfile

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/ridgeline/docxmit/internal/ports"
)

// ErrMarkedForDeletion is returned by MoveFile when the file to move is
// already marked for deletion.
var ErrMarkedForDeletion = errors.New("trackedfile: file is marked for deletion")

// IsMarkedForDeletion reports whether err is ErrMarkedForDeletion.
func IsMarkedForDeletion(err error) bool {
	return errors.Is(err, ErrMarkedForDeletion)
}

// State is a tracked file's lifecycle state (spec.md §4.3).
type State string

const (
	// StateLive is a file the manager knows about and that should exist
	// on disk; this is the implicit default state new files are added in.
	StateLive State = "LIVE"
	// StateNull is a file the manager no longer tracks; its row is a
	// candidate for PurgeNullFiles.
	StateNull State = "NULL_STATE"
	// StateMarkedForDeletion is a file queued for deletion: its disk copy
	// stays in place until DeleteFile removes it and moves the row to
	// NULL_STATE (mirrors the original's two-phase delete: mark first,
	// unlink on purge).
	StateMarkedForDeletion State = "MARKED_FOR_DELETION"
)

// File is one tracked file: a logical (contactPath, fileName) pair plus
// whatever state the manager last recorded for it.
type File struct {
	ID          int64
	ContactPath string
	FileName    string
	State       State
}

// FullPath joins root, the file's contact-relative path, and its name.
func (f File) FullPath(root string) string {
	if f.ContactPath == "" {
		return filepath.Join(root, f.FileName)
	}
	return filepath.Join(root, f.ContactPath, f.FileName)
}

// Manager tracks files for a single contact's document root.
type Manager struct {
	db        ports.DB
	fs        ports.Filesystem
	contactID string
	root      string
}

// NewManager returns a Manager scoped to one contact's document root.
func NewManager(db ports.DB, fs ports.Filesystem, contactID, root string) *Manager {
	return &Manager{db: db, fs: fs, contactID: contactID, root: root}
}

// NewFile builds a File reference for fileName under contactPath; it is
// not persisted until AddFile is called.
func (m *Manager) NewFile(contactPath, fileName string) File {
	return File{ContactPath: contactPath, FileName: fileName, State: StateLive}
}

// AddFile records a new tracked file and, if content is non-empty, stores
// it alongside the row so it can be rematerialized later (WriteFile).
func (m *Manager) AddFile(ctx context.Context, f File, content []byte) (File, error) {
	var encoded any
	if len(content) > 0 {
		encoded = base64.StdEncoding.EncodeToString(content)
	}
	id, err := m.insert(ctx, f, encoded)
	if err != nil {
		return File{}, fmt.Errorf("trackedfile: add %s/%s: %w", f.ContactPath, f.FileName, err)
	}
	f.ID = id
	f.State = StateLive
	return f, nil
}

func (m *Manager) insert(ctx context.Context, f File, content any) (int64, error) {
	_, err := m.db.Exec(ctx, `
		insert into asap_file_manager (contact_id, file_name, contact_path, state, file_content)
		values (?, ?, ?, ?, ?)`,
		m.contactID, f.FileName, nullableString(f.ContactPath), string(StateLive), content)
	if err != nil {
		return 0, err
	}
	row, err := m.db.QueryRow(ctx, `select id from asap_file_manager where contact_id = ? and file_name = ? order by id desc limit 1`, m.contactID, f.FileName)
	if err != nil {
		return 0, err
	}
	return toInt64(row["id"]), nil
}

// DeleteFile removes a tracked file's disk copy and sets its row to
// NULL_STATE; if removing the disk copy fails, the row is left as it was.
// If the file was never added, it is added first and then deleted the
// same way (mirroring the original's fallback when deleteFile is called
// on an unregistered file).
func (m *Manager) DeleteFile(ctx context.Context, f File) (File, error) {
	if f.ID == 0 {
		id, err := m.findMarkedForDeletionID(ctx, f)
		if err != nil {
			return File{}, err
		}
		f.ID = id
	}
	if f.ID == 0 {
		added, err := m.AddFile(ctx, f, nil)
		if err != nil {
			return File{}, err
		}
		f = added
	}
	fullPath := f.FullPath(m.root)
	if info, err := m.fs.Stat(fullPath); err == nil && !info.IsDir {
		if err := m.fs.Remove(fullPath); err != nil {
			return f, fmt.Errorf("trackedfile: removing %s: %w", fullPath, err)
		}
	}
	if err := m.setState(ctx, f.ID, StateNull); err != nil {
		return f, err
	}
	f.State = StateNull
	return f, nil
}

func (m *Manager) findMarkedForDeletionID(ctx context.Context, f File) (int64, error) {
	row, err := m.db.QueryRow(ctx, `
		select id from asap_file_manager
		where contact_id = ? and contact_path = ? and file_name = ? and state = ?`,
		m.contactID, nullableString(f.ContactPath), f.FileName, string(StateMarkedForDeletion))
	if err != nil {
		return 0, nil
	}
	return toInt64(row["id"]), nil
}

func (m *Manager) setState(ctx context.Context, id int64, state State) error {
	_, err := m.db.Exec(ctx, `update asap_file_manager set state = ? where id = ?`, string(state), id)
	return err
}

// MoveFile copies a tracked file to a new contact-relative path and
// deletes the source, returning the new tracked file.
func (m *Manager) MoveFile(ctx context.Context, f File, destContactPath, destFileName string) (File, error) {
	if f.State == StateMarkedForDeletion {
		return File{}, ErrMarkedForDeletion
	}
	dest := m.NewFile(destContactPath, destFileName)
	content, err := m.fs.ReadFile(f.FullPath(m.root))
	if err != nil {
		return File{}, fmt.Errorf("trackedfile: reading source for move: %w", err)
	}
	if err := m.fs.MkdirAll(filepath.Dir(dest.FullPath(m.root))); err != nil {
		return File{}, fmt.Errorf("trackedfile: preparing destination dir: %w", err)
	}
	if err := m.fs.WriteFile(dest.FullPath(m.root), content); err != nil {
		return File{}, fmt.Errorf("trackedfile: writing destination: %w", err)
	}
	dest, err = m.AddFile(ctx, dest, nil)
	if err != nil {
		return File{}, err
	}
	if _, err := m.DeleteFile(ctx, f); err != nil {
		return dest, fmt.Errorf("trackedfile: deleting move source: %w", err)
	}
	return dest, nil
}

// PurgeNullFiles removes every row in StateNull, discarding their stored
// content permanently.
func (m *Manager) PurgeNullFiles(ctx context.Context) error {
	_, err := m.db.Exec(ctx, `delete from asap_file_manager where contact_id = ? and state = ?`, m.contactID, string(StateNull))
	return err
}

// FilesByState returns every tracked file in the given state for this
// contact.
func (m *Manager) FilesByState(ctx context.Context, state State) ([]File, error) {
	rows, err := m.db.Query(ctx, `
		select id, file_name, contact_path from asap_file_manager
		where contact_id = ? and state = ?`, m.contactID, string(state))
	if err != nil {
		return nil, err
	}
	files := make([]File, 0, len(rows))
	for _, row := range rows {
		files = append(files, File{
			ID:          toInt64(row["id"]),
			FileName:    toString(row["file_name"]),
			ContactPath: toString(row["contact_path"]),
			State:       state,
		})
	}
	return files, nil
}

// Glob lists files on disk matching pattern that are not already marked
// for deletion, so a directory scan for new inbound files skips anything
// the manager is in the middle of removing.
func (m *Manager) Glob(ctx context.Context, pattern string) ([]File, error) {
	matches, err := m.fs.Glob(pattern)
	if err != nil {
		return nil, err
	}
	var files []File
	for _, fullPath := range matches {
		rel, err := filepath.Rel(m.root, fullPath)
		if err != nil {
			continue
		}
		dir, name := filepath.Split(rel)
		f := m.NewFile(filepath.Clean(dir), name)
		id, err := m.findMarkedForDeletionID(ctx, f)
		if err != nil {
			return nil, err
		}
		if id == 0 {
			files = append(files, f)
		}
	}
	return files, nil
}

// GetContent returns a tracked file's stored content, decoded from base64.
func (m *Manager) GetContent(ctx context.Context, f File) ([]byte, error) {
	row, err := m.db.QueryRow(ctx, `select file_content from asap_file_manager where id = ?`, f.ID)
	if err != nil {
		return nil, err
	}
	encoded := toString(row["file_content"])
	if encoded == "" {
		return nil, nil
	}
	return base64.StdEncoding.DecodeString(encoded)
}

// WriteFile rematerializes a tracked file's stored content to disk at its
// current location, a no-op if the file has no stored content or the
// destination directory doesn't exist.
func (m *Manager) WriteFile(ctx context.Context, f File) error {
	fullPath := f.FullPath(m.root)
	if _, err := m.fs.Stat(filepath.Dir(fullPath)); err != nil {
		return nil
	}
	content, err := m.GetContent(ctx, f)
	if err != nil || len(content) == 0 {
		return err
	}
	return m.fs.WriteFile(fullPath, content)
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func toInt64(v any) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	default:
		return 0
	}
}

func toString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case []byte:
		return string(s)
	default:
		return ""
	}
}
