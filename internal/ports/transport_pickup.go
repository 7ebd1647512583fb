package ports

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	atomicfile "github.com/natefinch/atomic"

	"github.com/ridgeline/docxmit/internal/xmiterr"
)

// PickupTransport delivers staged bundles by writing them atomically into
// a local directory a carrier's own process polls, for the contacts that
// never asked for FTP/SFTP/email at all (TransportConfig.Kind "pickup").
// Grounded on OSFilesystem.WriteFile / FileManager.py's write-then-rename
// guarantee, reused here instead of a network round trip.
type PickupTransport struct {
	baseDir string
}

// NewPickupTransport returns a PickupTransport rooted at baseDir, creating
// it if it does not already exist.
func NewPickupTransport(baseDir string) (*PickupTransport, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("ports: creating pickup dir %s: %w", baseDir, err)
	}
	return &PickupTransport{baseDir: baseDir}, nil
}

func (t *PickupTransport) Send(ctx context.Context, remotePath string, body io.Reader) error {
	dest := filepath.Join(t.baseDir, remotePath)
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("ports: creating pickup subdir for %s: %w", dest, err)
	}
	if err := atomicfile.WriteFile(dest, body); err != nil {
		return xmiterr.New("PickupTransport.Send", xmiterr.KindTransport, fmt.Errorf("writing %s: %w", dest, err))
	}
	return nil
}

func (t *PickupTransport) Close() error { return nil }
