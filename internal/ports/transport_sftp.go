package ports

import (
	"context"
	"fmt"
	"io"
	"path"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"

	"github.com/ridgeline/docxmit/internal/xmiterr"
)

// SFTPTransport delivers staged bundles over SFTP for carriers whose
// contract requires an encrypted transport channel rather than PGP payload
// encryption over plain FTP (spec.md §4.7, TransportConfig.Kind "sftp").
type SFTPTransport struct {
	sshConn *ssh.Client
	client  *sftp.Client
	baseDir string
}

// DialSFTP connects and authenticates to an SFTP server with a password.
// Host key verification is intentionally the caller's responsibility via
// hostKeyCallback, since each carrier pins its own known host key out of
// band rather than this module carrying a trust store.
func DialSFTP(ctx context.Context, host string, port int, user, password, baseDir string, hostKeyCallback ssh.HostKeyCallback) (*SFTPTransport, error) {
	cfg := &ssh.ClientConfig{
		User:            user,
		Auth:            []ssh.AuthMethod{ssh.Password(password)},
		HostKeyCallback: hostKeyCallback,
	}
	addr := fmt.Sprintf("%s:%d", host, port)
	sshConn, err := ssh.Dial("tcp", addr, cfg)
	if err != nil {
		return nil, xmiterr.New("ports.DialSFTP", xmiterr.KindTransient, fmt.Errorf("dial %s: %w", addr, err))
	}
	client, err := sftp.NewClient(sshConn)
	if err != nil {
		_ = sshConn.Close()
		return nil, xmiterr.New("ports.DialSFTP", xmiterr.KindTransport, fmt.Errorf("handshake: %w", err))
	}
	return &SFTPTransport{sshConn: sshConn, client: client, baseDir: baseDir}, nil
}

func (t *SFTPTransport) Send(ctx context.Context, remotePath string, body io.Reader) error {
	full := remotePath
	if t.baseDir != "" {
		full = path.Join(t.baseDir, remotePath)
	}
	f, err := t.client.Create(full)
	if err != nil {
		return xmiterr.New("SFTPTransport.Send", xmiterr.KindTransport, fmt.Errorf("create %s: %w", full, err))
	}
	defer f.Close()
	if _, err := io.Copy(f, body); err != nil {
		return xmiterr.New("SFTPTransport.Send", xmiterr.KindTransport, fmt.Errorf("write %s: %w", full, err))
	}
	return nil
}

func (t *SFTPTransport) Close() error {
	closeErr := t.client.Close()
	if err := t.sshConn.Close(); err != nil && closeErr == nil {
		closeErr = err
	}
	return closeErr
}

var _ Transport = (*SFTPTransport)(nil)
