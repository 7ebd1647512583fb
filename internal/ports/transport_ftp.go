package ports

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/jlaffaye/ftp"

	"github.com/ridgeline/docxmit/internal/xmiterr"
)

// FTPTransport delivers staged bundles over plain FTP, the delivery
// method most carrier contacts in practice still require (spec.md §4.7,
// TransportConfig.Kind "ftp"). DialFTP negotiates no TLS, so a contact of
// kind "ftps" is also served over plain FTP.
type FTPTransport struct {
	conn    *ftp.ServerConn
	baseDir string
}

// DialFTP connects and authenticates to an FTP server.
func DialFTP(ctx context.Context, host string, port int, user, password, baseDir string) (*FTPTransport, error) {
	addr := fmt.Sprintf("%s:%d", host, port)
	conn, err := ftp.Dial(addr, ftp.DialWithContext(ctx), ftp.DialWithTimeout(30*time.Second))
	if err != nil {
		return nil, xmiterr.New("ports.DialFTP", xmiterr.KindTransient, fmt.Errorf("dial %s: %w", addr, err))
	}
	if err := conn.Login(user, password); err != nil {
		_ = conn.Quit()
		return nil, xmiterr.New("ports.DialFTP", xmiterr.KindConfig, fmt.Errorf("login: %w", err))
	}
	return &FTPTransport{conn: conn, baseDir: baseDir}, nil
}

func (t *FTPTransport) Send(ctx context.Context, remotePath string, body io.Reader) error {
	full := remotePath
	if t.baseDir != "" {
		full = t.baseDir + "/" + remotePath
	}
	if err := t.conn.Stor(full, body); err != nil {
		return xmiterr.New("FTPTransport.Send", xmiterr.KindTransport, fmt.Errorf("stor %s: %w", full, err))
	}
	return nil
}

func (t *FTPTransport) Close() error {
	return t.conn.Quit()
}

var _ Transport = (*FTPTransport)(nil)
