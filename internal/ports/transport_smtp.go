package ports

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/smtp"

	"github.com/ridgeline/docxmit/internal/xmiterr"
)

// SMTPTransport delivers a staged bundle as an email attachment, for the
// small number of carrier contacts configured for mail pickup instead of a
// managed file transfer (spec.md §4.7, TransportConfig.Kind "email"). No
// ecosystem mail client appears anywhere in the retrieval pack, so this is
// built on net/smtp directly (see DESIGN.md standard-library
// justifications) rather than an unjustified third-party dependency.
type SMTPTransport struct {
	addr     string
	auth     smtp.Auth
	from, to string
}

// NewSMTPTransport builds a transport that sends one message per Send call
// to a single recipient.
func NewSMTPTransport(host string, port int, user, password, from, to string) *SMTPTransport {
	return &SMTPTransport{
		addr: fmt.Sprintf("%s:%d", host, port),
		auth: smtp.PlainAuth("", user, password, host),
		from: from,
		to:   to,
	}
}

func (t *SMTPTransport) Send(ctx context.Context, remotePath string, body io.Reader) error {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n", t.from, t.to, remotePath)
	if _, err := io.Copy(&buf, body); err != nil {
		return fmt.Errorf("ports: smtp message build: %w", err)
	}
	if err := smtp.SendMail(t.addr, t.auth, t.from, []string{t.to}, buf.Bytes()); err != nil {
		return xmiterr.New("SMTPTransport.Send", xmiterr.KindTransport, err)
	}
	return nil
}

func (t *SMTPTransport) Close() error { return nil }

var _ Transport = (*SMTPTransport)(nil)
