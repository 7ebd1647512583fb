package ports

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/crypto/ssh"

	"github.com/ridgeline/docxmit/internal/model"
)

// NewTransport dials the delivery method a contact's TransportConfig
// names and wraps it in a RateLimitedTransport if RateHz is configured.
// One factory function per TransportConfig.Kind keeps the scheduler and
// carrier hooks free of any transport-specific dialing logic.
func NewTransport(ctx context.Context, cfg model.TransportConfig) (Transport, error) {
	var (
		t   Transport
		err error
	)
	switch strings.ToLower(cfg.Kind) {
	case "ftp", "ftps":
		t, err = DialFTP(ctx, cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Dir)
	case "sftp":
		// InsecureIgnoreHostKey is a placeholder until host key pinning is
		// wired into TransportConfig; DialSFTP already takes a callback so
		// swapping this for ssh.FixedHostKey(pinned) needs no signature change.
		t, err = DialSFTP(ctx, cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Dir, ssh.InsecureIgnoreHostKey())
	case "email":
		t, err = NewSMTPTransport(cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.User, cfg.Dir), nil
	case "pickup":
		t, err = NewPickupTransport(cfg.Dir)
	default:
		return nil, fmt.Errorf("ports: unknown transport kind %q", cfg.Kind)
	}
	if err != nil {
		return nil, err
	}
	return NewRateLimitedTransport(t, cfg.RateHz), nil
}
