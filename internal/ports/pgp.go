package ports

import (
	"context"
	"fmt"
	"io"

	"github.com/ProtonMail/go-crypto/openpgp"
	"github.com/ProtonMail/go-crypto/openpgp/packet"
)

// PGPEncryptor encrypts a staged bundle to a carrier's public key before it
// is handed to a Transport, for contacts whose TransportConfig.PGP is set
// (spec.md §4.7).
type PGPEncryptor struct {
	recipient *openpgp.Entity
}

// NewPGPEncryptor loads an armored public key block as the sole recipient.
func NewPGPEncryptor(armoredPublicKey io.Reader) (*PGPEncryptor, error) {
	entityList, err := openpgp.ReadArmoredKeyRing(armoredPublicKey)
	if err != nil {
		return nil, fmt.Errorf("ports: reading pgp public key: %w", err)
	}
	if len(entityList) == 0 {
		return nil, fmt.Errorf("ports: pgp key ring is empty")
	}
	return &PGPEncryptor{recipient: entityList[0]}, nil
}

func (e *PGPEncryptor) Encrypt(ctx context.Context, plaintext io.Reader) (io.Reader, error) {
	pr, pw := io.Pipe()
	go func() {
		wc, err := openpgp.Encrypt(pw, []*openpgp.Entity{e.recipient}, nil, nil, &packet.Config{})
		if err != nil {
			pw.CloseWithError(fmt.Errorf("ports: pgp encrypt init: %w", err))
			return
		}
		if _, err := io.Copy(wc, plaintext); err != nil {
			pw.CloseWithError(fmt.Errorf("ports: pgp encrypt copy: %w", err))
			return
		}
		if err := wc.Close(); err != nil {
			pw.CloseWithError(fmt.Errorf("ports: pgp encrypt finalize: %w", err))
			return
		}
		pw.Close()
	}()
	return pr, nil
}

var _ Encryptor = (*PGPEncryptor)(nil)
