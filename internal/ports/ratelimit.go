package ports

import (
	"context"
	"io"

	"golang.org/x/time/rate"
)

// RateLimitedTransport wraps a Transport with a per-contact send rate,
// per contact.Transport.RateHz (spec.md §6). A carrier whose FTP host
// throttles or bans bursty connections configures RateHz; zero disables
// limiting entirely.
type RateLimitedTransport struct {
	next    Transport
	limiter *rate.Limiter
}

// NewRateLimitedTransport wraps next with a limiter allowing hz sends per
// second, bursting up to one. hz <= 0 disables limiting (next is returned
// unwrapped to avoid paying for an unused limiter on the hot path).
func NewRateLimitedTransport(next Transport, hz float64) Transport {
	if hz <= 0 {
		return next
	}
	return &RateLimitedTransport{next: next, limiter: rate.NewLimiter(rate.Limit(hz), 1)}
}

func (t *RateLimitedTransport) Send(ctx context.Context, remotePath string, body io.Reader) error {
	if err := t.limiter.Wait(ctx); err != nil {
		return err
	}
	return t.next.Send(ctx, remotePath, body)
}

func (t *RateLimitedTransport) Close() error {
	return t.next.Close()
}
