package trackedfile

import (
	"context"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ridgeline/docxmit/internal/ports"
)

// PickupEvent reports a new file dropped in a watched pickup directory.
type PickupEvent struct {
	FullPath string
}

// WatchPickupDir streams create events in dir until ctx is cancelled,
// reconnecting the underlying watcher with backoff if it errors out from
// under the caller (NFS remounts, the watched directory being recreated).
// Grounded on steveyegge-beads' internal/coop.Watcher.Watch reconnect
// loop, swapped from a WebSocket source to fsnotify.
func WatchPickupDir(ctx context.Context, dir string, log ports.Logger) (<-chan PickupEvent, error) {
	ch := make(chan PickupEvent, 64)

	go func() {
		defer close(ch)

		backoff := time.Second
		maxBackoff := 30 * time.Second

		for {
			select {
			case <-ctx.Done():
				return
			default:
			}

			if err := watchOnce(ctx, dir, ch); err != nil {
				log.Warn("pickup dir watch failed, reconnecting", "dir", dir, "error", err)
			}
			if ctx.Err() != nil {
				return
			}

			select {
			case <-ctx.Done():
				return
			case <-time.After(backoff):
				backoff *= 2
				if backoff > maxBackoff {
					backoff = maxBackoff
				}
			}
		}
	}()

	return ch, nil
}

func watchOnce(ctx context.Context, dir string, ch chan<- PickupEvent) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Create|fsnotify.Rename) != 0 {
				select {
				case ch <- PickupEvent{FullPath: event.Name}:
				case <-ctx.Done():
					return nil
				}
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return err
		}
	}
}
