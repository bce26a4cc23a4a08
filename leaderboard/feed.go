package leaderboard

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/lib/pq"
)

// ResultsChannel is the NOTIFY channel the results trigger publishes to.
const ResultsChannel = "results_changes"

const feedPingInterval = 90 * time.Second

var ErrFeedClosed = errors.New("change feed closed")

// Change is a hint that the results table changed. Consumers must re-read the
// table rather than apply it: delivery is at-least-once and unordered.
type Change struct {
	Op       string `json:"op"`
	ResultID int    `json:"id"`
	// Reconnected is set after the feed lost and re-established its connection;
	// changes in between may have been missed.
	Reconnected bool `json:"-"`
}

type ChangeFeed interface {
	Notifications() <-chan Change
	Close() error
}

// PQFeed listens on ResultsChannel through a lib/pq Listener. The listener
// reconnects on its own, doubling the wait between attempts from
// minReconnect up to maxReconnect.
type PQFeed struct {
	listener  *pq.Listener
	out       chan Change
	done      chan struct{}
	closeOnce sync.Once
	logger    *slog.Logger
}

func NewPQFeed(dsn string, minReconnect, maxReconnect time.Duration, logger *slog.Logger) (*PQFeed, error) {
	f := &PQFeed{
		out:    make(chan Change, 1),
		done:   make(chan struct{}),
		logger: logger.With(slog.String("component", "change_feed")),
	}
	f.listener = pq.NewListener(dsn, minReconnect, maxReconnect, f.onListenerEvent)

	if err := f.listener.Listen(ResultsChannel); err != nil {
		if closeErr := f.listener.Close(); closeErr != nil {
			f.logger.Error("failed to close listener after listen error", slog.Any("error", closeErr))
		}
		return nil, fmt.Errorf("failed to listen on %s: %w", ResultsChannel, err)
	}

	go f.pump()
	return f, nil
}

func (f *PQFeed) Notifications() <-chan Change {
	return f.out
}

func (f *PQFeed) Close() error {
	var err error
	f.closeOnce.Do(func() {
		close(f.done)
		err = f.listener.Close()
	})
	return err
}

func (f *PQFeed) onListenerEvent(ev pq.ListenerEventType, err error) {
	switch ev {
	case pq.ListenerEventConnected:
		f.logger.Info("change feed connected")
	case pq.ListenerEventDisconnected:
		f.logger.Warn("change feed disconnected", slog.Any("error", err))
	case pq.ListenerEventReconnected:
		f.logger.Info("change feed reconnected")
	case pq.ListenerEventConnectionAttemptFailed:
		f.logger.Warn("change feed connection attempt failed", slog.Any("error", err))
	}
}

func (f *PQFeed) pump() {
	defer close(f.out)

	ticker := time.NewTicker(feedPingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-f.done:
			return
		case n, ok := <-f.listener.Notify:
			if !ok {
				return
			}
			f.emit(parseNotification(n, f.logger))
		case <-ticker.C:
			go func() {
				if err := f.listener.Ping(); err != nil {
					f.logger.Debug("change feed ping failed", slog.Any("error", err))
				}
			}()
		}
	}
}

// emit never blocks: a signal already waiting in the buffer covers this one.
func (f *PQFeed) emit(c Change) {
	select {
	case f.out <- c:
	default:
	}
}

func parseNotification(n *pq.Notification, logger *slog.Logger) Change {
	if n == nil {
		return Change{Reconnected: true}
	}
	var c Change
	if err := json.Unmarshal([]byte(n.Extra), &c); err != nil {
		logger.Debug("unparseable change payload", slog.String("payload", n.Extra), slog.Any("error", err))
	}
	return c
}
