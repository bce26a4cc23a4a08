package leaderboard

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Dosada05/fest-portal/models"
)

// ResultSource reads every result joined with its team.
type ResultSource interface {
	ListForStandings(ctx context.Context) ([]models.Result, error)
}

// Subscriber opens a new change feed subscription.
type Subscriber func(ctx context.Context) (ChangeFeed, error)

type State int

const (
	StateUnsubscribed State = iota
	StateSubscribed
)

func (s State) String() string {
	if s == StateSubscribed {
		return "subscribed"
	}
	return "unsubscribed"
}

const (
	defaultResubscribeMin = time.Second
	defaultResubscribeMax = 30 * time.Second
)

type RefresherConfig struct {
	Source   ResultSource
	Logger   *slog.Logger
	OnUpdate func(models.StandingsSnapshot)

	ResubscribeMin time.Duration
	ResubscribeMax time.Duration
}

// Refresher keeps the last computed standings and recomputes them from the full
// result set whenever the change feed fires.
type Refresher struct {
	source   ResultSource
	logger   *slog.Logger
	onUpdate func(models.StandingsSnapshot)
	now      func() time.Time
	after    func(time.Duration) <-chan time.Time

	resubscribeMin time.Duration
	resubscribeMax time.Duration

	refreshMu sync.Mutex // one fetch+compute at a time

	mu       sync.RWMutex
	snapshot *models.StandingsSnapshot
	state    State
}

func NewRefresher(cfg RefresherConfig) *Refresher {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	r := &Refresher{
		source:         cfg.Source,
		logger:         logger.With(slog.String("component", "standings_refresher")),
		onUpdate:       cfg.OnUpdate,
		now:            time.Now,
		after:          time.After,
		resubscribeMin: cfg.ResubscribeMin,
		resubscribeMax: cfg.ResubscribeMax,
	}
	if r.resubscribeMin <= 0 {
		r.resubscribeMin = defaultResubscribeMin
	}
	if r.resubscribeMax < r.resubscribeMin {
		r.resubscribeMax = defaultResubscribeMax
		if r.resubscribeMax < r.resubscribeMin {
			r.resubscribeMax = r.resubscribeMin
		}
	}
	return r
}

// Current returns the last successfully computed snapshot.
func (r *Refresher) Current() (models.StandingsSnapshot, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.snapshot == nil {
		return models.StandingsSnapshot{}, false
	}
	return *r.snapshot, true
}

func (r *Refresher) State() State {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state
}

func (r *Refresher) setState(s State) {
	r.mu.Lock()
	r.state = s
	r.mu.Unlock()
}

// Refresh re-reads all results and replaces the snapshot. On a fetch error the
// previous snapshot stays in place and the error wraps ErrDataFetch.
func (r *Refresher) Refresh(ctx context.Context) (models.StandingsSnapshot, error) {
	r.refreshMu.Lock()
	defer r.refreshMu.Unlock()

	results, err := r.source.ListForStandings(ctx)
	if err != nil {
		return models.StandingsSnapshot{}, fmt.Errorf("%w: %w", ErrDataFetch, err)
	}

	standings, integrityErr := ComputeStandings(results)
	skipped := IntegrityErrors(integrityErr)
	for _, ie := range skipped {
		r.logger.Warn("result skipped in standings",
			slog.Int("result_id", ie.ResultID),
			slog.Int("team_id", ie.TeamID),
			slog.String("reason", ie.Reason),
		)
	}

	if err := ctx.Err(); err != nil {
		return models.StandingsSnapshot{}, err
	}

	snap := models.StandingsSnapshot{
		Standings:  standings,
		ComputedAt: r.now().UTC(),
		Skipped:    len(skipped),
	}

	r.mu.Lock()
	r.snapshot = &snap
	r.mu.Unlock()

	if r.onUpdate != nil {
		r.onUpdate(snap)
	}
	return snap, nil
}

// Run consumes one subscription until ctx is cancelled or the feed closes.
// The feed is closed on return.
func (r *Refresher) Run(ctx context.Context, feed ChangeFeed) error {
	_, err := r.run(ctx, feed)
	return err
}

// run also reports whether the feed delivered at least one notification.
func (r *Refresher) run(ctx context.Context, feed ChangeFeed) (delivered bool, err error) {
	r.setState(StateSubscribed)
	defer func() {
		if err := feed.Close(); err != nil {
			r.logger.Error("failed to close change feed", slog.Any("error", err))
		}
		r.setState(StateUnsubscribed)
	}()

	r.refreshLogged(ctx, "initial")

	notifications := feed.Notifications()
	for {
		select {
		case <-ctx.Done():
			return delivered, nil
		case change, ok := <-notifications:
			if !ok {
				return delivered, ErrFeedClosed
			}
			delivered = true
			r.logger.Debug("results changed",
				slog.String("op", change.Op),
				slog.Int("result_id", change.ResultID),
				slog.Bool("reconnected", change.Reconnected),
			)
			if !drain(notifications) {
				r.refreshLogged(ctx, "change")
				return delivered, ErrFeedClosed
			}
			r.refreshLogged(ctx, "change")
		}
	}
}

// Watch keeps a subscription open until ctx is cancelled, re-subscribing with
// exponential backoff whenever the feed cannot be opened or drops. The backoff
// resets only after a healthy subscription: one that delivered a notification
// or stayed up for at least ResubscribeMax.
func (r *Refresher) Watch(ctx context.Context, subscribe Subscriber) {
	backoff := r.resubscribeMin
	for {
		feed, err := subscribe(ctx)
		if err != nil {
			r.logger.Error("change feed subscription failed", slog.Any("error", err), slog.Duration("retry_in", backoff))
		} else {
			started := r.now()
			delivered, runErr := r.run(ctx, feed)
			if ctx.Err() != nil {
				return
			}
			if delivered || r.now().Sub(started) >= r.resubscribeMax {
				backoff = r.resubscribeMin
			}
			r.logger.Warn("change feed dropped", slog.Any("error", runErr), slog.Duration("retry_in", backoff))
		}

		select {
		case <-ctx.Done():
			return
		case <-r.after(backoff):
		}
		backoff *= 2
		if backoff > r.resubscribeMax {
			backoff = r.resubscribeMax
		}
	}
}

func (r *Refresher) refreshLogged(ctx context.Context, trigger string) {
	snap, err := r.Refresh(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		r.logger.Error("standings refresh failed, keeping previous standings",
			slog.String("trigger", trigger), slog.Any("error", err))
		return
	}
	r.logger.Info("standings recomputed",
		slog.String("trigger", trigger),
		slog.Int("teams", len(snap.Standings)),
		slog.Int("skipped", snap.Skipped),
	)
}

// drain discards queued notifications so a burst costs one refresh.
// It reports false if the channel was closed.
func drain(ch <-chan Change) bool {
	for {
		select {
		case _, ok := <-ch:
			if !ok {
				return false
			}
		default:
			return true
		}
	}
}
