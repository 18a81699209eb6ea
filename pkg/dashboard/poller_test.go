package dashboard

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/meridianclaims/payerkb/pkg/kb"
)

// fakeFetcher serves canned widgets and can be told to fail.
type fakeFetcher struct {
	payers []kb.Payer
	alerts []kb.Alert
	stats  *kb.Stats
	fail   bool

	gotUnreadOnly bool
	gotLimit      int
}

func (f *fakeFetcher) Payers(ctx context.Context) ([]kb.Payer, error) {
	if f.fail {
		return nil, errors.New("backend down")
	}
	return f.payers, nil
}

func (f *fakeFetcher) Alerts(ctx context.Context, unreadOnly bool, limit int) ([]kb.Alert, error) {
	f.gotUnreadOnly = unreadOnly
	f.gotLimit = limit
	if f.fail {
		return nil, errors.New("backend down")
	}
	return f.alerts, nil
}

func (f *fakeFetcher) Stats(ctx context.Context) (*kb.Stats, error) {
	if f.fail {
		return nil, errors.New("backend down")
	}
	return f.stats, nil
}

func testFetcher() *fakeFetcher {
	return &fakeFetcher{
		payers: []kb.Payer{{ID: 1, Name: "Aetna", TotalRules: 12}},
		alerts: []kb.Alert{{ID: 1, Title: "filing window changed", Severity: "critical"}},
		stats:  &kb.Stats{TotalPayers: 1, TotalRules: 12},
	}
}

func TestRefreshReplacesSnapshotWholesale(t *testing.T) {
	fetcher := testFetcher()
	p := NewPoller(fetcher, Config{}, zap.NewNop())

	p.refresh(context.Background())

	snap := p.Latest()
	require.NotNil(t, snap.Stats)
	assert.Equal(t, 1, snap.Stats.TotalPayers)
	assert.Len(t, snap.Payers, 1)
	assert.Len(t, snap.Alerts, 1)
	assert.False(t, snap.Taken.IsZero())

	// Second round replaces everything, including widgets that shrank.
	fetcher.payers = nil
	fetcher.alerts = []kb.Alert{{ID: 2, Title: "new"}, {ID: 3, Title: "newer"}}
	p.refresh(context.Background())

	snap = p.Latest()
	assert.Empty(t, snap.Payers)
	assert.Len(t, snap.Alerts, 2)
}

func TestRefreshFailureKeepsPreviousSnapshot(t *testing.T) {
	fetcher := testFetcher()
	p := NewPoller(fetcher, Config{}, zap.NewNop())

	p.refresh(context.Background())
	before := p.Latest()

	fetcher.fail = true
	p.refresh(context.Background())

	after := p.Latest()
	assert.Equal(t, before.Taken, after.Taken, "failed refresh must not publish")
	require.NotNil(t, after.Stats)
	assert.Equal(t, 1, after.Stats.TotalPayers)
}

func TestRefreshPassesAlertConfig(t *testing.T) {
	fetcher := testFetcher()
	p := NewPoller(fetcher, Config{UnreadOnly: true, AlertLimit: 3}, zap.NewNop())

	p.refresh(context.Background())

	assert.True(t, fetcher.gotUnreadOnly)
	assert.Equal(t, 3, fetcher.gotLimit)
}

func TestUpdatesKeepsOnlyNewestSnapshot(t *testing.T) {
	fetcher := testFetcher()
	p := NewPoller(fetcher, Config{}, zap.NewNop())

	p.refresh(context.Background())
	fetcher.stats = &kb.Stats{TotalPayers: 99}
	p.refresh(context.Background())

	select {
	case snap := <-p.Updates():
		assert.Equal(t, 99, snap.Stats.TotalPayers)
	default:
		t.Fatal("expected a snapshot on the updates channel")
	}

	select {
	case <-p.Updates():
		t.Fatal("only the newest snapshot should be buffered")
	default:
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	fetcher := testFetcher()
	p := NewPoller(fetcher, Config{Interval: 5 * time.Millisecond}, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		p.Run(ctx)
		close(done)
	}()

	// The initial refresh publishes immediately.
	select {
	case <-p.Updates():
	case <-time.After(time.Second):
		t.Fatal("no initial snapshot")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("poller did not stop on cancel")
	}
}
