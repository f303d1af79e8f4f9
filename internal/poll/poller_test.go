package poll

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/sendlite/internal/model"
)

type fakeStatsAPI struct {
	calls atomic.Int64
	err   error
}

func (f *fakeStatsAPI) CampaignStats(_ context.Context, campaignID int) (model.CampaignStats, error) {
	n := f.calls.Add(1)
	if f.err != nil {
		return model.CampaignStats{}, f.err
	}
	return model.CampaignStats{Queued: 10 - int(n), Sent: int(n)}, nil
}

// nextResult runs the wait command and asserts a stats result came back.
func nextResult(t *testing.T, p *Poller) StatsResultMsg {
	t.Helper()
	msg := p.WaitForNextResult()()
	res, ok := msg.(StatsResultMsg)
	require.True(t, ok, "expected StatsResultMsg, got %T", msg)
	return res
}

func TestWatchDeliversResults(t *testing.T) {
	api := &fakeStatsAPI{}
	p := New(api, time.Hour)
	defer p.Stop()

	p.Watch(7)

	res := nextResult(t, p)
	require.NoError(t, res.Err)
	assert.Equal(t, 7, res.CampaignID)
	assert.Equal(t, 1, res.Stats.Sent)

	// A manual refresh produces the next fetch without waiting a tick.
	p.Refresh()
	res = nextResult(t, p)
	require.NoError(t, res.Err)
	assert.Equal(t, 2, res.Stats.Sent)
}

func TestWatchReportsFetchErrors(t *testing.T) {
	api := &fakeStatsAPI{err: errors.New("service down")}
	p := New(api, time.Hour)
	defer p.Stop()

	p.Watch(3)

	res := nextResult(t, p)
	require.Error(t, res.Err)
	assert.Equal(t, 3, res.CampaignID)
}

func TestWatchReplacesPreviousWatch(t *testing.T) {
	api := &fakeStatsAPI{}
	p := New(api, time.Hour)
	defer p.Stop()

	p.Watch(1)
	nextResult(t, p)

	p.Watch(2)
	assert.Equal(t, 2, p.CampaignID())

	// Drain until the new campaign's results arrive; the old goroutine
	// may have one last result in flight, and any such stragglers are
	// identifiable by their stale campaign id.
	deadline := time.After(2 * time.Second)
	for {
		select {
		case <-deadline:
			t.Fatal("never saw results for the new campaign")
		default:
		}
		res := nextResult(t, p)
		if res.CampaignID == 2 {
			return
		}
		assert.NotEqual(t, p.CampaignID(), res.CampaignID)
	}
}

func TestStopIsIdempotent(t *testing.T) {
	p := New(&fakeStatsAPI{}, time.Hour)
	p.Watch(1)
	nextResult(t, p)

	p.Stop()
	p.Stop()
	assert.Zero(t, p.CampaignID())

	// Refresh after stop is a no-op rather than a panic.
	p.Refresh()
}
