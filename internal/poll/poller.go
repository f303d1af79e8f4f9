// Package poll watches a campaign's delivery counters in the
// background. The queue drains server-side after a send, so the UI
// keeps its counters fresh without the operator hammering refresh.
package poll

import (
	"context"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/sendlite/internal/model"
)

// StatsAPI is the slice of the gateway client the poller needs.
type StatsAPI interface {
	CampaignStats(ctx context.Context, campaignID int) (model.CampaignStats, error)
}

// StatsResultMsg is a tea.Msg sent each time the watched campaign's
// counters are fetched.
type StatsResultMsg struct {
	CampaignID int
	Stats      model.CampaignStats
	Err        error
}

// fetchTimeout is the maximum time allowed for a single stats fetch.
const fetchTimeout = 10 * time.Second

// defaultInterval is how often counters are refreshed while watching.
const defaultInterval = 5 * time.Second

// Poller polls delivery counters for one campaign at a time. Watching a
// new campaign stops the previous watch.
type Poller struct {
	api      StatsAPI
	interval time.Duration
	resultCh chan StatsResultMsg

	mu         sync.Mutex
	campaignID int
	triggerCh  chan struct{}
	stopCh     chan struct{}
}

// New creates a poller. interval <= 0 selects the default.
func New(api StatsAPI, interval time.Duration) *Poller {
	if interval <= 0 {
		interval = defaultInterval
	}
	return &Poller{
		api:      api,
		interval: interval,
		resultCh: make(chan StatsResultMsg, 16),
	}
}

// Watch starts polling the given campaign and returns a tea.Cmd that
// waits for the first result. Any previous watch is stopped first.
func (p *Poller) Watch(campaignID int) tea.Cmd {
	p.mu.Lock()
	if p.stopCh != nil {
		close(p.stopCh)
	}
	stopCh := make(chan struct{})
	triggerCh := make(chan struct{}, 1)
	p.campaignID = campaignID
	p.stopCh = stopCh
	p.triggerCh = triggerCh
	p.mu.Unlock()

	go p.loop(campaignID, stopCh, triggerCh)

	return p.WaitForNextResult()
}

// Stop halts the current watch, if any. It is idempotent.
func (p *Poller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stopCh != nil {
		close(p.stopCh)
		p.stopCh = nil
		p.triggerCh = nil
		p.campaignID = 0
	}
}

// CampaignID reports the campaign currently being watched, zero when
// idle. Results tagged with any other id come from a replaced watch
// and should be dropped.
func (p *Poller) CampaignID() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.campaignID
}

// Refresh triggers an immediate fetch of the watched campaign.
func (p *Poller) Refresh() {
	p.mu.Lock()
	triggerCh := p.triggerCh
	p.mu.Unlock()

	if triggerCh == nil {
		return
	}
	select {
	case triggerCh <- struct{}{}:
	default:
		// A fetch is already queued.
	}
}

// loop runs the polling loop for one campaign.
func (p *Poller) loop(campaignID int, stopCh, triggerCh chan struct{}) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	// Initial fetch immediately, then on every tick or trigger.
	p.fetch(campaignID)

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			p.fetch(campaignID)
		case <-triggerCh:
			p.fetch(campaignID)
		}
	}
}

// fetch performs a single stats fetch and publishes the result.
func (p *Poller) fetch(campaignID int) {
	ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
	defer cancel()

	stats, err := p.api.CampaignStats(ctx, campaignID)

	msg := StatsResultMsg{CampaignID: campaignID, Stats: stats, Err: err}
	select {
	case p.resultCh <- msg:
	default:
		// Drop if the channel is full to avoid blocking the poller.
	}
}

// WaitForNextResult returns a tea.Cmd that waits for the next stats
// result. Call it again after processing each StatsResultMsg to keep
// listening.
func (p *Poller) WaitForNextResult() tea.Cmd {
	return func() tea.Msg {
		result, ok := <-p.resultCh
		if !ok {
			return nil
		}
		return result
	}
}
