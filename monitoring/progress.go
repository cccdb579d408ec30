package monitoring

import (
	"sync"
	"time"

	"github.com/sarchlab/wlanbench/sim"
)

// A ProgressBar is a tracker of the progress
type ProgressBar struct {
	sync.Mutex
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	StartTime time.Time `json:"start_time"`
	Total     uint64    `json:"total"`
	Finished  uint64    `json:"finished"`
}

// SetFinished sets the finished amount, capped at the total.
func (b *ProgressBar) SetFinished(amount uint64) {
	b.Lock()
	defer b.Unlock()

	if amount > b.Total {
		amount = b.Total
	}

	b.Finished = amount
}

// SimTimeProgress is an engine hook that moves a bar along with the
// simulated time. The bar counts milliseconds. When registered as a
// simulation end handler, it completes the bar.
type SimTimeProgress struct {
	monitor *Monitor
	bar     *ProgressBar
}

// NewSimTimeProgress creates a bar that finishes at the stop time and a hook
// that updates it.
func (m *Monitor) NewSimTimeProgress(
	name string,
	stop sim.VTimeInSec,
) *SimTimeProgress {
	return &SimTimeProgress{
		monitor: m,
		bar:     m.CreateProgressBar(name, uint64(stop*1000)),
	}
}

// Bar returns the progress bar.
func (p *SimTimeProgress) Bar() *ProgressBar {
	return p.bar
}

// Func updates the bar after each event.
func (p *SimTimeProgress) Func(ctx sim.HookCtx) {
	if ctx.Pos != sim.HookPosAfterEvent {
		return
	}

	evt, ok := ctx.Item.(sim.Event)
	if !ok {
		return
	}

	p.bar.SetFinished(uint64(evt.Time() * 1000))
}

// Handle fills the bar and removes it from the page.
func (p *SimTimeProgress) Handle(_ sim.VTimeInSec) {
	p.bar.SetFinished(p.bar.Total)
	p.monitor.CompleteProgressBar(p.bar)
}
