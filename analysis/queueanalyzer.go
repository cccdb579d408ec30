package analysis

import (
	"github.com/sarchlab/wlanbench/sim"
)

// QueueAnalyzer is a buffer hook that records the time-weighted average
// level of a buffer. With a period, one entry is written per period.
// Periods in which the buffer stays empty are not written.
type QueueAnalyzer struct {
	logger     PerfLogger
	timeTeller sim.TimeTeller
	buf        sim.Buffer
	period     sim.VTimeInSec

	periodStart sim.VTimeInSec
	lastTime    sim.VTimeInSec
	lastLevel   int
	levelTime   float64
	duration    float64
}

// Func is a function that records buffer level change.
func (a *QueueAnalyzer) Func(ctx sim.HookCtx) {
	if ctx.Pos != sim.HookPosBufPush && ctx.Pos != sim.HookPosBufPop {
		return
	}

	a.advance(a.timeTeller.CurrentTime())
	a.lastLevel = a.buf.Size()
}

// Summarize writes the entry of the last, possibly partial, period.
func (a *QueueAnalyzer) Summarize() {
	a.advance(a.timeTeller.CurrentTime())
	a.report(a.periodStart, a.lastTime)
	a.periodStart = a.lastTime
}

func (a *QueueAnalyzer) advance(now sim.VTimeInSec) {
	if a.period > 0 {
		for end := a.periodStart + a.period; now >= end; end += a.period {
			a.accumulate(end)
			a.report(a.periodStart, end)
			a.periodStart = end
		}
	}

	a.accumulate(now)
}

func (a *QueueAnalyzer) accumulate(t sim.VTimeInSec) {
	if t <= a.lastTime {
		return
	}

	d := float64(t - a.lastTime)
	a.levelTime += float64(a.lastLevel) * d
	a.duration += d
	a.lastTime = t
}

func (a *QueueAnalyzer) report(start, end sim.VTimeInSec) {
	defer func() {
		a.levelTime = 0
		a.duration = 0
	}()

	if a.duration == 0 || a.levelTime == 0 {
		return
	}

	a.logger.AddDataEntry(PerfAnalyzerEntry{
		StartTime: start,
		EndTime:   end,
		Location:  a.buf.Name(),
		Metric:    "Level",
		EntryType: "Buffer",
		Value:     a.levelTime / a.duration,
	})
}

// QueueAnalyzerBuilder can build a QueueAnalyzer.
type QueueAnalyzerBuilder struct {
	logger     PerfLogger
	timeTeller sim.TimeTeller
	period     sim.VTimeInSec
	buffer     sim.Buffer
}

// MakeQueueAnalyzerBuilder creates a QueueAnalyzerBuilder.
func MakeQueueAnalyzerBuilder() QueueAnalyzerBuilder {
	return QueueAnalyzerBuilder{}
}

// WithPerfLogger sets the PerfLogger to use.
func (b QueueAnalyzerBuilder) WithPerfLogger(
	logger PerfLogger,
) QueueAnalyzerBuilder {
	b.logger = logger
	return b
}

// WithTimeTeller sets the TimeTeller to use.
func (b QueueAnalyzerBuilder) WithTimeTeller(
	timeTeller sim.TimeTeller,
) QueueAnalyzerBuilder {
	b.timeTeller = timeTeller
	return b
}

// WithPeriod sets the length of the periods. Zero reports a single entry.
func (b QueueAnalyzerBuilder) WithPeriod(
	period sim.VTimeInSec,
) QueueAnalyzerBuilder {
	b.period = period
	return b
}

// WithBuffer sets the buffer to use.
func (b QueueAnalyzerBuilder) WithBuffer(
	buffer sim.Buffer,
) QueueAnalyzerBuilder {
	b.buffer = buffer
	return b
}

// Build creates a QueueAnalyzer and hooks it to the buffer.
func (b QueueAnalyzerBuilder) Build() *QueueAnalyzer {
	if b.logger == nil {
		panic("perfLogger is not set")
	}

	if b.timeTeller == nil {
		panic("timeTeller is not set")
	}

	if b.buffer == nil {
		panic("buffer is not set")
	}

	a := &QueueAnalyzer{
		logger:     b.logger,
		timeTeller: b.timeTeller,
		buf:        b.buffer,
		period:     b.period,
		lastLevel:  b.buffer.Size(),
	}

	b.buffer.AcceptHook(a)

	return a
}
