// Package analysis summarizes how components behave over time, such as the
// average occupancy of device queues.
package analysis

import (
	"github.com/sarchlab/wlanbench/datarecording"
	"github.com/sarchlab/wlanbench/sim"
)

// PerfAnalyzerEntry is a single performance figure over a period.
type PerfAnalyzerEntry struct {
	StartTime sim.VTimeInSec
	EndTime   sim.VTimeInSec
	Location  string
	Metric    string
	EntryType string
	Value     float64
	Unit      string
}

// PerfLogger is the interface that provide the service that can record
// performance data entries.
type PerfLogger interface {
	AddDataEntry(entry PerfAnalyzerEntry)
}

const perfTableName = "perf"

// RecorderLogger writes performance entries into a data recorder.
type RecorderLogger struct {
	recorder datarecording.DataRecorder
}

// NewRecorderLogger creates the perf table and returns a logger that fills
// it.
func NewRecorderLogger(recorder datarecording.DataRecorder) *RecorderLogger {
	recorder.CreateTable(perfTableName, PerfAnalyzerEntry{})

	return &RecorderLogger{recorder: recorder}
}

// AddDataEntry inserts the entry.
func (l *RecorderLogger) AddDataEntry(entry PerfAnalyzerEntry) {
	l.recorder.InsertData(perfTableName, entry)
}
