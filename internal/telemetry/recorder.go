package telemetry

import (
	"strings"
	"sync"
)

// Report is a single call made against a Recorder.
type Report struct {
	Level  string
	ID     string
	Params []any
}

// Recorder is an API that keeps every report in memory so tests can assert on them.
// Reports are also forwarded to Inner if it is set.
type Recorder struct {
	Inner API

	mutex   sync.Mutex
	reports []Report
}

func (r *Recorder) add(level, id string, params []any) {
	r.mutex.Lock()
	r.reports = append(r.reports, Report{Level: level, ID: id, Params: params})
	r.mutex.Unlock()
}

func (r *Recorder) ReportBroken(id string, params ...any) {
	r.add("broken", id, params)
	if r.Inner != nil {
		r.Inner.ReportBroken(id, params...)
	}
}

func (r *Recorder) ReportWarning(id string, params ...any) {
	r.add("warning", id, params)
	if r.Inner != nil {
		r.Inner.ReportWarning(id, params...)
	}
}

func (r *Recorder) ReportDebug(msg string, params ...any) {
	if r.Inner != nil {
		r.Inner.ReportDebug(msg, params...)
	}
}

func (r *Recorder) ReportCount(id string, count int64) {
	if r.Inner != nil {
		r.Inner.ReportCount(id, count)
	}
}

// Reports returns a copy of the recorded broken/warning reports.
func (r *Recorder) Reports() []Report {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	out := make([]Report, len(r.reports))
	copy(out, r.reports)
	return out
}

// Count returns how many reports have an id ending with the given suffix,
// scoped ids look like `ingest:ingest.missing-id` so suffix matching is what tests usually want.
func (r *Recorder) Count(idSuffix string) int {
	n := 0
	for _, rep := range r.Reports() {
		if strings.HasSuffix(rep.ID, idSuffix) {
			n++
		}
	}
	return n
}
