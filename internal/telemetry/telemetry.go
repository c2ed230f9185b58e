// Package telemetry is how the rest of the module logs and counts things. Components take an API
// instead of calling slog directly so tests can assert on what was reported.
package telemetry

import (
	"fmt"
)

// API receives reports from components.
//
// Ids name the component that reported, like `db.query` or `ingest.missing-id`, they stay stable so
// dashboards and tests can match on them. Lowercase, dots separate components, dashes separate a
// method from its component. Details go into params, either as KV or as an error.
type API interface {
	// ReportBroken is for failures someone has to look at, a query that errored or a webhook that
	// could not be reached.
	ReportBroken(id string, params ...any)
	// ReportWarning is for data that was rejected or skipped, upstream payloads that do not look the
	// way they should end up here.
	ReportWarning(id string, params ...any)
	// ReportDebug is dropped unless verbose logging is on.
	ReportDebug(msg string, params ...any)
	// ReportCount records a point in time value, successive counts are not meant to be summed.
	ReportCount(id string, count int64)
}

// KV is a named param.
type KV struct {
	Key   string
	Value any
}

// ScopedAPI prefixes every id and message with a namespace.
type ScopedAPI struct {
	namespace string
	inner     API
}

func NewScopedAPI(namespace string, inner API) ScopedAPI {
	return ScopedAPI{namespace: namespace, inner: inner}
}

// Scope nests another namespace below this one.
func (s ScopedAPI) Scope(namespace string) ScopedAPI {
	return NewScopedAPI(s.id(namespace), s.inner)
}

func (s ScopedAPI) id(id string) string {
	return fmt.Sprintf("%s:%s", s.namespace, id)
}

func (s ScopedAPI) ReportBroken(id string, params ...any) {
	s.inner.ReportBroken(s.id(id), params...)
}

func (s ScopedAPI) ReportWarning(id string, params ...any) {
	s.inner.ReportWarning(s.id(id), params...)
}

func (s ScopedAPI) ReportDebug(msg string, params ...any) {
	s.inner.ReportDebug(fmt.Sprintf("%s: %s", s.namespace, msg), params...)
}

func (s ScopedAPI) ReportCount(id string, count int64) {
	s.inner.ReportCount(s.id(id), count)
}
