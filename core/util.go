package core

import (
	"context"
	"strings"
)

// CleanString trims all leading and trailing whitespace in `s` and optionally lowers it.
func CleanString(s string, lower ...bool) string {
	s = strings.TrimSpace(s)
	if len(lower) > 0 && lower[0] {
		return strings.ToLower(s)
	}
	return s
}

// ContainsFold reports whether substr is within s, ignoring case.
func ContainsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

// Reconcile tells the caller of a remote write how local state was brought back in line.
type Reconcile int

const (
	ReconcileNone    Reconcile = iota // remote and local agree
	ReconcileRefetch                  // local state reloaded from the remote
	ReconcileLocal                    // remote write failed; change kept locally only
)

func (r Reconcile) String() string {
	switch r {
	case ReconcileRefetch:
		return "refetch"
	case ReconcileLocal:
		return "local"
	default:
		return "none"
	}
}

// WriteResult is what every write through the remote backend returns.
type WriteResult struct {
	Err       error
	Reconcile Reconcile
}

func (r WriteResult) Persisted() bool {
	return r.Err == nil
}

// RemoteWrite runs write and picks the reconcile strategy for the outcome.
// onOK and onFail may be nil.
func RemoteWrite(ctx context.Context, write func(context.Context) error, onOK, onFail func(context.Context) Reconcile) WriteResult {
	if err := write(ctx); err != nil {
		res := WriteResult{Err: err, Reconcile: ReconcileNone}
		if onFail != nil {
			res.Reconcile = onFail(ctx)
		}
		return res
	}
	res := WriteResult{Reconcile: ReconcileNone}
	if onOK != nil {
		res.Reconcile = onOK(ctx)
	}
	return res
}
