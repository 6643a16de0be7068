package main

import "go.uber.org/zap"

// quitGuard stands between a quit request and unsaved edits: the first
// request only warns, and a second one with no edit in between exits.
type quitGuard struct {
	log    *zap.Logger
	warned bool
	edits  int // edit count when the warning was given
}

// allow reports whether the program may exit. dirty and edits describe
// the document at the time of the request.
func (q *quitGuard) allow(why string, dirty bool, edits int) bool {
	if !dirty {
		return true
	}
	if q.warned && q.edits == edits {
		q.log.Info("discarding modified document", zap.String("request", why))
		return true
	}
	q.warned, q.edits = true, edits
	q.log.Warn("document modified; quit again to discard the edits", zap.String("request", why))
	return false
}
