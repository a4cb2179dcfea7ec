package engine

import "time"

// SnapshotReusable decides whether a cached snapshot can serve a search or
// must be recaptured. A snapshot is reusable iff a forced refresh was not
// requested and its age is still inside the cache window. A missing or empty
// snapshot is always a cache miss.
func SnapshotReusable(snapshot *MarketSnapshot, forceRefresh bool, now time.Time) bool {
	if forceRefresh {
		return false
	}
	if snapshot == nil || len(snapshot.Items) == 0 {
		return false
	}
	window := time.Duration(snapshot.CacheMs) * time.Millisecond
	return now.Sub(snapshot.CapturedAt) < window
}
