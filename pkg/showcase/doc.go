// Package showcase provides a content moderation service for anonymous
// showcase submissions backed by a dual-backend persistence layer.
//
// Submissions move through a pending/approved/rejected workflow driven by
// administrator actions. All reads and writes go through a Store: the
// durable remote backend is always tried first and a local file-backed
// fallback takes over whenever the remote side is unavailable or serves
// an empty answer that the local side contradicts (see store/dual).
// Aggregate submission counters are never maintained independently; they
// are recomputed from the live item collection on every observation.
//
// Construct a Service with functional options:
//
//	svc, err := showcase.New(
//	    showcase.WithStore(store),
//	    showcase.WithBootstrapAdmin("xion", password),
//	)
package showcase
