// Package dispatch fans a batch of independent send requests out over a
// bounded number of workers and reports one Result per request.
//
// Guarantees of Bulk:
//
//   - len(results) == len(requests), and results[i] belongs to requests[i]
//     no matter in which order sends complete.
//   - At most Concurrency sends run at once.
//   - Every request is attempted at most once; failures are never retried
//     and never abort sibling requests. A panicking send becomes an
//     Internal error result.
//   - Bulk returns only after every worker has recorded its result.
//
// Each worker writes only its own slot of a pre-sized slice, so recording
// needs no lock. The only call-level failure is ErrBatchTooLarge, returned
// before anything is sent.
//
// Usage:
//
//	engine := dispatch.New(m, dispatch.WithConcurrency(6), dispatch.WithLogger(log))
//	results, err := engine.Bulk(ctx, requests)
package dispatch
