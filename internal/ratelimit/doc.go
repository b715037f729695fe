// Package ratelimit implements the global request gate for the single-item
// price provider.
//
// The gate combines three mechanisms:
//   - a permit semaphore bounding in-flight requests (one, globally)
//   - a delayed release: the permit is returned only after a cool-down, so
//     even back-to-back successes are spaced out
//   - a randomized backoff sleep for provider throttle (429) responses
//
// Mutual exclusion and eventual progress are guaranteed; fairness is not.
package ratelimit
