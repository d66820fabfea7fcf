// Package ids provides opaque identifier primitives (ULID) for tokens and requests.
package ids

import "github.com/oklog/ulid/v2"

// Make returns a 26 char ULID for the current time using the library's
// monotonic default entropy. ULIDs sort by time, which keeps request logs ordered.
func Make() string {
	return ulid.Make().String()
}
