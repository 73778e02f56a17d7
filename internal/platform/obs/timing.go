package obs

import (
	"context"
	"log"
	"time"
)

type ctxKey string

// RequestIDKey carries a request identifier through context so repository
// and geocoder timings can be correlated with the request log.
const RequestIDKey ctxKey = "req_id"

// Time logs the duration of an operation when the returned func runs.
// Deferred at the top of repository and geocoder methods:
//
//	defer obs.Time(ctx, "repo.ListMonthJobs")(&err)
func Time(ctx context.Context, name string) func(errp *error) {
	start := time.Now()

	reqID, _ := ctx.Value(RequestIDKey).(string)

	return func(errp *error) {
		dur := time.Since(start)

		if errp != nil && *errp != nil {
			log.Printf("req_id=%s op=%s dur=%dms err=%v", reqID, name, dur.Milliseconds(), *errp)
			return
		}
		log.Printf("req_id=%s op=%s dur=%dms", reqID, name, dur.Milliseconds())
	}
}
