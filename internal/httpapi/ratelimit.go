package httpapi

import (
	"net/http"
	"time"

	"github.com/didip/tollbooth/v6"
	"github.com/didip/tollbooth/v6/limiter"

	wallet "github.com/idaralabs/Idara-Wallet"
)

// ThrottleEveryOneSec accepts 1 request per second.
const ThrottleEveryOneSec float64 = 1

// NewRateLimiter returns a limiter accepting max requests per second
// per remote address.
func NewRateLimiter(max float64) *limiter.Limiter {
	lmt := tollbooth.NewLimiter(max, &limiter.ExpirableOptions{
		DefaultExpirationTTL: time.Hour,
	})
	lmt.SetIPLookups([]string{"X-Forwarded-For", "RemoteAddr", "X-Real-IP"})
	return lmt
}

// RateLimitMiddleware throttles requests that exceed a limiter's
// accepted rate.
func RateLimitMiddleware(jsonHandler JSONAPIHandler, lmt *limiter.Limiter) JSONAPIHandler {
	return func(w http.ResponseWriter, r *http.Request) (interface{}, error) {
		if httpError := tollbooth.LimitByRequest(lmt, w, r); httpError != nil {
			return nil, wallet.ErrThrottle("requests are throttled, try again later")
		}
		return jsonHandler(w, r)
	}
}
