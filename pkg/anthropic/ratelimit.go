package anthropic

import (
	"context"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

// rateLimitedClient wraps a Client with a token-bucket limiter so request
// rates to the provider stay bounded regardless of how many tenants a batch
// run processes.
type rateLimitedClient struct {
	inner   Client
	limiter *rate.Limiter
}

// NewRateLimited wraps client with a limiter of rps requests per second.
// A non-positive rps returns the client unwrapped.
func NewRateLimited(client Client, rps float64) Client {
	if rps <= 0 {
		return client
	}
	burst := int(rps)
	if burst < 1 {
		burst = 1
	}
	return &rateLimitedClient{
		inner:   client,
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
	}
}

func (c *rateLimitedClient) CreateMessage(ctx context.Context, req MessageRequest) (*MessageResponse, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "anthropic: rate limit wait")
	}
	return c.inner.CreateMessage(ctx, req)
}
