/*
Package resilience guards calls to the remote session service with a
consecutive-failure circuit breaker.

A breaker starts Closed. After Threshold failures in a row it opens and
rejects calls with ErrCircuitOpen until Cooldown has elapsed; the next call is then
let through as a probe (HalfOpen). A successful probe closes the breaker, a
failed one reopens it. Options.IsFailure decides which errors count, so a
rejected token does not trip the breaker.

	breaker := resilience.New("session-api", resilience.Options{
		Threshold: 5,
		Cooldown:  30 * time.Second,
	})
	session, err := resilience.Do(breaker, func() (*Session, error) {
		return client.create(ctx, req)
	})
*/
package resilience
