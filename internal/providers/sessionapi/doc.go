/*
Package sessionapi is the client for the remote browser session service used
in remote display mode.

The service exposes three calls, all authenticated with a bearer token:

	POST   {base}/sessions               {os, version, browser, url} -> {id, url}
	DELETE {base}/sessions/{id}
	POST   {base}/sessions/{id}/navigate {url}

Requests go through resty over a pooled retryablehttp transport, a token
bucket limiter and a circuit breaker. Every call carries a fresh X-Request-ID
and the caller's trace headers. Retries are off unless configured. Non-2xx
answers are returned as *APIError; 4xx answers do not trip the breaker.

The token is never logged; a short blake2b fingerprint is logged instead.
*/
package sessionapi
