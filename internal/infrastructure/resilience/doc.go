/*
Package resilience provides an opt-in circuit breaker for connector traffic.

The breaker counts consecutive transport failures (connection refused,
reset, timeout). Server replies of any status are not failures. Once
Threshold failures are seen in a row the breaker opens and requests fail
with ErrCircuitOpen without touching the network. After Cooldown one trial
request is sent: success closes the breaker, failure opens it again.

A nil *Breaker lets every request through, which is how the connector runs
unless server.breaker_failures is configured.

	breaker := resilience.New("connector", resilience.Settings{Threshold: 5})

	resp, err := resilience.Do(breaker, func() (*resty.Response, error) {
		return req.Post(url)
	})

States:

	Closed --[Threshold failures]-> Open --[Cooldown]-> Half-Open --[trial ok]-> Closed
	                                  ^                     |
	                                  +----[trial failed]---+
*/
package resilience
