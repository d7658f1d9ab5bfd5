/*
Package resilience provides a circuit breaker for flaky upstreams.

The launcher talks to two external services it does not control: the
release feed for update checks and the news site. The breaker stops
hammering either one while it is down and probes it again after a
cooldown.

# Usage

	breaker := resilience.New("updates", resilience.Options{
		Threshold: 3,
		Cooldown:  5 * time.Minute,
	})

	err := breaker.Do(func() error {
		return client.Fetch()
	})

# States

	Closed --[failures]-> Open --[cooldown]-> Half-Open --[success]-> Closed
	                                              |
	                                          [failure]
	                                              v
	                                            Open
*/
package resilience
