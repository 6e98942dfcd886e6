// Package config loads declarative expectation files.
//
// A file holds optional settings and a list of expectation parts:
//
//	settings:
//	  assertion_timeout: 10s
//	  transport: nats
//	  nats_url: nats://127.0.0.1:4222
//
//	expectations:
//	  - endpoint: orders.create
//	    ordering: total
//	    expect:
//	      - match: {condition: {sku: "A-1"}}
//	        respond: {body: {status: accepted}}
//	      - match: {contains: "B-2"}
//	        respond: {fault: out of stock}
//	      - match:
//	          any: [{contains: "C-3"}, {contains: "C-4"}]
//	          not: {headers: {priority: low}}
//	        respond:
//	          body: {status: queued}
//	          headers: {Retry-After: "5"}
//
//	  - endpoint: health
//	    lenient:
//	      respond:
//	        - body: up
//	        - body: degraded
//
// The body and headers of each respond block answer the message at the same
// position. Parts for the same endpoint are merged in authoring order: files sorted by
// path, then top to bottom within a file. Loading parses files concurrently
// but the merge order never depends on it.
package config
