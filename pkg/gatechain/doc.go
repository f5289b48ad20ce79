// Package gatechain provides the request-interceptor pipeline that runs in
// front of a messaging API.
//
// Every inbound HTTP request passes through an ordered chain of gates before
// it reaches business logic: request logging, time-of-day access control,
// per-client sliding-window rate limiting, and role-based authorization. The
// first gate that rejects short-circuits the chain and its response goes
// straight back to the client.
//
// # Quick Start
//
// Basic usage with default settings:
//
//	chain, err := gatechain.New()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer chain.Close()
//
//	http.ListenAndServe(":8080", chain.Middleware(yourHandler))
//
// The defaults allow requests between 09:00 and 18:00, limit each client to
// 5 messages per minute on POSTs to messaging endpoints, require an admin or
// moderator role for messaging writes, and append one line per request to
// requests.log.
//
// # Gate Order
//
// The order is fixed and not configurable:
//
//  1. request_log — observes, never rejects
//  2. time_window — 403 outside the allowed clock window
//  3. rate_limit  — 429 once a client exceeds the sliding window
//  4. role_access — 401/403 for protected resources
//
// # Configuration
//
// Load configuration from a YAML file:
//
//	chain, err := gatechain.New(
//	    gatechain.WithConfigFile("gatechain.yaml"),
//	)
//
// Example YAML configuration:
//
//	log_file: requests.log
//
//	time_window:
//	  start: "09:00"
//	  end: "18:00"
//
//	rate_limit:
//	  limit: 5
//	  window: "1m"
//	  markers: ["/messages"]
//
//	access:
//	  protected_prefixes: ["/admin"]
//	  write_markers: ["/conversations", "/messages"]
//	  allowed_roles: ["admin", "moderator"]
//
// # Sliding Window Rate Limiting
//
// The limiter counts qualifying requests inside a continuously moving
// interval ending at now, not inside fixed calendar buckets. Sending the
// full quota at the end of one minute and again at the start of the next is
// therefore impossible. Rejected attempts are never recorded, so a limited
// client becomes eligible again exactly when its oldest accepted request
// ages out of the window.
//
// Clients are identified by the first X-Forwarded-For entry, falling back to
// the peer address. Requests that resolve to no address at all share one
// window; that degenerate case is deliberate, not a bug.
//
// # Identity
//
// The pipeline treats authentication as a pre-existing capability. An
// upstream collaborator resolves the caller and attaches it with
// WithPrincipal; the gates only read it:
//
//	r = r.WithContext(gatechain.WithPrincipal(r.Context(), gatechain.Principal{
//	    ID: "42", Username: "alice", Role: "admin",
//	}))
//
// # Storage
//
// Rate limit windows live in an in-memory store by default, with per-client
// locking and optional background cleanup of idle windows. A Redis-backed
// store is available for multi-instance deployments:
//
//	store := gatechain.NewRedisWindowStore(redisClient)
//	chain, err := gatechain.New(gatechain.WithStore(store))
//
// # Concurrency
//
// All gates are safe for concurrent use. The in-memory window store is the
// only shared mutable structure: prune, check and append run as one atomic
// unit per client key, and different clients never contend on each other's
// windows. No lock is held across the downstream handler or the log sink.
package gatechain
