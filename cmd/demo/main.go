package main

import (
	"bytes"
	"flag"
	"fmt"
	"log"
	"net/http"
	"net/http/httptest"

	"github.com/yourusername/gatechain/api"
	"github.com/yourusername/gatechain/metrics"
	"github.com/yourusername/gatechain/pkg/gatechain"
)

// An in-process tour of the pipeline: build the default chain, fire a batch
// of requests through it, and print each verdict. Run it during business
// hours or the time window gate will (correctly) reject everything.
func main() {
	configFile := flag.String("config", "", "Path to configuration file (optional)")
	flag.Parse()

	printBanner()

	opts := []gatechain.Option{}
	if *configFile != "" {
		log.Println("Loading configuration from:", *configFile)
		opts = append(opts, gatechain.WithConfigFile(*configFile))
	}

	tracker := metrics.NewMetrics()
	opts = append(opts, gatechain.WithMetrics(tracker))

	chain, err := gatechain.New(opts...)
	if err != nil {
		log.Fatalf("Failed to build pipeline: %v", err)
	}
	defer chain.Close()

	handler := api.NewHandler()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/messages", handler.Messages)

	auth := api.NewAuthenticator()
	stack := auth.Middleware(chain.Middleware(mux))

	// An admin sends seven messages. With the default limit of 5/minute the
	// last two die at the rate limiter.
	for i := 1; i <= 7; i++ {
		req := httptest.NewRequest("POST", "/api/messages",
			bytes.NewBufferString(fmt.Sprintf(`{"body":"message %d"}`, i)))
		req.RemoteAddr = "203.0.113.7:40000"
		req.Header.Set("X-User-Id", "1")
		req.Header.Set("X-User-Name", "alice")
		req.Header.Set("X-User-Role", "admin")

		rr := httptest.NewRecorder()
		stack.ServeHTTP(rr, req)
		fmt.Printf("admin message %d  -> %d\n", i, rr.Code)
	}

	// A guest tries to write: role gate says no.
	req := httptest.NewRequest("POST", "/api/messages", bytes.NewBufferString(`{"body":"hi"}`))
	req.RemoteAddr = "203.0.113.8:40000"
	req.Header.Set("X-User-Id", "2")
	req.Header.Set("X-User-Name", "bob")
	req.Header.Set("X-User-Role", "guest")
	rr := httptest.NewRecorder()
	stack.ServeHTTP(rr, req)
	fmt.Printf("guest message    -> %d\n", rr.Code)

	// Anonymous reads pass through everything.
	req = httptest.NewRequest("GET", "/api/messages", nil)
	req.RemoteAddr = "203.0.113.9:40000"
	rr = httptest.NewRecorder()
	stack.ServeHTTP(rr, req)
	fmt.Printf("anonymous read   -> %d\n", rr.Code)

	fmt.Println()
	fmt.Println("Gate decisions:")
	for _, g := range tracker.GetSnapshot().Gates {
		fmt.Printf("  %-12s checked=%d allowed=%d rejected=%d\n",
			g.Gate, g.Checked, g.Allowed, g.Rejected)
	}
}

func printBanner() {
	fmt.Println("GateChain Pipeline Demo")
	fmt.Println("=======================")
	fmt.Println("Order: request_log -> time_window -> rate_limit -> role_access")
	fmt.Println()
}
