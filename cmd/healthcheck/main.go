// Command healthcheck is the container HEALTHCHECK for checkoutrelay. It
// exits 0 only when GET /healthz answers 200 with {"status":"ok"}, meaning
// the credential store answered a ping. Any other outcome exits 1 with the
// reason on stderr, where `docker inspect` shows it.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"time"
)

const (
	defaultAddr = "127.0.0.1:4242"
	timeout     = 2 * time.Second
)

func main() {
	os.Exit(check(normalizeAddr(os.Getenv("CHECKOUTRELAY_LISTEN_ADDR")), os.Stderr))
}

func check(addr string, stderr io.Writer) int {
	if err := getHealthz(addr); err != nil {
		fmt.Fprintf(stderr, "checkoutrelay unhealthy: %v\n", err)
		return 1
	}
	return 0
}

func getHealthz(addr string) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "http://"+addr+"/healthz", nil)
	if err != nil {
		return err
	}

	resp, err := (&http.Client{Timeout: timeout}).Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var body struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 4096)).Decode(&body); err != nil {
		return fmt.Errorf("decode /healthz (HTTP %d): %w", resp.StatusCode, err)
	}
	if resp.StatusCode != http.StatusOK || body.Status != "ok" {
		return fmt.Errorf("/healthz returned HTTP %d with status %q", resp.StatusCode, body.Status)
	}
	return nil
}

// normalizeAddr turns the server's listen address into one the check can
// dial from inside the same container: an empty or wildcard host becomes
// loopback, and an unparsable value falls back to the server default.
func normalizeAddr(raw string) string {
	host, port, err := net.SplitHostPort(raw)
	if err != nil {
		return defaultAddr
	}

	switch host {
	case "", "0.0.0.0", "::":
		host = "127.0.0.1"
	}
	return net.JoinHostPort(host, port)
}
