// Copyright 2025 The Go MCP SDK Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package discovery finds Roon Cores on the local network via SOOD: UDP
// query frames sent to a well-known multicast group and the local
// broadcast address, answered by unicast reply frames carrying the Core's
// id, display name, and HTTP port.
package discovery

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

const (
	multicastGroup  = "239.255.90.90"
	soodPort        = 9003
	broadcastAddr   = "255.255.255.255:9003"
	defaultHTTPPort = 9100
)

// Config tunes a Discover call. The zero value is replaced with defaults
// matching spec: a 60s timeout, a query every 2s, and no early exit.
type Config struct {
	Timeout       time.Duration
	QueryInterval time.Duration
	StopOnFirst   bool
}

func (c Config) withDefaults() Config {
	if c.Timeout <= 0 {
		c.Timeout = 60 * time.Second
	}
	if c.QueryInterval <= 0 {
		c.QueryInterval = 2 * time.Second
	}
	return c
}

// Core is one discovered Roon Core.
type Core struct {
	Host          string
	Port          int
	CoreID        string
	DisplayName   string
	TransactionID string
	DiscoveredAt  time.Time
}

// key identifies a Core for deduplication, per spec: distinct (host, port).
func (c Core) key() string { return net.JoinHostPort(c.Host, strconv.Itoa(c.Port)) }

// Discover sends SOOD queries to the multicast and broadcast discovery
// addresses every cfg.QueryInterval until cfg.Timeout elapses, or until the
// first Core answers if cfg.StopOnFirst is set. It returns every distinct
// (host, port) Core observed, in no particular order, or ErrNoCoresFound if
// none answered before the timeout.
func Discover(ctx context.Context, cfg Config) ([]Core, error) {
	cfg = cfg.withDefaults()

	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	conn, err := listen()
	if err != nil {
		return nil, fmt.Errorf("discovery: %w", err)
	}
	defer conn.Close()

	var (
		mu    sync.Mutex
		found = map[string]Core{}
	)
	firstCh := make(chan struct{})
	var firstOnce sync.Once
	record := func(addr *net.UDPAddr, props map[string]string) {
		port := defaultHTTPPort
		if raw, ok := props["http_port"]; ok {
			if n, err := strconv.Atoi(raw); err == nil {
				port = n
			}
		}
		core := Core{
			Host:          addr.IP.String(),
			Port:          port,
			CoreID:        props["_corid"],
			DisplayName:   props["_displayname"],
			TransactionID: props["_tid"],
			DiscoveredAt:  time.Now(),
		}
		mu.Lock()
		_, existed := found[core.key()]
		found[core.key()] = core
		mu.Unlock()
		if !existed {
			firstOnce.Do(func() { close(firstCh) })
		}
	}

	group, gctx := errgroup.WithContext(ctx)

	// Listener: reads reply frames until the context is done.
	group.Go(func() error {
		buf := make([]byte, 2048)
		for gctx.Err() == nil {
			conn.SetReadDeadline(time.Now().Add(250 * time.Millisecond))
			n, addr, err := conn.ReadFromUDP(buf)
			if err != nil {
				if gctx.Err() != nil {
					return nil
				}
				continue // read timeout or transient error; keep polling
			}
			props, err := decodeReply(buf[:n])
			if err != nil {
				continue // malformed frame: drop silently
			}
			record(addr, props)
		}
		return nil
	})

	// Querier: paced by a rate.Limiter local to this call, so it sends the
	// first query at once and then at most one per cfg.QueryInterval.
	group.Go(func() error {
		limiter := rate.NewLimiter(rate.Every(cfg.QueryInterval), 1)
		tid := 0
		for {
			if err := limiter.Wait(gctx); err != nil {
				return nil
			}
			tid++
			sendQuery(conn, tid)
		}
	})

	// Early-exit watcher: cancels the group once the first Core answers, if
	// cfg.StopOnFirst is set.
	if cfg.StopOnFirst {
		group.Go(func() error {
			select {
			case <-firstCh:
				cancel()
			case <-gctx.Done():
			}
			return nil
		})
	}

	group.Wait()

	mu.Lock()
	defer mu.Unlock()
	if len(found) == 0 {
		return nil, ErrNoCoresFound
	}
	cores := make([]Core, 0, len(found))
	for _, c := range found {
		cores = append(cores, c)
	}
	return cores, nil
}

// listen opens the receiving/sending socket. It prefers joining the SOOD
// multicast group on the well-known port so unsolicited multicast replies
// are visible; if the platform or sandbox disallows multicast group
// membership, it falls back to a plain ephemeral UDP socket, which still
// receives the unicast replies Cores normally send directly back to the
// querying address.
func listen() (*net.UDPConn, error) {
	group := net.UDPAddr{IP: net.ParseIP(multicastGroup), Port: soodPort}
	if conn, err := net.ListenMulticastUDP("udp4", nil, &group); err == nil {
		return conn, nil
	}
	return net.ListenUDP("udp4", &net.UDPAddr{Port: 0})
}

func sendQuery(conn *net.UDPConn, tid int) {
	query := encodeQuery(map[string]string{"_tid": strconv.Itoa(tid)})

	if maddr, err := net.ResolveUDPAddr("udp4", net.JoinHostPort(multicastGroup, strconv.Itoa(soodPort))); err == nil {
		conn.WriteToUDP(query, maddr)
	}
	if baddr, err := net.ResolveUDPAddr("udp4", broadcastAddr); err == nil {
		conn.WriteToUDP(query, baddr)
	}
}
