// ABOUTME: mDNS discovery of LAN synthesis servers
// ABOUTME: Browse-only client resolving _intone-synth._tcp advertisements
package discovery

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/hashicorp/mdns"
)

const (
	serviceType  = "_intone-synth._tcp"
	queryTimeout = 3 * time.Second
)

// ServerInfo describes a discovered synthesis server
type ServerInfo struct {
	Name string
	Host string
	Port int
}

// Endpoint returns the HTTP synthesis endpoint for the server
func (s *ServerInfo) Endpoint() string {
	return fmt.Sprintf("http://%s:%d/synthesize", s.Host, s.Port)
}

// Manager browses the LAN for synthesis servers
type Manager struct {
	ctx     context.Context
	cancel  context.CancelFunc
	servers chan *ServerInfo
}

// NewManager creates a discovery manager
func NewManager() *Manager {
	ctx, cancel := context.WithCancel(context.Background())

	return &Manager{
		ctx:     ctx,
		cancel:  cancel,
		servers: make(chan *ServerInfo, 10),
	}
}

// Browse starts browsing for synthesis servers
func (m *Manager) Browse() error {
	go m.browseLoop()
	return nil
}

// browseLoop repeats short mDNS queries until stopped
func (m *Manager) browseLoop() {
	for {
		select {
		case <-m.ctx.Done():
			return
		default:
		}

		entries := make(chan *mdns.ServiceEntry, 10)

		go func() {
			for entry := range entries {
				host := ""
				if entry.AddrV4 != nil {
					host = entry.AddrV4.String()
				} else if entry.AddrV6 != nil {
					host = entry.AddrV6.String()
				}
				if host == "" {
					continue
				}

				server := &ServerInfo{
					Name: entry.Name,
					Host: host,
					Port: entry.Port,
				}

				log.Printf("Discovered synthesis server: %s at %s:%d", server.Name, server.Host, server.Port)

				select {
				case m.servers <- server:
				case <-m.ctx.Done():
					return
				}
			}
		}()

		params := &mdns.QueryParam{
			Service: serviceType,
			Domain:  "local",
			Timeout: queryTimeout,
			Entries: entries,
		}

		mdns.Query(params)
		close(entries)
	}
}

// Servers returns the channel of discovered servers
func (m *Manager) Servers() <-chan *ServerInfo {
	return m.servers
}

// Stop stops the discovery manager
func (m *Manager) Stop() {
	m.cancel()
}

// FirstServer browses until one server appears or the timeout elapses
func FirstServer(timeout time.Duration) (*ServerInfo, error) {
	m := NewManager()
	defer m.Stop()

	if err := m.Browse(); err != nil {
		return nil, err
	}

	select {
	case server := <-m.Servers():
		return server, nil
	case <-time.After(timeout):
		return nil, fmt.Errorf("no synthesis server found within %s", timeout)
	}
}
