package proxy

import (
	"math/rand"
	"net/http"
	"net/url"

	"github.com/rotisserie/eris"

	"github.com/williampepple1/partsearch/internal/config"
)

// Manager handles proxy configuration and rotation
type Manager struct {
	Config *config.ProxyConfig
}

// NewManager creates a new proxy manager
func NewManager(config *config.ProxyConfig) *Manager {
	return &Manager{
		Config: config,
	}
}

// Enabled reports whether outbound requests should go through a proxy
func (m *Manager) Enabled() bool {
	return m.Config.Enabled && len(m.Config.List) > 0
}

// GetProxyURL returns a proxy URL from the configuration, or nil when proxying is off
func (m *Manager) GetProxyURL() (*url.URL, error) {
	if !m.Enabled() {
		return nil, nil
	}

	// Select a proxy
	proxyStr := m.Config.List[0]
	if m.Config.Rotate && len(m.Config.List) > 1 {
		proxyStr = m.Config.List[rand.Intn(len(m.Config.List))]
	}

	return m.parse(proxyStr)
}

func (m *Manager) parse(proxyStr string) (*url.URL, error) {
	proxyURL, err := url.Parse(proxyStr)
	if err != nil {
		return nil, eris.Wrapf(err, "proxy: parse %q", proxyStr)
	}
	if proxyURL.Scheme == "" || proxyURL.Host == "" {
		return nil, eris.Errorf("proxy: %q is not an absolute URL", proxyStr)
	}

	// Add authentication if provided
	if m.Config.Auth.Username != "" && m.Config.Auth.Password != "" {
		proxyURL.User = url.UserPassword(m.Config.Auth.Username, m.Config.Auth.Password)
	}

	return proxyURL, nil
}

// ApplyToTransport routes the transport through the configured proxies. With
// rotation on, every request picks its own proxy. All entries are validated up front.
func (m *Manager) ApplyToTransport(transport *http.Transport) error {
	if !m.Enabled() {
		return nil
	}

	for _, p := range m.Config.List {
		if _, err := m.parse(p); err != nil {
			return err
		}
	}

	transport.Proxy = func(*http.Request) (*url.URL, error) {
		return m.GetProxyURL()
	}
	return nil
}
