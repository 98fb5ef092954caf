package http

import (
	"fmt"
	"net"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/betoschneider/slipway/internal/core/ports"
)

// ProxyHandler manages reverse proxying for subdomains.
type ProxyHandler struct {
	service ports.ContainerService
	domain  string
}

// NewProxyHandler creates a new proxy handler. Requests to
// <app>.<domain> are routed to the app's published host port.
func NewProxyHandler(service ports.ContainerService, domain string) *ProxyHandler {
	return &ProxyHandler{service: service, domain: domain}
}

// ProxyRequest intercepts requests to subdomains (e.g., app-name.localhost)
// and routes them to the corresponding container's published port.
func (h *ProxyHandler) ProxyRequest(c *fiber.Ctx) error {
	host := c.Hostname()
	if hp, _, err := net.SplitHostPort(host); err == nil {
		host = hp
	}

	// 1. Extract Subdomain
	if !strings.HasSuffix(host, "."+h.domain) {
		return c.Next()
	}
	subdomain := strings.TrimSuffix(host, "."+h.domain)
	if subdomain == "" || subdomain == "www" || strings.Contains(subdomain, ".") {
		return c.Next()
	}

	// 2. Find Container by Name (Subdomain)
	containers, err := h.service.ListContainers(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).SendString("Failed to list containers")
	}

	hostPort := 0
	for _, container := range containers {
		if container.Name != subdomain || !container.Running() {
			continue
		}
		hostPort = container.HostPort
		break
	}

	if hostPort == 0 {
		return c.Status(fiber.StatusNotFound).SendString(fmt.Sprintf("App '%s' not found, not running or not published", subdomain))
	}

	// 3. Proxy the Request. Containers are started with their declared port
	// published on the host, so the target is always local.
	remote, err := url.Parse(fmt.Sprintf("http://127.0.0.1:%d", hostPort))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).SendString("Invalid target URL")
	}

	proxy := httputil.NewSingleHostReverseProxy(remote)

	// Custom Director: Rewrite Host header to target so the application
	// inside doesn't reject the request over an unexpected Host.
	originalDirector := proxy.Director
	proxy.Director = func(req *http.Request) {
		originalDirector(req)
		req.Host = remote.Host
		req.URL.Host = remote.Host
		req.URL.Scheme = remote.Scheme
	}

	// Error Handler: Return standard BadGateway if connectivity fails
	proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(fmt.Sprintf("Proxy Info: target=%s error=%v", remote.Host, err)))
	}

	// Fiber <-> Net/HTTP Adaptor
	return adaptor.HTTPHandler(proxy)(c)
}
