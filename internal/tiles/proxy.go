package tiles

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"landradar/server/internal/apperrors"
)

// maxTileBytes caps a proxied tile at 8 MiB. Anything larger is not a map
// tile.
const maxTileBytes = 8 << 20

// Tile is a fetched binary tile ready to stream back to the browser.
type Tile struct {
	ContentType string
	Body        []byte
}

// Proxy fetches raster tiles from whitelisted hosts so the browser never
// talks to the authenticated tile backends directly.
type Proxy struct {
	logger       *logrus.Logger
	client       *http.Client
	allowedHosts []string
}

// NewProxy accepts the host suffixes tiles may be fetched from. A suffix
// matches the host itself and any subdomain.
func NewProxy(allowedHosts []string, timeout time.Duration, logger *logrus.Logger) *Proxy {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
	}

	return &Proxy{
		logger:       logger,
		client:       &http.Client{Timeout: timeout},
		allowedHosts: allowedHosts,
	}
}

func (p *Proxy) hostAllowed(host string) bool {
	for _, allowed := range p.allowedHosts {
		if host == allowed || strings.HasSuffix(host, "."+allowed) {
			return true
		}
	}
	return false
}

// Fetch retrieves one tile. Non-http(s) schemes and unlisted hosts are
// caller errors, not upstream ones.
func (p *Proxy) Fetch(ctx context.Context, rawURL string) (*Tile, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, apperrors.InvalidParameter("malformed tile url")
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, apperrors.InvalidParameter("tile url scheme must be http or https")
	}
	if !p.hostAllowed(parsed.Hostname()) {
		return nil, apperrors.InvalidParameter("tile host %q is not allowed", parsed.Hostname())
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		p.logger.WithError(err).WithField("url", rawURL).Error("Tile fetch failed")
		return nil, apperrors.UpstreamWrap(0, err, "tile fetch failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.Upstream(resp.StatusCode, "tile host returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxTileBytes))
	if err != nil {
		return nil, apperrors.UpstreamWrap(resp.StatusCode, err, "failed to read tile body")
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "image/png"
	}

	return &Tile{ContentType: contentType, Body: body}, nil
}
