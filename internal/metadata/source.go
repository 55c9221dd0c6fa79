// file: internal/metadata/source.go
// version: 2.0.0
// guid: a1b2c3d4-e5f6-7a8b-9c0d-e1f2a3b4c5d6

package metadata

import (
	"context"
	"log/slog"
	"time"
)

// Capability names a feature a metadata source offers to the host.
type Capability string

const (
	CapabilityIdentify Capability = "identify"
	CapabilityCover    Capability = "cover"
)

// Version is a semantic version triple.
type Version [3]int

// Descriptor declares what a source is and what it can do.
type Descriptor struct {
	Name                 string       `json:"name" yaml:"name"`
	Description          string       `json:"description" yaml:"description"`
	Author               string       `json:"author" yaml:"author"`
	Version              Version      `json:"version" yaml:"version"`
	MinimumHostVersion   Version      `json:"minimum_host_version" yaml:"minimum_host_version"`
	SupportedPlatforms   []string     `json:"supported_platforms" yaml:"supported_platforms"`
	Capabilities         []Capability `json:"capabilities" yaml:"capabilities"`
	TouchedFields        []string     `json:"touched_fields" yaml:"touched_fields"`
	HasHTMLComments      bool         `json:"has_html_comments" yaml:"has_html_comments"`
	SupportsGzip         bool         `json:"supports_gzip_transfer_encoding" yaml:"supports_gzip_transfer_encoding"`
	CanGetMultipleCovers bool         `json:"can_get_multiple_covers" yaml:"can_get_multiple_covers"`
}

// Has reports whether the descriptor declares the capability.
func (d Descriptor) Has(c Capability) bool {
	for _, have := range d.Capabilities {
		if have == c {
			return true
		}
	}
	return false
}

// IdentifyRequest carries what the host knows about a book.
type IdentifyRequest struct {
	Title       string
	Authors     []string
	Identifiers map[string]string
	Timeout     time.Duration
}

// Source is a pluggable metadata provider as seen by the host. Entry points
// never return errors: failures are logged and produce no output.
type Source interface {
	Descriptor() Descriptor
	Identify(ctx context.Context, log *slog.Logger, sink Sink[CandidateRecord], req IdentifyRequest)
	DownloadCover(ctx context.Context, log *slog.Logger, sink Sink[Cover], req IdentifyRequest)
	GetBookURL(identifiers map[string]string) (idType, idValue, url string, ok bool)
	GetBookURLName(idType, idValue, url string) string
	GetCachedCoverURL(identifiers map[string]string) string
	IDFromURL(url string) (string, bool)
}
