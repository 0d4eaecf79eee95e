// Package crest resolves team crest images through the on-disk image cache
package crest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	// Decoders for the formats crests are published in
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"github.com/iTrooz/footballdata/internal/api"
	"github.com/iTrooz/footballdata/internal/cache"
	"github.com/iTrooz/footballdata/internal/config"

	"github.com/sirupsen/logrus"
	"golang.org/x/image/draw"
	"golang.org/x/sync/singleflight"
)

const maxImageSize = 8 << 20

// ImageStore persists decoded crests by team
type ImageStore interface {
	Read(teamID int) (image.Image, error)
	Write(teamID int, img image.Image) error
	Age(teamID int) (time.Duration, error)
}

// Fetcher downloads team crests, keeping them in an ImageStore.
// It is safe for concurrent use.
type Fetcher struct {
	store            ImageStore
	httpClient       *http.Client
	apiKey           string
	credentialDomain string
	ttl              time.Duration
	group            singleflight.Group
}

// NewFetcher creates a crest fetcher from the configuration
func NewFetcher(cfg *config.Config, store ImageStore) (*Fetcher, error) {
	ttl, err := cfg.GetImageTTL()
	if err != nil {
		return nil, fmt.Errorf("invalid image TTL: %w", err)
	}
	timeout, err := cfg.GetImageTimeout()
	if err != nil {
		return nil, fmt.Errorf("invalid image timeout: %w", err)
	}
	httpClient, err := api.NewHTTPClient(timeout, cfg.Upstream.Proxy)
	if err != nil {
		return nil, err
	}

	return &Fetcher{
		store:            store,
		httpClient:       httpClient,
		apiKey:           cfg.Upstream.APIKey,
		credentialDomain: strings.ToLower(cfg.Images.CredentialDomain),
		ttl:              ttl,
	}, nil
}

// Crest returns the crest of teamID, downloading it from crestURL when the cached
// copy is missing or older than the TTL. It reports false when no image is available.
func (f *Fetcher) Crest(ctx context.Context, teamID int, crestURL string) (image.Image, bool) {
	if crestURL == "" {
		return nil, false
	}

	if img, ok := f.cached(teamID); ok {
		return img, true
	}

	shared := context.WithoutCancel(ctx)
	ch := f.group.DoChan(fmt.Sprintf("%d|%s", teamID, crestURL), func() (any, error) {
		return f.download(shared, teamID, crestURL), nil
	})

	select {
	case r := <-ch:
		img, _ := r.Val.(image.Image)
		return img, img != nil
	case <-ctx.Done():
		logrus.Debugf("Crest request for team %d abandoned: %v", teamID, ctx.Err())
		return nil, false
	}
}

func (f *Fetcher) cached(teamID int) (image.Image, bool) {
	age, err := f.store.Age(teamID)
	if err != nil {
		if !errors.Is(err, cache.ErrNotFound) {
			logrus.Warnf("Failed to stat cached crest for team %d: %v", teamID, err)
		}
		return nil, false
	}
	if age >= f.ttl {
		logrus.Debugf("Cached crest for team %d is stale, downloading again", teamID)
		return nil, false
	}

	img, err := f.store.Read(teamID)
	if err != nil {
		logrus.Warnf("Failed to open cached crest for team %d: %v", teamID, err)
		return nil, false
	}
	return img, true
}

// download fetches, decodes and caches a crest. It returns nil on any failure.
func (f *Fetcher) download(ctx context.Context, teamID int, crestURL string) image.Image {
	logrus.Debugf("Downloading crest for team %d from %s", teamID, crestURL)

	data, err := f.get(ctx, crestURL)
	if err != nil {
		logrus.Warnf("Failed to download crest for team %d: %v", teamID, err)
		return nil
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		logrus.Warnf("Failed to decode crest for team %d: %v", teamID, err)
		return nil
	}

	normalized, err := toNRGBA(img)
	if err != nil {
		logrus.Infof("Could not convert crest for team %d (%s) to RGBA, keeping original: %v", teamID, format, err)
		normalized = img
	}

	if err := f.store.Write(teamID, normalized); err != nil {
		logrus.Errorf("Failed to cache crest for team %d: %v", teamID, err)
	}
	return normalized
}

func (f *Fetcher) get(ctx context.Context, crestURL string) ([]byte, error) {
	target, err := url.Parse(crestURL)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return nil, err
	}
	if f.apiKey != "" && f.sendsCredential(target) {
		req.Header.Set(api.AuthHeader, f.apiKey)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	return io.ReadAll(io.LimitReader(resp.Body, maxImageSize))
}

// sendsCredential reports whether target belongs to the API's domain
func (f *Fetcher) sendsCredential(target *url.URL) bool {
	if f.credentialDomain == "" {
		return false
	}
	host := strings.ToLower(target.Hostname())
	return host == f.credentialDomain || strings.HasSuffix(host, "."+f.credentialDomain)
}

// toNRGBA converts img to a non-premultiplied RGBA image with an alpha channel
func toNRGBA(img image.Image) (image.Image, error) {
	if nrgba, ok := img.(*image.NRGBA); ok {
		return nrgba, nil
	}

	bounds := img.Bounds()
	if bounds.Empty() {
		return nil, fmt.Errorf("empty image bounds %v", bounds)
	}

	dst := image.NewNRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(dst, dst.Bounds(), img, bounds.Min, draw.Src)
	return dst, nil
}
