// Package tests exercises the client, caches and crest fetcher together
package tests

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"

	"github.com/elazarl/goproxy"
	"github.com/iTrooz/footballdata/internal/api"
	"github.com/iTrooz/footballdata/internal/cache"
	"github.com/iTrooz/footballdata/internal/cache/doccache"
	"github.com/iTrooz/footballdata/internal/cache/imagecache"
	"github.com/iTrooz/footballdata/internal/config"
	"github.com/iTrooz/footballdata/internal/crest"
)

const testAPIKey = "test-key"

// counted wraps a test server with the number of requests it handled
type counted struct {
	*httptest.Server
	calls atomic.Int32
}

// fixture_upstream creates a test football-data service serving competitions, scorers and one crest.
// Requests without the API key are rejected.
func fixture_upstream() *counted {
	crestPNG := crestBytes()
	u := &counted{}
	mux := http.NewServeMux()
	mux.HandleFunc("/v4/competitions", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"count": 2, "competitions": [
		  {"id": 2021, "name": "Premier League", "code": "PL"},
		  {"id": 2001, "name": "UEFA Champions League", "code": "CL"}
		]}`))
	})
	mux.HandleFunc("/v4/competitions/{code}/scorers", func(w http.ResponseWriter, r *http.Request) {
		goals := map[string]string{"PL": "12", "DED": "14"}[r.PathValue("code")]
		if goals == "" {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"message": "The resource you are looking for does not exist.", "errorCode": 404}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"scorers": [{"player": {"name": "` + r.PathValue("code") + ` striker"}, "team": {"id": 57}, "goals": ` + goals + `}]}`))
	})
	mux.HandleFunc("/crests/57.png", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(crestPNG)
	})

	u.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u.calls.Add(1)
		if r.Header.Get(api.AuthHeader) != testAPIKey {
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte(`{"message": "The resource you are looking for is restricted."}`))
			return
		}
		mux.ServeHTTP(w, r)
	}))
	return u
}

// fixture_proxy creates a forward proxy that counts what goes through it
func fixture_proxy() *counted {
	p := &counted{}
	proxy := goproxy.NewProxyHttpServer()
	proxy.OnRequest().DoFunc(func(r *http.Request, ctx *goproxy.ProxyCtx) (*http.Request, *http.Response) {
		p.calls.Add(1)
		return r, nil
	})
	p.Server = httptest.NewServer(proxy)
	return p
}

// fixture_config creates a test config against upstreamURL, optionally through proxyURL
func fixture_config(upstreamURL, tempDir, proxyURL string) *config.Config {
	cfg := config.Default()
	cfg.Upstream.BaseURL = upstreamURL + "/v4"
	cfg.Upstream.APIKey = testAPIKey
	cfg.Upstream.Timeout = "2s"
	cfg.Upstream.Proxy = proxyURL
	cfg.Cache.Folder = filepath.Join(tempDir, "cache")
	cfg.Images.Folder = filepath.Join(tempDir, "image_cache")
	cfg.Images.CredentialDomain = "127.0.0.1"
	cfg.GoldenBoot.Coefficients = []config.Coefficient{
		{Code: "PL", Value: 2.0},
		{Code: "DED", Value: 1.5},
		{Code: "ELC", Value: 1.0},
	}
	return cfg
}

// fixture_client wires a client and crest fetcher on top of fresh disk caches
func fixture_client(cfg *config.Config) (*api.Client, *crest.Fetcher, error) {
	docs := cache.NewDisk(cfg.Cache.Folder)
	if err := docs.Init(); err != nil {
		return nil, nil, err
	}
	images := cache.NewDisk(cfg.Images.Folder)
	if err := images.Init(); err != nil {
		return nil, nil, err
	}

	client, err := api.New(cfg, doccache.New(docs))
	if err != nil {
		return nil, nil, err
	}
	fetcher, err := crest.NewFetcher(cfg, imagecache.New(images))
	if err != nil {
		return nil, nil, err
	}
	return client, fetcher, nil
}

func crestBytes() []byte {
	img := image.NewRGBA(image.Rect(0, 0, 12, 12))
	img.Set(6, 6, color.RGBA{R: 0xdc, G: 0x14, B: 0x3c, A: 0xff})

	var buf bytes.Buffer
	_ = png.Encode(&buf, img)
	return buf.Bytes()
}
