// Package sparqlio looks for curated entities in a triplestore that
// describes them with the OpenCitations Meta data model.
package sparqlio

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/gnames/gncurator/internal/ent/finder"
	"github.com/gnames/gncurator/internal/str"
	"github.com/gnames/gncurator/pkg/config"
	"github.com/segmentio/encoding/json"
	"github.com/sethgrid/pester"
	"golang.org/x/time/rate"
)

type sparqlio struct {
	endpoint string
	client   *pester.Client
	limiter  *rate.Limiter
}

// New creates a store that sends queries to a SPARQL endpoint.
func New(cfg config.Config) (finder.Store, error) {
	if _, err := url.ParseRequestURI(cfg.SparqlURL); err != nil {
		slog.Error("Cannot parse SPARQL endpoint", "error", err, "url", cfg.SparqlURL)
		return nil, err
	}

	client := pester.New()
	client.Backoff = pester.ExponentialBackoff
	client.MaxRetries = max(cfg.Retries, 1)
	client.RetryOnHTTP429 = true
	client.Timeout = cfg.Timeout

	res := sparqlio{
		endpoint: cfg.SparqlURL,
		client:   client,
	}
	if cfg.Rate > 0 {
		res.limiter = rate.NewLimiter(rate.Limit(cfg.Rate), 1)
	}
	return &res, nil
}

type binding struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

type solution map[string]binding

func (s solution) get(name string) string {
	return s[name].Value
}

type results struct {
	Results struct {
		Bindings []solution `json:"bindings"`
	} `json:"results"`
}

// query sends a SELECT query and returns its solutions.
func (s *sparqlio) query(ctx context.Context, q string) ([]solution, error) {
	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	slog.Debug("SPARQL query", "query", str.ShortTitle(strings.Join(strings.Fields(q), " ")))
	form := url.Values{"query": {prefixes + q}}
	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost, s.endpoint, strings.NewReader(form.Encode()),
	)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/sparql-results+json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp == nil {
		return nil, fmt.Errorf("sparql endpoint %s: no response", s.endpoint)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("sparql endpoint %s: %s", s.endpoint, resp.Status)
	}

	var res results
	if err = json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return nil, fmt.Errorf("cannot decode sparql results: %w", err)
	}
	return res.Results.Bindings, nil
}
