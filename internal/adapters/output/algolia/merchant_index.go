package algolia

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"messenger-connect/configs"
	"messenger-connect/internal/domain"
	"messenger-connect/internal/ports/output"

	"github.com/sirupsen/logrus"
)

// Compile-time check to ensure MerchantIndexAdapter implements MerchantIndex interface
var _ output.MerchantIndex = (*MerchantIndexAdapter)(nil)

// MerchantIndexAdapter struct - Output adapter for the Algolia merchant index
type MerchantIndexAdapter struct {
	httpClient *http.Client
	baseURL    string
	appID      string
	apiKey     string
	index      string
}

// NewMerchantIndexAdapter func - Creates new merchant index adapter
func NewMerchantIndexAdapter(config configs.Algolia) (*MerchantIndexAdapter, error) {
	if config.AppID == "" || config.APIKey == "" {
		return nil, fmt.Errorf("missing algolia credentials")
	}
	if config.Index == "" {
		return nil, fmt.Errorf("missing algolia index name")
	}

	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = fmt.Sprintf("https://%s-dsn.algolia.net", config.AppID)
	}
	baseURL = strings.TrimSuffix(baseURL, "/")

	timeout := time.Duration(config.Timeout) * time.Second
	if config.Timeout <= 0 {
		timeout = 10 * time.Second
	}

	adapter := &MerchantIndexAdapter{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		appID:      config.AppID,
		apiKey:     config.APIKey,
		index:      config.Index,
	}

	logrus.Infof("Merchant index adapter initialized for index %q", config.Index)

	return adapter, nil
}

// SearchMerchants runs a free-text query with an optional filter expression
// and returns the ranked matches.
func (a *MerchantIndexAdapter) SearchMerchants(ctx context.Context, query, filters string) ([]domain.Merchant, error) {
	params := url.Values{}
	params.Set("query", query)
	if filters != "" {
		params.Set("filters", filters)
	}

	bodyBytes, err := json.Marshal(queryAPIRequest{Params: params.Encode()})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal query request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/1/indexes/%s/query", a.baseURL, url.PathEscape(a.index))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to create query request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Algolia-Application-Id", a.appID)
	req.Header.Set("X-Algolia-API-Key", a.apiKey)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to query merchant index: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("merchant index query failed: status %d - %s", resp.StatusCode, string(body))
	}

	var apiResp queryAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("failed to parse query response: %w", err)
	}

	merchants := make([]domain.Merchant, len(apiResp.Hits))
	for i, hit := range apiResp.Hits {
		merchants[i] = domain.Merchant{
			Name:        hit.Name,
			Slug:        hit.Slug,
			OffersCount: hit.OffersCount,
			ImageURL:    hit.Image,
		}
	}

	logrus.Infof("Merchant index query %q returned %d hits", query, len(merchants))

	return merchants, nil
}

// Wire structures for the index query API

type queryAPIRequest struct {
	Params string `json:"params"`
}

type queryAPIResponse struct {
	Hits []struct {
		Name        string `json:"name"`
		Slug        string `json:"slug"`
		OffersCount int    `json:"offers_count"`
		Image       string `json:"image"`
	} `json:"hits"`
	NbHits int `json:"nbHits"`
}
