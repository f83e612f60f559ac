// Package dart integrates with the DART (Korean FSS) open API: statement
// retrieval with consolidated/separate fallback, local caching, and
// corp-code resolution.
// API documentation: https://opendart.fss.or.kr/guide/main.do
package dart

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"dart_collector/pkg/models"
)

const (
	// DART open API endpoints.
	StatementURL = "https://opendart.fss.or.kr/api/fnlttSinglAcntAll.json"
	CorpCodeURL  = "https://opendart.fss.or.kr/api/corpCode.xml"

	statusOK = "000"
)

// Client fetches financial statements from the DART open API, consulting
// the statement cache first when one is configured.
type Client struct {
	apiKey     string
	httpClient *http.Client
	cache      *StatementCache
}

// NewClient creates a DART API client. cache may be nil to disable caching.
func NewClient(apiKey string, cache *StatementCache) *Client {
	return &Client{
		apiKey: apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		cache: cache,
	}
}

// GetStatement retrieves one periodic report for an entity and year.
// preferConsolidated controls the fallback order: the preferred
// consolidation kind is tried first (cache then API), the other kind
// second. "Not found" and upstream errors both come back as nil; errors
// are logged here so the collection core only ever sees absence.
func (c *Client) GetStatement(ctx context.Context, corpCode string, year int, kind models.ReportKind, preferConsolidated bool) *models.PeriodStatement {
	order := []models.ConsolidationKind{models.Consolidated, models.Separate}
	if !preferConsolidated {
		order = []models.ConsolidationKind{models.Separate, models.Consolidated}
	}

	if c.cache != nil {
		for _, fs := range order {
			if stmt := c.cache.Get(ctx, corpCode, year, kind, fs); stmt != nil {
				return stmt
			}
		}
	}

	for _, fs := range order {
		stmt, err := c.fetch(ctx, corpCode, year, kind, fs)
		if err != nil {
			fmt.Printf("[dart] fetch failed corp=%s year=%d report=%s fs=%s: %v\n", corpCode, year, kind, fs, err)
			continue
		}
		if stmt == nil {
			continue
		}
		if c.cache != nil {
			if err := c.cache.Put(ctx, stmt); err != nil {
				fmt.Printf("[dart] WARNING: cache write failed: %v\n", err)
			}
		}
		return stmt
	}
	return nil
}

// apiResponse is the fnlttSinglAcntAll JSON envelope. status "000" means
// success; "013" is the documented no-data code.
type apiResponse struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	List    []apiAccountRow `json:"list"`
}

type apiAccountRow struct {
	CorpName  string `json:"corp_name"`
	AccountNm string `json:"account_nm"`
	Amount    string `json:"thstrm_amount"`
	PeriodDt  string `json:"thstrm_dt"` // "2023.01.01 ~ 2023.09.30"
}

func (c *Client) fetch(ctx context.Context, corpCode string, year int, kind models.ReportKind, fs models.ConsolidationKind) (*models.PeriodStatement, error) {
	params := url.Values{}
	params.Set("crtfc_key", c.apiKey)
	params.Set("corp_code", corpCode)
	params.Set("bsns_year", fmt.Sprintf("%d", year))
	params.Set("reprt_code", string(kind))
	params.Set("fs_div", string(fs))

	req, err := http.NewRequestWithContext(ctx, "GET", StatementURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("DART API request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("DART API returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var apiResp apiResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return nil, fmt.Errorf("failed to parse DART response: %w", err)
	}

	return parseStatement(&apiResp, corpCode, year, kind, fs), nil
}
