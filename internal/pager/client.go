package pager

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"imobiliaria/server/internal/models"
)

// HTTPFetcher fetches pages from the property search endpoint. It
// understands both response shapes: the pagination envelope and the
// legacy bare array, which counts as a single page with no more data.
type HTTPFetcher struct {
	baseURL string
	client  *http.Client
	logger  *logrus.Logger
}

func NewHTTPFetcher(baseURL string, logger *logrus.Logger) *HTTPFetcher {
	if logger == nil {
		logger = logrus.New()
	}
	return &HTTPFetcher{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
		logger:  logger,
	}
}

func (f *HTTPFetcher) FetchPage(ctx context.Context, query url.Values, page, limit int) (*Result, error) {
	q := url.Values{}
	for k, vals := range query {
		q[k] = append([]string(nil), vals...)
	}
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(limit))

	endpoint := f.baseURL + "/api/properties?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %v", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("page request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, ErrRateLimited
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %v", err)
	}

	return decodePage(body)
}

// decodePage branches on the first JSON token to tell the two response
// shapes apart.
func decodePage(body []byte) (*Result, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var items []models.Property
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, fmt.Errorf("failed to parse property array: %v", err)
		}
		return &Result{
			Items:     items,
			Total:     len(items),
			HasMore:   false,
			Paginated: false,
		}, nil
	}

	var envelope models.PropertyPage
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return nil, fmt.Errorf("failed to parse property page: %v", err)
	}
	return &Result{
		Items:     envelope.Data,
		Total:     envelope.Pagination.Total,
		HasMore:   envelope.Pagination.HasMore,
		Paginated: true,
	}, nil
}
