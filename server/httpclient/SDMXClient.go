package httpclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/justintemps/ilostat-simple-summarizer/server/data"
	"github.com/justintemps/ilostat-simple-summarizer/server/sdmxdata"
)

// ErrNotFound is returned when the remote catalog has no resource at the
// requested path. Callers map it to their own domain errors
var ErrNotFound = errors.New("remote resource not found")

const (
	defaultBaseURL     = "https://sdmx.ilo.org/rest"
	defaultAgency      = "ILO"
	defaultMaxRetries  = 3
	defaultBackoffBase = 500 * time.Millisecond
)

// SDMXClient talks to an SDMX REST endpoint. Transient transport failures
// (network errors, 429, 5xx) are retried with exponential backoff up to
// MaxRetries attempts before surfacing as RemoteUnavailable
type SDMXClient struct {
	BaseURL     string
	Agency      string
	Client      *http.Client
	MaxRetries  uint64
	BackoffBase time.Duration
}

func NewSDMXClient(baseURL string, agency string) *SDMXClient {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if agency == "" {
		agency = defaultAgency
	}
	return &SDMXClient{
		BaseURL:     baseURL,
		Agency:      agency,
		Client:      &http.Client{Timeout: 60 * time.Second},
		MaxRetries:  defaultMaxRetries,
		BackoffBase: defaultBackoffBase,
	}
}

// ListDataflows returns the ids of every dataflow the catalog declares
func (c *SDMXClient) ListDataflows(ctx context.Context) ([]string, error) {
	endpoint := fmt.Sprintf("%s/dataflow/%s/all?format=sdmx-json", c.BaseURL, c.Agency)

	var msg sdmxdata.StructureMessage
	if err := c.getJSON(ctx, endpoint, &msg); err != nil {
		return nil, fmt.Errorf("error listing dataflows: %w", err)
	}

	ids := make([]string, 0, len(msg.Data.Dataflows))
	for _, flow := range msg.Data.Dataflows {
		ids = append(ids, flow.ID)
	}

	return ids, nil
}

// GetDataflow fetches the structure message for a single dataflow, with its
// data structure definition, codelists and content constraints resolved
func (c *SDMXClient) GetDataflow(
	ctx context.Context,
	dataflowID string,
) (*sdmxdata.StructureMessage, error) {
	endpoint := fmt.Sprintf(
		"%s/dataflow/%s/%s?references=all&format=sdmx-json",
		c.BaseURL,
		c.Agency,
		url.PathEscape(dataflowID),
	)

	var msg sdmxdata.StructureMessage
	if err := c.getJSON(ctx, endpoint, &msg); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error fetching dataflow %s: %w", dataflowID, err)
	}

	return &msg, nil
}

// QueryData executes a data query. The key is the dotted dimension-code
// string in structure order; empty segments are wildcards. A 404 from the
// data endpoint means the query matched no data, not a missing resource
func (c *SDMXClient) QueryData(
	ctx context.Context,
	dataflowID string,
	key string,
	params data.QueryParams,
) (*sdmxdata.DataMessage, error) {
	if key == "" {
		key = "all"
	}

	query := url.Values{}
	query.Set("format", "jsondata")
	if params.StartPeriod != "" {
		query.Set("startPeriod", params.StartPeriod)
	}
	if params.EndPeriod != "" {
		query.Set("endPeriod", params.EndPeriod)
	}

	endpoint := fmt.Sprintf(
		"%s/data/%s,%s/%s?%s",
		c.BaseURL,
		c.Agency,
		url.PathEscape(dataflowID),
		url.PathEscape(key),
		query.Encode(),
	)

	var msg sdmxdata.DataMessage
	if err := c.getJSON(ctx, endpoint, &msg); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, data.ErrEmptyResult
		}
		return nil, fmt.Errorf("error querying data for %s: %w", dataflowID, err)
	}

	return &msg, nil
}

// getJSON fetches and decodes a JSON payload, retrying transient failures.
// Decode failures and unexpected statuses are permanent; they never burn
// retry budget
func (c *SDMXClient) getJSON(ctx context.Context, endpoint string, out any) error {
	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("error building request for %s: %w", endpoint, err))
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.Client.Do(req)
		if err != nil {
			return &data.RemoteUnavailableError{Err: err}
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusOK:
		case resp.StatusCode == http.StatusNotFound:
			return backoff.Permanent(ErrNotFound)
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			return &data.RemoteUnavailableError{
				Err: fmt.Errorf("unexpected status %d from %s", resp.StatusCode, endpoint),
			}
		default:
			return backoff.Permanent(fmt.Errorf("unexpected status %d from %s", resp.StatusCode, endpoint))
		}

		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return backoff.Permanent(fmt.Errorf("error decoding response from %s: %w", endpoint, err))
		}

		return nil
	}

	policy := backoff.NewExponentialBackOff()
	if c.BackoffBase > 0 {
		policy.InitialInterval = c.BackoffBase
	}

	return backoff.Retry(operation, backoff.WithContext(backoff.WithMaxRetries(policy, c.MaxRetries), ctx))
}
