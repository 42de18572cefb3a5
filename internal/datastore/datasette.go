package datastore

import (
	"context"
	"fmt"
	"net/url"
	"path"

	"github.com/HazeMiya/ai-2024/internal/httpclient"
)

// DatasetteClient implements the Store interface for remote Datasette
// instances through the write API.
type DatasetteClient struct {
	baseURL  string
	database string
	apiToken string
	client   httpclient.HTTPDoer
}

var _ Store = (*DatasetteClient)(nil)

// NewDatasetteClient creates a client writing into database on the instance at baseURL.
func NewDatasetteClient(baseURL, database, apiToken string, doer httpclient.HTTPDoer) *DatasetteClient {
	if doer == nil {
		doer = httpclient.New()
	}
	return &DatasetteClient{baseURL: baseURL, database: database, apiToken: apiToken, client: doer}
}

// Connect validates the base URL.
func (c *DatasetteClient) Connect(context.Context) error {
	u, err := url.Parse(c.baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid base URL: %q", c.baseURL)
	}
	return nil
}

// CreateTable is a no-op; ReplaceAll recreates the table from the rows it sends.
func (c *DatasetteClient) CreateTable(context.Context, string) error {
	return nil
}

// insertBatch matches the default max_insert_rows of a Datasette instance.
const insertBatch = 100

type writeResponse struct {
	OK     bool     `json:"ok"`
	Errors []string `json:"errors"`
}

// ReplaceAll drops table and recreates it from records. Column types are
// inferred by Datasette from the first batch; rows are keyed by rowid.
func (c *DatasetteClient) ReplaceAll(ctx context.Context, table string, records []map[string]any) error {
	if len(records) == 0 {
		return nil
	}

	err := c.post(ctx, "drop", map[string]any{"confirm": true}, c.database, table, "-/drop")
	if err != nil && !httpclient.IsNotFound(err) {
		return err
	}

	first := records[:min(len(records), insertBatch)]
	if err := c.post(ctx, "create", map[string]any{"table": table, "rows": first}, c.database, "-/create"); err != nil {
		return err
	}
	for start := len(first); start < len(records); start += insertBatch {
		batch := records[start:min(len(records), start+insertBatch)]
		if err := c.post(ctx, "insert", map[string]any{"rows": batch}, c.database, table, "-/insert"); err != nil {
			return err
		}
	}
	return nil
}

func (c *DatasetteClient) post(ctx context.Context, op string, payload any, elems ...string) error {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return fmt.Errorf("invalid base URL: %w", err)
	}
	u.Path = path.Join(append([]string{u.Path}, elems...)...)

	var resp writeResponse
	if err := httpclient.PostJSON(ctx, authDoer{c.client, c.apiToken}, "datasette", u.String(), payload, &resp); err != nil {
		return err
	}
	if !resp.OK {
		return fmt.Errorf("datasette %s failed: %v", op, resp.Errors)
	}
	return nil
}

// Close is a no-op for the HTTP client
func (c *DatasetteClient) Close() error {
	return nil
}
