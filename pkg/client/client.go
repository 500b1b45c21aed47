// Package client is a typed HTTP client for the measurebook API. Each method
// maps to exactly one server route and shares the server's models.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"measurebook/internal/models"
)

// APIError is returned for any non-2xx response.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("measurebook: status %d: %s", e.StatusCode, e.Message)
}

// Patch is a partial update document. Keys are JSON field names; a nil value
// clears the field where the server allows it.
type Patch map[string]any

// Client is safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient swaps the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// New builds a client for baseURL, e.g. "http://localhost:3000".
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// routes builds every path the client calls.
var routes = struct {
	projects     func() string
	project      func(projectID int64) string
	spaces       func(projectID int64) string
	space        func(projectID, spaceID int64) string
	uploadURL    func(projectID, spaceID int64, filename, contentType string) string
	spaceImages  func(projectID, spaceID int64) string
	measurements func(projectID, spaceID int64) string
	measurement  func(projectID, spaceID, measurementID int64) string
	products     func(projectID, spaceID, measurementID int64) string
	product      func(projectID, spaceID, measurementID int64, sku string) string
	catalog      func() string
	catalogItem  func(id string) string
	health       func() string
}{
	projects: func() string { return "/projects" },
	project:  func(p int64) string { return "/projects/" + id(p) },
	spaces:   func(p int64) string { return "/projects/" + id(p) + "/spaces" },
	space:    func(p, s int64) string { return "/projects/" + id(p) + "/spaces/" + id(s) },
	uploadURL: func(p, s int64, filename, contentType string) string {
		q := url.Values{}
		q.Set("filename", filename)
		if contentType != "" {
			q.Set("contentType", contentType)
		}
		return "/projects/" + id(p) + "/spaces/" + id(s) + "/upload-url?" + q.Encode()
	},
	spaceImages: func(p, s int64) string {
		return "/projects/" + id(p) + "/spaces/" + id(s) + "/images"
	},
	measurements: func(p, s int64) string {
		return "/projects/" + id(p) + "/spaces/" + id(s) + "/measurements"
	},
	measurement: func(p, s, m int64) string {
		return "/projects/" + id(p) + "/spaces/" + id(s) + "/measurements/" + id(m)
	},
	products: func(p, s, m int64) string {
		return "/projects/" + id(p) + "/spaces/" + id(s) + "/measurements/" + id(m) + "/products"
	},
	product: func(p, s, m int64, sku string) string {
		return "/projects/" + id(p) + "/spaces/" + id(s) + "/measurements/" + id(m) + "/products/" + url.PathEscape(sku)
	},
	catalog:     func() string { return "/products" },
	catalogItem: func(key string) string { return "/products/" + url.PathEscape(key) },
	health:      func() string { return "/health" },
}

func id(v int64) string { return strconv.FormatInt(v, 10) }

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	apiErr := &APIError{StatusCode: resp.StatusCode}
	var body struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(raw, &body) == nil && body.Error != "" {
		apiErr.Message = body.Error
	} else {
		apiErr.Message = strings.TrimSpace(string(raw))
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}
	return apiErr
}

type projectEnvelope struct {
	Project *models.Project `json:"project"`
}

type spaceEnvelope struct {
	Space *models.Space `json:"space"`
}

type measurementEnvelope struct {
	Measurement *models.Measurement `json:"measurement"`
}

type productEnvelope struct {
	Product *models.Product `json:"product"`
}

func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, routes.health(), nil, nil)
}

func (c *Client) GetProjects(ctx context.Context) ([]*models.Project, error) {
	var out []*models.Project
	if err := c.do(ctx, http.MethodGet, routes.projects(), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetProject(ctx context.Context, projectID int64) (*models.Project, error) {
	var out models.Project
	if err := c.do(ctx, http.MethodGet, routes.project(projectID), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateProject(ctx context.Context, input models.ProjectInput) (*models.Project, error) {
	var out projectEnvelope
	if err := c.do(ctx, http.MethodPost, routes.projects(), input, &out); err != nil {
		return nil, err
	}
	return out.Project, nil
}

func (c *Client) UpdateProject(ctx context.Context, projectID int64, patch Patch) (*models.Project, error) {
	var out projectEnvelope
	if err := c.do(ctx, http.MethodPatch, routes.project(projectID), patch, &out); err != nil {
		return nil, err
	}
	return out.Project, nil
}

func (c *Client) DeleteProject(ctx context.Context, projectID int64) error {
	return c.do(ctx, http.MethodDelete, routes.project(projectID), nil, nil)
}

func (c *Client) CreateSpace(ctx context.Context, projectID int64, input models.SpaceInput) (*models.Space, error) {
	var out spaceEnvelope
	if err := c.do(ctx, http.MethodPost, routes.spaces(projectID), input, &out); err != nil {
		return nil, err
	}
	return out.Space, nil
}

func (c *Client) UpdateSpace(ctx context.Context, projectID, spaceID int64, patch Patch) (*models.Space, error) {
	var out spaceEnvelope
	if err := c.do(ctx, http.MethodPatch, routes.space(projectID, spaceID), patch, &out); err != nil {
		return nil, err
	}
	return out.Space, nil
}

func (c *Client) DeleteSpace(ctx context.Context, projectID, spaceID int64) error {
	return c.do(ctx, http.MethodDelete, routes.space(projectID, spaceID), nil, nil)
}

// GetSpaceUploadURL asks for a presigned PUT URL. contentType may be empty.
func (c *Client) GetSpaceUploadURL(ctx context.Context, projectID, spaceID int64, filename, contentType string) (*models.UploadURL, error) {
	var out models.UploadURL
	if err := c.do(ctx, http.MethodGet, routes.uploadURL(projectID, spaceID, filename, contentType), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteSpaceImage(ctx context.Context, projectID, spaceID int64, imageURL string) error {
	body := map[string]string{"url": imageURL}
	return c.do(ctx, http.MethodDelete, routes.spaceImages(projectID, spaceID), body, nil)
}

func (c *Client) CreateMeasurement(ctx context.Context, projectID, spaceID int64, input models.MeasurementInput) (*models.Measurement, error) {
	var out measurementEnvelope
	if err := c.do(ctx, http.MethodPost, routes.measurements(projectID, spaceID), input, &out); err != nil {
		return nil, err
	}
	return out.Measurement, nil
}

func (c *Client) UpdateMeasurement(ctx context.Context, projectID, spaceID, measurementID int64, patch Patch) (*models.Measurement, error) {
	var out measurementEnvelope
	if err := c.do(ctx, http.MethodPatch, routes.measurement(projectID, spaceID, measurementID), patch, &out); err != nil {
		return nil, err
	}
	return out.Measurement, nil
}

func (c *Client) DeleteMeasurement(ctx context.Context, projectID, spaceID, measurementID int64) error {
	return c.do(ctx, http.MethodDelete, routes.measurement(projectID, spaceID, measurementID), nil, nil)
}

func (c *Client) AddProductToMeasurement(ctx context.Context, projectID, spaceID, measurementID int64, product models.Product) (*models.Product, error) {
	var out productEnvelope
	if err := c.do(ctx, http.MethodPost, routes.products(projectID, spaceID, measurementID), product, &out); err != nil {
		return nil, err
	}
	return out.Product, nil
}

func (c *Client) UpdateProduct(ctx context.Context, projectID, spaceID, measurementID int64, sku models.SKU, patch Patch) (*models.Product, error) {
	var out productEnvelope
	path := routes.product(projectID, spaceID, measurementID, sku.String())
	if err := c.do(ctx, http.MethodPatch, path, patch, &out); err != nil {
		return nil, err
	}
	return out.Product, nil
}

func (c *Client) RemoveProductFromMeasurement(ctx context.Context, projectID, spaceID, measurementID int64, sku models.SKU) error {
	return c.do(ctx, http.MethodDelete, routes.product(projectID, spaceID, measurementID, sku.String()), nil, nil)
}

// GetProducts returns the master catalog.
func (c *Client) GetProducts(ctx context.Context) ([]models.CatalogProduct, error) {
	var out []models.CatalogProduct
	if err := c.do(ctx, http.MethodGet, routes.catalog(), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetProduct looks up a catalog record by id or sku.
func (c *Client) GetProduct(ctx context.Context, key string) (models.CatalogProduct, error) {
	var out models.CatalogProduct
	if err := c.do(ctx, http.MethodGet, routes.catalogItem(key), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
