package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/oapi-codegen/runtime"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/time/rate"
)

const maxErrorBody = 64 << 10

// APIError is a non-2xx platform response.
type APIError struct {
	StatusCode int
	Status     string
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("platform API error: %s", e.Status)
	}
	return fmt.Sprintf("platform API error: %s: %s", e.Status, e.Message)
}

// Client talks to the managed platform's REST API.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client

	// generationClient carries generate-variations only; nil falls back to httpClient.
	generationClient *http.Client
	apiKey           string
	limiter          *rate.Limiter
}

// Option configures the client.
type Option func(*Client)

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// WithGenerationHTTPClient sets the client used for billed generation calls, which
// routinely outlast the reference-data timeout.
func WithGenerationHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.generationClient = httpClient
	}
}

// WithAPIKey authenticates calls that are not made on behalf of a customer.
func WithAPIKey(key string) Option {
	return func(c *Client) {
		c.apiKey = strings.TrimSpace(key)
	}
}

// WithRateLimit caps outbound requests per second. Zero disables limiting.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// NewClient instantiates the platform client with sane defaults.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("platform base URL is required")
	}
	parsed, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse platform base URL: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("platform base URL %q must be absolute", baseURL)
	}
	c := &Client{
		baseURL: parsed,
		httpClient: &http.Client{
			Timeout:   15 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c, nil
}

// ListBreeds fetches every breed.
func (c *Client) ListBreeds(ctx context.Context) ([]Breed, error) {
	return getList[Breed](ctx, c, "/api/breeds", nil)
}

// ListCoats fetches every coat.
func (c *Client) ListCoats(ctx context.Context) ([]Coat, error) {
	return getList[Coat](ctx, c, "/api/coats", nil)
}

// ListOutfits fetches every outfit.
func (c *Client) ListOutfits(ctx context.Context) ([]Outfit, error) {
	return getList[Outfit](ctx, c, "/api/outfits", nil)
}

// ListFormats fetches every format.
func (c *Client) ListFormats(ctx context.Context) ([]Format, error) {
	return getList[Format](ctx, c, "/api/formats", nil)
}

// ListThemes fetches every theme.
func (c *Client) ListThemes(ctx context.Context) ([]Theme, error) {
	return getList[Theme](ctx, c, "/api/themes", nil)
}

// BreedCoats fetches the breed-coat join rows for breedID.
func (c *Client) BreedCoats(ctx context.Context, breedID string) ([]BreedCoat, error) {
	frag, err := runtime.StyleParamWithLocation("form", true, "breed_id", runtime.ParamLocationQuery, breedID)
	if err != nil {
		return nil, err
	}
	query, err := url.ParseQuery(frag)
	if err != nil {
		return nil, err
	}
	return getList[BreedCoat](ctx, c, "/api/breed-coats", query)
}

// Credits fetches the customer's balance.
func (c *Client) Credits(ctx context.Context, bearer string) (*CreditsResponse, error) {
	var out CreditsResponse
	if err := c.do(ctx, http.MethodGet, "/api/customers/credits", nil, bearer, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GenerateVariations submits a generation. A 2xx body with success=false is returned as is.
func (c *Client) GenerateVariations(ctx context.Context, bearer string, body GenerateVariationsRequest) (*GenerateVariationsResponse, error) {
	var out GenerateVariationsResponse
	if err := c.doWith(ctx, c.generationHTTPClient(), http.MethodPost, "/api/customers/generate-variations", nil, bearer, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ProgressMessages asks for display strings to show while a generation runs.
func (c *Client) ProgressMessages(ctx context.Context, bearer string, body ProgressMessagesRequest) ([]string, error) {
	var out ProgressMessagesResponse
	if err := c.do(ctx, http.MethodPost, "/api/customers/generate-progress-messages", nil, bearer, body, &out); err != nil {
		return nil, err
	}
	return out.Messages, nil
}

// DescribeImage uploads an image with its breed name and returns the generated description.
func (c *Client) DescribeImage(ctx context.Context, image []byte, filename, breed string) (string, error) {
	if filename == "" {
		filename = "portrait.jpg"
	}
	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	part, err := form.CreateFormFile("image", filename)
	if err != nil {
		return "", err
	}
	if _, err := part.Write(image); err != nil {
		return "", err
	}
	if err := form.WriteField("breed", breed); err != nil {
		return "", err
	}
	if err := form.Close(); err != nil {
		return "", err
	}
	req, err := c.newRequest(ctx, http.MethodPost, "/api/generate-description/file", nil, "", &buf)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", form.FormDataContentType())
	var out DescriptionResponse
	if err := c.send(c.httpClient, req, &out); err != nil {
		return "", err
	}
	return out.Description, nil
}

// UpdateGeneratedImageDescription stores a description on a generated image.
func (c *Client) UpdateGeneratedImageDescription(ctx context.Context, bearer, imageID, description string) error {
	id, err := runtime.StyleParamWithLocation("simple", false, "id", runtime.ParamLocationPath, imageID)
	if err != nil {
		return err
	}
	path := fmt.Sprintf("/api/customers/generated-images/%s/description", id)
	return c.do(ctx, http.MethodPatch, path, nil, bearer, DescriptionUpdate{Description: description}, nil)
}

func getList[T any](ctx context.Context, c *Client, path string, query url.Values) ([]T, error) {
	var out []T
	if err := c.do(ctx, http.MethodGet, path, query, "", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, bearer string, body, out any) error {
	return c.doWith(ctx, c.httpClient, method, path, query, bearer, body, out)
}

func (c *Client) generationHTTPClient() *http.Client {
	if c.generationClient != nil {
		return c.generationClient
	}
	return c.httpClient
}

func (c *Client) doWith(ctx context.Context, hc *http.Client, method, path string, query url.Values, bearer string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s request: %w", path, err)
		}
		reader = bytes.NewReader(payload)
	}
	req, err := c.newRequest(ctx, method, path, query, bearer, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.send(hc, req, out)
}

func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, bearer string, body io.Reader) (*http.Request, error) {
	if c == nil || c.baseURL == nil {
		return nil, errors.New("platform client not configured")
	}
	target := c.baseURL.JoinPath(path)
	if len(query) > 0 {
		target.RawQuery = query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, target.String(), body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	switch {
	case bearer != "":
		req.Header.Set("Authorization", "Bearer "+bearer)
	case c.apiKey != "":
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	return req, nil
}

func (c *Client) send(hc *http.Client, req *http.Request, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(req.Context()); err != nil {
			return fmt.Errorf("rate limit %s: %w", req.URL.Path, err)
		}
	}
	resp, err := hc.Do(req)
	if err != nil {
		return fmt.Errorf("call platform %s: %w", req.URL.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &APIError{StatusCode: resp.StatusCode, Status: resp.Status, Message: errorMessage(raw)}
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", req.URL.Path, err)
	}
	return nil
}

func errorMessage(raw []byte) string {
	var body errorBody
	if err := json.Unmarshal(raw, &body); err == nil {
		if msg := strings.TrimSpace(body.Error); msg != "" {
			return msg
		}
		if msg := strings.TrimSpace(body.Message); msg != "" {
			return msg
		}
	}
	return strings.TrimSpace(string(raw))
}
