package store

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

	"github.com/hashicorp/go-retryablehttp"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/metal-toolbox/gcesync/internal/app"
	"github.com/metal-toolbox/gcesync/internal/metrics"
	"github.com/metal-toolbox/gcesync/internal/model"
	"github.com/metal-toolbox/gcesync/internal/version"
)

const (
	// connectionTimeout is the maximum amount of time spent on each http connection to the Cyberwatch API.
	connectionTimeout = 30 * time.Second

	retryWaitMin = 1 * time.Second
	retryWaitMax = 30 * time.Second

	apiPrefix = "/api/v3"

	// bytes of an error response body included in the returned error.
	errBodyLimit = 512

	pkgName   = "internal/store"
	storeKind = "cyberwatch"
)

var (
	// ErrStoreQuery is returned when a Cyberwatch API query fails.
	ErrStoreQuery = errors.New("cyberwatch API query returned error")

	// ErrStoreAuth is returned when the Cyberwatch API rejects the credentials.
	ErrStoreAuth = errors.New("cyberwatch API authentication error")

	// ErrStoreResponse is returned when a Cyberwatch API response could not be decoded.
	ErrStoreResponse = errors.New("cyberwatch API response error")
)

// Cyberwatch implements the Repository interface over the Cyberwatch REST API.
type Cyberwatch struct {
	baseURL  *url.URL
	pageSize int
	client   *retryablehttp.Client
	logger   *logrus.Logger
}

// NewCyberwatchStore returns a Cyberwatch API client with request signing, retries and Otel wrapped in.
func NewCyberwatchStore(config *app.CyberwatchOptions, logger *logrus.Logger) (*Cyberwatch, error) {
	baseURL, err := url.ParseRequestURI(config.URL)
	if err != nil {
		return nil, errors.Wrap(app.ErrConfig, "cyberwatch url: "+err.Error())
	}

	pageSize := config.PageSize
	if pageSize <= 0 {
		pageSize = 100
	}

	return &Cyberwatch{
		baseURL:  baseURL,
		pageSize: pageSize,
		client:   newRetryableClient(config, logger),
		logger:   logger,
	}, nil
}

// returns a retryable http client with the API-Auth signer and Otel transports wrapped in
func newRetryableClient(config *app.CyberwatchOptions, logger *logrus.Logger) *retryablehttp.Client {
	retryableClient := retryablehttp.NewClient()
	retryableClient.RetryMax = config.RetryMax
	retryableClient.RetryWaitMin = retryWaitMin
	retryableClient.RetryWaitMax = retryWaitMax
	retryableClient.Backoff = jitterBackoff
	retryableClient.CheckRetry = checkRetry

	// return the last response once retries are exhausted, the caller maps the status to an error.
	retryableClient.ErrorHandler = retryablehttp.PassthroughErrorHandler

	retryableClient.HTTPClient = &http.Client{
		Timeout: connectionTimeout,
		Transport: newAPIAuthTransport(
			config.APIKey,
			config.SecretKey,
			otelhttp.NewTransport(http.DefaultTransport),
		),
	}

	// disable default debug logging on the retryable client
	if logger.Level < logrus.DebugLevel {
		retryableClient.Logger = nil
	} else {
		retryableClient.Logger = logger
	}

	return retryableClient
}

func (c *Cyberwatch) registerMetric(queryKind string) {
	metrics.StoreQueryErrorCount.With(
		prometheus.Labels{
			"storeKind": storeKind,
			"queryKind": queryKind,
		},
	).Inc()
}

// Ping checks the API is reachable and the credentials are accepted.
func (c *Cyberwatch) Ping(ctx context.Context) error {
	ctx, span := otel.Tracer(pkgName).Start(ctx, "Cyberwatch.Ping")
	defer span.End()

	if err := c.do(ctx, http.MethodGet, "ping", nil, nil, nil); err != nil {
		c.registerMetric("Ping")
		return err
	}

	return nil
}

// RemoteAccesses lists all remote access records.
func (c *Cyberwatch) RemoteAccesses(ctx context.Context) ([]model.RemoteAccess, error) {
	ctx, span := otel.Tracer(pkgName).Start(ctx, "Cyberwatch.RemoteAccesses")
	defer span.End()

	remoteAccesses, err := listAll[model.RemoteAccess](ctx, c, "remote_accesses")
	if err != nil {
		c.registerMetric("RemoteAccesses")
		return nil, err
	}

	span.SetAttributes(attribute.Int("count", len(remoteAccesses)))

	return remoteAccesses, nil
}

// Servers lists all server records.
func (c *Cyberwatch) Servers(ctx context.Context) ([]model.Server, error) {
	ctx, span := otel.Tracer(pkgName).Start(ctx, "Cyberwatch.Servers")
	defer span.End()

	servers, err := listAll[model.Server](ctx, c, "servers")
	if err != nil {
		c.registerMetric("Servers")
		return nil, err
	}

	span.SetAttributes(attribute.Int("count", len(servers)))

	return servers, nil
}

// CreateRemoteAccess creates the remote access and returns the record as stored.
func (c *Cyberwatch) CreateRemoteAccess(ctx context.Context, remoteAccess *model.RemoteAccess) (*model.RemoteAccess, error) {
	ctx, span := otel.Tracer(pkgName).Start(
		ctx,
		"Cyberwatch.CreateRemoteAccess",
		trace.WithAttributes(attribute.String("address", remoteAccess.Address)),
	)
	defer span.End()

	created := &model.RemoteAccess{}
	if err := c.do(ctx, http.MethodPost, "remote_accesses", nil, remoteAccess, created); err != nil {
		c.registerMetric("CreateRemoteAccess")
		return nil, errors.Wrap(err, "address: "+remoteAccess.Address)
	}

	return created, nil
}

// DeleteServer removes the server record identified by id.
func (c *Cyberwatch) DeleteServer(ctx context.Context, id int) error {
	ctx, span := otel.Tracer(pkgName).Start(
		ctx,
		"Cyberwatch.DeleteServer",
		trace.WithAttributes(attribute.Int("id", id)),
	)
	defer span.End()

	if err := c.do(ctx, http.MethodDelete, "servers/"+strconv.Itoa(id), nil, nil, nil); err != nil {
		c.registerMetric("DeleteServer")
		return errors.Wrap(err, "server id: "+strconv.Itoa(id))
	}

	return nil
}

// listAll pages through a collection endpoint until a page shorter than the page size is returned.
func listAll[T any](ctx context.Context, c *Cyberwatch, path string) ([]T, error) {
	all := []T{}

	for page := 1; ; page++ {
		query := url.Values{}
		query.Set("page", strconv.Itoa(page))
		query.Set("per_page", strconv.Itoa(c.pageSize))

		var batch []T
		if err := c.do(ctx, http.MethodGet, path, query, nil, &batch); err != nil {
			return nil, errors.Wrap(err, fmt.Sprintf("%s page %d", path, page))
		}

		all = append(all, batch...)

		c.logger.WithFields(logrus.Fields{
			"path":  path,
			"page":  page,
			"count": len(batch),
		}).Trace("listed page")

		if len(batch) < c.pageSize {
			return all, nil
		}
	}
}

func (c *Cyberwatch) do(ctx context.Context, method, path string, query url.Values, in, out interface{}) error {
	endpoint := c.baseURL.JoinPath(apiPrefix, path)
	endpoint.RawQuery = query.Encode()

	var rawBody interface{}

	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return errors.Wrap(err, "request body")
		}

		rawBody = b
	}

	if method == http.MethodPost {
		ctx = withNonIdempotent(ctx)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, method, endpoint.String(), rawBody)
	if err != nil {
		return errors.Wrap(ErrStoreQuery, err.Error())
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", version.UserAgent())

	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return errors.Wrap(ErrStoreQuery, err.Error())
	}

	defer resp.Body.Close()

	if err := checkResponse(method, endpoint.Path, resp); err != nil {
		return err
	}

	if out == nil {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrap(ErrStoreResponse, fmt.Sprintf("%s %s: %s", method, endpoint.Path, err.Error()))
	}

	return nil
}

func checkResponse(method, path string, resp *http.Response) error {
	if resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices {
		return nil
	}

	body, _ := io.ReadAll(io.LimitReader(resp.Body, errBodyLimit))
	msg := fmt.Sprintf("%s %s: %s %s", method, path, resp.Status, string(bytes.TrimSpace(body)))

	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return errors.Wrap(ErrStoreAuth, msg)
	default:
		return errors.Wrap(ErrStoreQuery, msg)
	}
}
