package bcb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"CrediTech/internal/domain/models"
	domrepo "CrediTech/internal/domain/repository"
	icache "CrediTech/internal/service/cache"
	xhttp "CrediTech/pkg/http"
	applogger "CrediTech/pkg/logger"
	"CrediTech/pkg/util"

	"github.com/shopspring/decimal"
)

// ErrMalformedPayload is returned when the upstream body is not a JSON array of samples.
var ErrMalformedPayload = errors.New("bcb: malformed series payload")

// Client reads numbered series from the central bank SGS API:
// GET {base}/dados/serie/bcdata.sgs.{id}/dados?formato=json&dataInicio=dd/MM/yyyy&dataFim=dd/MM/yyyy
type Client struct {
	baseURL  string
	client   *xhttp.Client
	retries  int
	cache    icache.BytesCache
	cacheTTL time.Duration
	l        *applogger.Logger
}

type Option func(*Client)

// WithRetries sets how many attempts a fetch makes before giving up.
func WithRetries(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.retries = n
		}
	}
}

// WithCache stores raw non-empty payloads for ttl.
func WithCache(cache icache.BytesCache, ttl time.Duration) Option {
	return func(c *Client) {
		c.cache = cache
		c.cacheTTL = ttl
	}
}

func WithLogger(l *applogger.Logger) Option {
	return func(c *Client) { c.l = l }
}

func New(baseURL string, timeout time.Duration, opts ...Option) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  xhttp.NewClient(xhttp.WithTimeout(timeout)),
		retries: 1,
		l:       applogger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.l = applogger.OrNop(c.l).Component("bcb")
	return c
}

type sgsRecord struct {
	Data  string `json:"data"`
	Valor string `json:"valor"`
}

// FetchSeries implements repository.SeriesSource.
func (c *Client) FetchSeries(ctx context.Context, seriesID int, r models.DateRange) ([]models.SeriesPoint, error) {
	from, to := util.FormatSGSDate(r.From), util.FormatSGSDate(r.To)
	key := fmt.Sprintf("sgs:%d:%s:%s", seriesID, from, to)

	if c.cache != nil {
		if b, ok, err := c.cache.GetBytes(key); err != nil {
			c.l.Warn("series cache read failed", applogger.String("key", key), applogger.Error(err))
		} else if ok {
			if points, err := DecodeSeries(b); err == nil && len(points) > 0 {
				return points, nil
			}
		}
	}

	body, err := c.getWithRetry(ctx, fmt.Sprintf("/dados/serie/bcdata.sgs.%d/dados", seriesID), map[string][]string{
		"formato":    {"json"},
		"dataInicio": {from},
		"dataFim":    {to},
	})
	if err != nil {
		return nil, fmt.Errorf("fetch series %d: %w", seriesID, err)
	}

	points, err := DecodeSeries(body)
	if err != nil {
		return nil, fmt.Errorf("series %d: %w", seriesID, err)
	}
	if c.cache != nil && len(points) > 0 {
		if err := c.cache.SetBytes(key, body, c.cacheTTL); err != nil {
			c.l.Warn("series cache write failed", applogger.String("key", key), applogger.Error(err))
		}
	}
	c.l.Debug("series fetched", applogger.Int("series", seriesID), applogger.Int("points", len(points)))
	return points, nil
}

func (c *Client) get(ctx context.Context, path string, query map[string][]string) ([]byte, error) {
	var body []byte
	err := c.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:      xhttp.MethodGet,
		URL:         c.baseURL + path,
		Headers:     map[string]string{"Accept": "application/json"},
		QueryParams: query,
	}, &body)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", path, err)
	}
	return body, nil
}

func (c *Client) getWithRetry(ctx context.Context, path string, query map[string][]string) ([]byte, error) {
	var err error
	for i := 1; i <= c.retries; i++ {
		var body []byte
		body, err = c.get(ctx, path, query)
		if err == nil {
			return body, nil
		}
		if i == c.retries || !xhttp.IsRetryable(err) {
			break
		}
		select {
		case <-time.After(time.Duration(i) * 200 * time.Millisecond):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return nil, err
}

// DecodeSeries parses an SGS payload. Samples with an unparsable date or an
// empty, non-numeric or negative value are skipped.
func DecodeSeries(b []byte) ([]models.SeriesPoint, error) {
	var records []sgsRecord
	if err := json.Unmarshal(b, &records); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	out := make([]models.SeriesPoint, 0, len(records))
	for _, rec := range records {
		d, ok := util.ParseSGSDate(rec.Data)
		if !ok {
			continue
		}
		v, ok := parseValue(rec.Valor)
		if !ok {
			continue
		}
		out = append(out, models.SeriesPoint{Date: d, Value: v})
	}
	return out, nil
}

func parseValue(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	// some series are published with a decimal comma
	if strings.Contains(s, ",") && !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		if f, ferr := strconv.ParseFloat(s, 64); ferr == nil {
			d = decimal.NewFromFloat(f)
		} else {
			return 0, false
		}
	}
	if d.IsNegative() {
		return 0, false
	}
	return d.InexactFloat64(), true
}

var _ domrepo.SeriesSource = (*Client)(nil)
