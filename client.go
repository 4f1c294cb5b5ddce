package kplr

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// Client queries the Exoplanet Archive and MAST over HTTP. Methods block
// until the archive responds; use the Config HTTP timeout (or a context
// deadline) to bound them. A Client is safe for concurrent use.
type Client struct {
	cfg *Config
}

// New returns a Client using cfg, or default configuration when cfg is nil.
func New(cfg *Config) *Client {
	if cfg == nil {
		cfg = NewConfig()
	}
	return &Client{cfg: cfg}
}

// NewFromEnv returns a Client configured from KPLR_* environment variables.
func NewFromEnv() (*Client, error) {
	cfg, err := ConfigFromEnv()
	if err != nil {
		return nil, err
	}
	return New(cfg), nil
}

func (c *Client) config() *Config {
	return c.cfg
}

// catalogRequest submits a query to the Exoplanet Archive and returns the
// normalized rows. The archive wants a raw k=v&k=v body with quotes and
// plus signs left unescaped, and reports application errors with an
// "ERROR" marker in a 200 response body.
//
// The response is comma-delimited text with a header line. The format has
// no quoting, so a value containing a comma corrupts the positional zip;
// the archive does not emit such values.
func (c *Client) catalogRequest(ctx context.Context, table string, params map[string]string) ([]Row, error) {
	merged := map[string]string{"table": table}
	for k, v := range params {
		merged[k] = v
	}

	keys := make([]string, 0, len(merged))
	for k := range merged {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+catalogEscape(merged[k]))
	}
	payload := strings.Join(pairs, "&")

	c.cfg.log().Debug("querying exoplanet archive",
		zap.String("table", table),
		zap.String("payload", payload))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.CatalogURL, strings.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	body, status, err := c.do(req)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("%w: exoplanet archive returned %d", ErrTransport, status)
	}
	// The archive does not use HTTP status codes for application errors.
	if strings.Contains(body, "ERROR") {
		return nil, fmt.Errorf("%w: exoplanet archive failed with message: %s", ErrTransport, body)
	}

	return parseCatalogCSV(body), nil
}

// catalogEscape encodes a parameter value the way the Exoplanet Archive
// requires: standard query escaping except that quotes and plus signs
// pass through.
func catalogEscape(v string) string {
	e := url.QueryEscape(v)
	return strings.NewReplacer("%22", `"`, "%27", "'", "%2B", "+").Replace(e)
}

// parseCatalogCSV zips each data line with the header line and normalizes
// the resulting rows.
func parseCatalogCSV(body string) []Row {
	lines := strings.Split(body, "\n")
	columns := strings.Split(strings.TrimRight(lines[0], "\r"), ",")

	rows := make([]Row, 0, len(lines)-1)
	for _, line := range lines[1:] {
		line = strings.TrimRight(line, "\r")
		if line == "" {
			continue
		}
		values := strings.Split(line, ",")
		raw := make(map[string]any, len(columns))
		for i, col := range columns {
			if i >= len(values) {
				break
			}
			raw[col] = values[i]
		}
		rows = append(rows, normalizeRow(raw))
	}
	return rows
}

// surveyRequest submits a query to a MAST search table and returns the
// shaped rows. MAST expects a fixed set of output parameters alongside the
// search parameters; a caller-supplied "sort" parameter is translated to
// MAST's ordercolumn1. Rows pass through adapter when given, otherwise
// through default normalization.
func (c *Client) surveyRequest(ctx context.Context, category string, adapter Adapter, params map[string]string) ([]Row, error) {
	values := url.Values{}
	values.Set("action", "Search")
	values.Set("outputformat", "JSON")
	values.Set("coordformat", "dec")
	values.Set("verb", "3")
	for k, v := range params {
		if k == "sort" {
			values.Set("ordercolumn1", v)
			continue
		}
		values.Set(k, v)
	}

	endpoint := fmt.Sprintf(c.cfg.SurveyURL, category) + "?" + values.Encode()
	c.cfg.log().Debug("querying mast", zap.String("category", category), zap.String("url", endpoint))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	body, status, err := c.do(req)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("%w: mast returned %d with message: %s", ErrTransport, status, body)
	}

	var raw []map[string]any
	if err := json.Unmarshal([]byte(body), &raw); err != nil {
		return nil, fmt.Errorf("kplr: decoding mast response: %w", err)
	}

	rows := make([]Row, 0, len(raw))
	for _, r := range raw {
		if adapter != nil {
			rows = append(rows, adapter(r))
			continue
		}
		rows = append(rows, normalizeRow(r))
	}
	return rows, nil
}

func (c *Client) do(req *http.Request) (string, int, error) {
	resp, err := c.cfg.client().Do(req)
	if err != nil {
		return "", 0, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", 0, fmt.Errorf("%w: reading response: %v", ErrTransport, err)
	}
	return string(body), resp.StatusCode, nil
}

// KOIs lists KOIs from the Exoplanet Archive's cumulative table. The
// params map is passed through to the archive; use "where" for filters.
func (c *Client) KOIs(ctx context.Context, params map[string]string) ([]*KOI, error) {
	rows, err := c.catalogRequest(ctx, "cumulative", params)
	if err != nil {
		return nil, err
	}
	kois := make([]*KOI, 0, len(rows))
	for _, row := range rows {
		koi, err := newKOI(c, row)
		if err != nil {
			return nil, err
		}
		kois = append(kois, koi)
	}
	return kois, nil
}

// KOI fetches a single KOI by number, for example 952.01. The number is
// matched against the archive's zero-padded KOI names; a query expected to
// be unique that returns several rows yields the first.
func (c *Client) KOI(ctx context.Context, number float64) (*KOI, error) {
	where := fmt.Sprintf("kepoi_name like '%s'", koiName(number))
	kois, err := c.KOIs(ctx, map[string]string{"where": where})
	if err != nil {
		return nil, err
	}
	if len(kois) == 0 {
		return nil, fmt.Errorf("%w: no KOI with number %.2f", ErrNotFound, number)
	}
	return kois[0], nil
}

// koiName renders a KOI number in the archive's K00000.00 form.
func koiName(number float64) string {
	return fmt.Sprintf("K%08.2f", number)
}

// Planets lists confirmed Kepler planets from MAST.
func (c *Client) Planets(ctx context.Context, params map[string]string) ([]*Planet, error) {
	rows, err := c.surveyRequest(ctx, "confirmed_planets", planetAdapter, params)
	if err != nil {
		return nil, err
	}
	planets := make([]*Planet, 0, len(rows))
	for _, row := range rows {
		p, err := newPlanet(c, row)
		if err != nil {
			return nil, err
		}
		planets = append(planets, p)
	}
	return planets, nil
}

var planetNameRe = regexp.MustCompile(`([0-9]+)[-\s]*([a-zA-Z])`)

// parsePlanetName extracts the numeric designation and letter suffix from
// a free-form planet name. "Kepler-62b" and "62 b" both parse to ("62",
// "b"); anything without exactly one designation-letter pair is malformed.
func parsePlanetName(name string) (designation, letter string, err error) {
	matches := planetNameRe.FindAllStringSubmatch(name, -1)
	if len(matches) != 1 {
		return "", "", fmt.Errorf("%w: %q", ErrMalformedName, name)
	}
	return matches[0][1], matches[0][2], nil
}

// Planet fetches a confirmed planet by name, for example "62b" or
// "Kepler-62b".
func (c *Client) Planet(ctx context.Context, name string) (*Planet, error) {
	designation, letter, err := parsePlanetName(name)
	if err != nil {
		return nil, err
	}
	keplerName := fmt.Sprintf("Kepler-%s %s", designation, letter)

	planets, err := c.Planets(ctx, map[string]string{
		"kepler_name": keplerName,
		"max_records": "1",
	})
	if err != nil {
		return nil, err
	}
	if len(planets) == 0 {
		return nil, fmt.Errorf("%w: no planet named %q", ErrNotFound, keplerName)
	}
	return planets[0], nil
}

// Stars lists KIC targets from MAST. Listings are capped at 100 records
// unless params overrides max_records.
func (c *Client) Stars(ctx context.Context, params map[string]string) ([]*Star, error) {
	merged := map[string]string{"max_records": "100"}
	for k, v := range params {
		merged[k] = v
	}

	rows, err := c.surveyRequest(ctx, "kic10", starAdapter, merged)
	if err != nil {
		return nil, err
	}
	stars := make([]*Star, 0, len(rows))
	for _, row := range rows {
		s, err := newStar(c, row)
		if err != nil {
			return nil, err
		}
		stars = append(stars, s)
	}
	return stars, nil
}

// Star fetches a single KIC target by Kepler ID.
func (c *Client) Star(ctx context.Context, kepid int64) (*Star, error) {
	stars, err := c.Stars(ctx, map[string]string{
		"kic_kepler_id": strconv.FormatInt(kepid, 10),
		"max_records":   "1",
	})
	if err != nil {
		return nil, err
	}
	if len(stars) == 0 {
		return nil, fmt.Errorf("%w: no KIC target with id %d", ErrNotFound, kepid)
	}
	return stars[0], nil
}

func (c *Client) koisForStar(ctx context.Context, kepid int64) ([]*KOI, error) {
	where := fmt.Sprintf("kepid like '%d'", kepid)
	return c.KOIs(ctx, map[string]string{"where": where})
}

// dataSearch queries MAST's data_search table for the data sets of a
// target. At least one match is required.
func (c *Client) dataSearch(ctx context.Context, kepid int64, opts []DataSearchOption) ([]Row, error) {
	ds := newDataSearch(opts)
	params := map[string]string{
		"ktc_kepler_id": strconv.FormatInt(kepid, 10),
	}
	if ds.longCadenceOnly {
		params["ktc_target_type"] = "LC"
	}

	rows, err := c.surveyRequest(ctx, "data_search", datasetAdapter, params)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: no data files for Kepler ID %d", ErrNotFound, kepid)
	}
	return rows, nil
}

// LightCurves lists the light curve data sets available for a Kepler ID.
func (c *Client) LightCurves(ctx context.Context, kepid int64, opts ...DataSearchOption) ([]*LightCurve, error) {
	rows, err := c.dataSearch(ctx, kepid, opts)
	if err != nil {
		return nil, err
	}
	curves := make([]*LightCurve, 0, len(rows))
	for _, row := range rows {
		lc, err := newLightCurve(c, row)
		if err != nil {
			return nil, err
		}
		curves = append(curves, lc)
	}
	return curves, nil
}

// TargetPixelFiles lists the target pixel file data sets available for a
// Kepler ID.
func (c *Client) TargetPixelFiles(ctx context.Context, kepid int64, opts ...DataSearchOption) ([]*TargetPixelFile, error) {
	rows, err := c.dataSearch(ctx, kepid, opts)
	if err != nil {
		return nil, err
	}
	files := make([]*TargetPixelFile, 0, len(rows))
	for _, row := range rows {
		tpf, err := newTargetPixelFile(c, row)
		if err != nil {
			return nil, err
		}
		files = append(files, tpf)
	}
	return files, nil
}
