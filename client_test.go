package kplr

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// catalogServer fakes the Exoplanet Archive: a POST endpoint answering
// with comma-delimited text.
func catalogServer(t *testing.T, response string, status int, capture *string) *Client {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		if capture != nil {
			*capture = string(body)
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(response))
	}))
	t.Cleanup(srv.Close)

	return New(NewConfig().WithCatalogURL(srv.URL).WithDataRoot(t.TempDir()))
}

// surveyServer fakes a MAST search table: a GET endpoint answering with a
// JSON array.
func surveyServer(t *testing.T, response string, status int, capture *map[string]string) *Client {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		if capture != nil {
			params := make(map[string]string)
			for k, vs := range r.URL.Query() {
				params[k] = vs[0]
			}
			*capture = params
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(response))
	}))
	t.Cleanup(srv.Close)

	return New(NewConfig().WithSurveyURL(srv.URL + "/%s/search.php").WithDataRoot(t.TempDir()))
}

const koiCSV = "kepoi_name,kepid,koi_period,koi_prad\n" +
	"K00752.01,10797460,9.48803557,2.26\n" +
	"K00752.02,10797460,54.4183827,2.83\n"

func TestClientKOI(t *testing.T) {
	t.Parallel()

	t.Run("fetch by number", func(t *testing.T) {
		t.Parallel()

		var body string
		c := catalogServer(t, koiCSV, http.StatusOK, &body)

		koi, err := c.KOI(context.Background(), 752.01)
		require.NoError(t, err)
		assert.Equal(t, "K00752.01", koi.Name)
		assert.Equal(t, int64(10797460), koi.KepID)

		// The archive wants its peculiar body form: quotes and pluses
		// unescaped, the KOI number zero-padded.
		assert.Equal(t, "table=cumulative&where=kepoi_name+like+'K00752.01'", body)
	})

	t.Run("fields are typed", func(t *testing.T) {
		t.Parallel()

		c := catalogServer(t, koiCSV, http.StatusOK, nil)

		koi, err := c.KOI(context.Background(), 752.01)
		require.NoError(t, err)

		period, err := koi.Row().Float("koi_period")
		require.NoError(t, err)
		assert.InDelta(t, 9.48803557, period, 1e-9)
	})

	t.Run("zero rows is not found", func(t *testing.T) {
		t.Parallel()

		c := catalogServer(t, "kepoi_name,kepid\n", http.StatusOK, nil)

		_, err := c.KOI(context.Background(), 999.99)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("ERROR marker in a 200 body fails", func(t *testing.T) {
		t.Parallel()

		c := catalogServer(t, "ERROR: invalid where clause", http.StatusOK, nil)

		_, err := c.KOIs(context.Background(), map[string]string{"where": "bogus"})
		assert.ErrorIs(t, err, ErrTransport)
	})

	t.Run("non-200 status fails", func(t *testing.T) {
		t.Parallel()

		c := catalogServer(t, "", http.StatusBadGateway, nil)

		_, err := c.KOI(context.Background(), 752.01)
		assert.ErrorIs(t, err, ErrTransport)
	})
}

func TestClientStar(t *testing.T) {
	t.Parallel()

	const starJSON = `[{"Kepler ID": "10797460", "RA (J2000)": "285.679421", "Dec (J2000)": "48.226200", "Teff": "5850", "2MASS ID": "19011402+4813345"}]`

	t.Run("fetch by id", func(t *testing.T) {
		t.Parallel()

		var params map[string]string
		c := surveyServer(t, starJSON, http.StatusOK, &params)

		star, err := c.Star(context.Background(), 10797460)
		require.NoError(t, err)
		assert.Equal(t, "10797460", star.ID())

		// MAST's fixed output parameters ride along with the search.
		assert.Equal(t, "Search", params["action"])
		assert.Equal(t, "JSON", params["outputformat"])
		assert.Equal(t, "dec", params["coordformat"])
		assert.Equal(t, "3", params["verb"])
		assert.Equal(t, "10797460", params["kic_kepler_id"])
		assert.Equal(t, "1", params["max_records"])
	})

	t.Run("adapter shapes and types fields", func(t *testing.T) {
		t.Parallel()

		c := surveyServer(t, starJSON, http.StatusOK, nil)

		star, err := c.Star(context.Background(), 10797460)
		require.NoError(t, err)

		ra, err := star.Row().Float("kic_degree_ra")
		require.NoError(t, err)
		assert.InDelta(t, 285.679421, ra, 1e-6)

		id, err := star.Row().Str("kic_2mass_id")
		require.NoError(t, err)
		assert.Equal(t, "19011402+4813345", id)
	})

	t.Run("listing caps at 100 by default", func(t *testing.T) {
		t.Parallel()

		var params map[string]string
		c := surveyServer(t, "[]", http.StatusOK, &params)

		_, err := c.Stars(context.Background(), nil)
		require.NoError(t, err)
		assert.Equal(t, "100", params["max_records"])
	})

	t.Run("sort becomes ordercolumn1", func(t *testing.T) {
		t.Parallel()

		var params map[string]string
		c := surveyServer(t, "[]", http.StatusOK, &params)

		_, err := c.Stars(context.Background(), map[string]string{"sort": "kic_kepmag"})
		require.NoError(t, err)
		assert.Equal(t, "kic_kepmag", params["ordercolumn1"])
		assert.NotContains(t, params, "sort")
	})

	t.Run("zero rows is not found", func(t *testing.T) {
		t.Parallel()

		c := surveyServer(t, "[]", http.StatusOK, nil)

		_, err := c.Star(context.Background(), 1)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("non-200 status fails", func(t *testing.T) {
		t.Parallel()

		c := surveyServer(t, "service unavailable", http.StatusServiceUnavailable, nil)

		_, err := c.Star(context.Background(), 10797460)
		assert.ErrorIs(t, err, ErrTransport)
	})
}

func TestParsePlanetName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name            string
		input           string
		wantDesignation string
		wantLetter      string
		wantErr         bool
	}{
		{name: "full name", input: "Kepler-62b", wantDesignation: "62", wantLetter: "b"},
		{name: "spaced form", input: "62 b", wantDesignation: "62", wantLetter: "b"},
		{name: "compact form", input: "6b", wantDesignation: "6", wantLetter: "b"},
		{name: "garbage", input: "bogus", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			designation, letter, err := parsePlanetName(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrMalformedName)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantDesignation, designation)
			assert.Equal(t, tt.wantLetter, letter)
		})
	}
}

func TestClientPlanet(t *testing.T) {
	t.Parallel()

	const planetJSON = `[{"Kepler Name": "Kepler-62 b", "KOI": "701.02", "Kepler ID": "9002278", "Period": "5.714932"}]`

	t.Run("fetch by name", func(t *testing.T) {
		t.Parallel()

		var params map[string]string
		c := surveyServer(t, planetJSON, http.StatusOK, &params)

		planet, err := c.Planet(context.Background(), "Kepler-62b")
		require.NoError(t, err)
		assert.Equal(t, "Kepler-62 b", planet.KeplerName)
		assert.Equal(t, int64(9002278), planet.KepID)
		assert.InDelta(t, 701.02, planet.KOINumber, 1e-9)
		assert.Equal(t, "Kepler-62 b", params["kepler_name"])
	})

	t.Run("malformed name", func(t *testing.T) {
		t.Parallel()

		c := surveyServer(t, planetJSON, http.StatusOK, nil)

		_, err := c.Planet(context.Background(), "bogus")
		assert.ErrorIs(t, err, ErrMalformedName)
	})

	t.Run("unknown planet is not found", func(t *testing.T) {
		t.Parallel()

		c := surveyServer(t, "[]", http.StatusOK, nil)

		_, err := c.Planet(context.Background(), "Kepler-99999z")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestClientDataSearch(t *testing.T) {
	t.Parallel()

	const datasetJSON = `[
		{"Kepler ID": "758591", "Dataset Name": "KPLR008561063-2013011073258", "Target Type": "LC"},
		{"Kepler ID": "758591", "Dataset Name": "KPLR008561063-2013011144444", "Target Type": "SC"}
	]`

	t.Run("light curves", func(t *testing.T) {
		t.Parallel()

		c := surveyServer(t, datasetJSON, http.StatusOK, nil)

		curves, err := c.LightCurves(context.Background(), 758591)
		require.NoError(t, err)
		require.Len(t, curves, 2)
		assert.Equal(t, "KPLR008561063-2013011073258_LC", curves[0].ID())
		assert.Equal(t, "LightCurve(\"KPLR008561063-2013011073258_LC\")", curves[0].String())
	})

	t.Run("long cadence only adds the target type filter", func(t *testing.T) {
		t.Parallel()

		var params map[string]string
		c := surveyServer(t, datasetJSON, http.StatusOK, &params)

		_, err := c.LightCurves(context.Background(), 758591, LongCadenceOnly())
		require.NoError(t, err)
		assert.Equal(t, "LC", params["ktc_target_type"])
	})

	t.Run("no data sets is not found", func(t *testing.T) {
		t.Parallel()

		c := surveyServer(t, "[]", http.StatusOK, nil)

		_, err := c.TargetPixelFiles(context.Background(), 1)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestClientConcurrentUse(t *testing.T) {
	t.Parallel()

	c := catalogServer(t, koiCSV, http.StatusOK, nil)

	// Concurrent lookups share one Config; the lazily built HTTP client
	// and logger must be safe to initialize from many goroutines.
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			koi, err := c.KOI(context.Background(), 752.01)
			if assert.NoError(t, err) {
				assert.Equal(t, "K00752.01", koi.Name)
			}
		}()
	}
	wg.Wait()
}

func TestParseCatalogCSV(t *testing.T) {
	t.Parallel()

	rows := parseCatalogCSV("a,b,c\n1,2.5,x\n,,\n")
	require.Len(t, rows, 2)
	assert.Equal(t, Row{"a": int64(1), "b": float64(2.5), "c": "x"}, rows[0])
	assert.Equal(t, Row{"a": nil, "b": nil, "c": nil}, rows[1])
}

func TestCatalogEscape(t *testing.T) {
	t.Parallel()

	// Quotes and plus signs must ride through unescaped; everything else
	// gets standard query escaping (space becomes plus).
	assert.Equal(t, "kepid+like+'12345'", catalogEscape("kepid like '12345'"))
	assert.Equal(t, `"a"+b%26c`, catalogEscape(`"a" b&c`))
}
