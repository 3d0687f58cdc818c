package yahoo

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(handler http.Handler) (*Client, *httptest.Server) {
	server := httptest.NewServer(handler)
	client := NewClient(zerolog.Nop())
	client.baseURL = server.URL
	return client, server
}

func TestGetDailyCloses(t *testing.T) {
	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	payload := fmt.Sprintf(`{
		"chart": {
			"result": [{
				"timestamp": [%d, %d, %d],
				"indicators": {
					"quote": [{"close": [100.0, null, 102.0]}],
					"adjclose": [{"adjclose": [99.0, null, 101.5]}]
				}
			}],
			"error": null
		}
	}`, day.Unix(), day.AddDate(0, 0, 1).Unix(), day.AddDate(0, 0, 2).Unix())

	client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "/v8/finance/chart/SPY")
		assert.Equal(t, "1d", r.URL.Query().Get("interval"))
		fmt.Fprint(w, payload)
	}))
	defer server.Close()

	prices, err := client.GetDailyCloses("SPY", day, day.AddDate(0, 0, 3))
	require.NoError(t, err)

	// The null close day is skipped and adjusted closes are preferred.
	require.Len(t, prices, 2)
	assert.Equal(t, 99.0, prices[0].Close)
	assert.True(t, prices[0].Date.Equal(day))
	assert.Equal(t, 101.5, prices[1].Close)
}

func TestGetDailyCloses_HTTPError(t *testing.T) {
	client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	}))
	defer server.Close()

	_, err := client.GetDailyCloses("NOPE", time.Now().AddDate(0, -1, 0), time.Now())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestGetDailyCloses_EmptyResult(t *testing.T) {
	client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"chart": {"result": [], "error": null}}`)
	}))
	defer server.Close()

	_, err := client.GetDailyCloses("SPY", time.Now().AddDate(0, -1, 0), time.Now())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no chart data")
}
