package opensky

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/francois-poidevin/adsbchecker/internal/app"
	"github.com/francois-poidevin/adsbchecker/internal/app/tools"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var log *logrus.Logger

const statesBody = `{
  "time": 1700000000,
  "states": [
    ["3c6444", "DLH9LF  ", "Germany", 1700000000, 1700000001, 1.45, 43.6, 10972.8, false, 231.5, 87.3, 0.0, null, 11277.6, "1000", false, 0],
    [null, "GHOST", "Nowhere", 1700000000, 1700000001, 0, 0, 0, false, 0, 0, 0, null, 0, null, false, 0],
    ["39de4f", "", "France", null, 1699999990, null, null, null, true, null, null, null, null, null, null, false, 0],
    ["short"]
  ]
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(log, Configuration{URL: srv.URL, Timeout: 5})
}

func TestDecode(t *testing.T) {
	flights, err := Decode(context.Background(), []byte(statesBody), log)
	require.NoError(t, err)
	require.Len(t, flights, 2)

	first := flights[0]
	assert.Equal(t, "DLH9LF", first.Callsign)
	assert.Equal(t, "3c6444", first.ICAO24)
	assert.Equal(t, "Germany", first.Country)
	require.NotNil(t, first.Latitude)
	assert.Equal(t, 43.6, *first.Latitude)
	require.NotNil(t, first.Longitude)
	assert.Equal(t, 1.45, *first.Longitude)
	assert.Equal(t, 10972.8, *first.Altitude)
	assert.Equal(t, 231.5, *first.Velocity)
	assert.Equal(t, 87.3, *first.Heading)
	assert.Equal(t, 0.0, *first.VerticalRate)
	assert.Equal(t, "2023-11-14T22:13:20Z", first.Timestamp)

	second := flights[1]
	assert.Equal(t, app.UNKNOWN, second.Callsign)
	assert.Nil(t, second.Altitude)
	assert.Nil(t, second.Heading)
	assert.Equal(t, "2023-11-14T22:13:10Z", second.Timestamp)
}

func TestDecodeNullStates(t *testing.T) {
	flights, err := Decode(context.Background(), []byte(`{"time": 1, "states": null}`), log)
	require.NoError(t, err)
	assert.Empty(t, flights)
}

func TestDecodeInvalid(t *testing.T) {
	_, err := Decode(context.Background(), []byte(`<html>`), log)
	assert.Error(t, err)
}

func TestGetStates(t *testing.T) {
	var gotPath, gotQuery string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		w.Write([]byte(statesBody))
	})

	flights, err := client.GetStates(context.Background(), tools.Bbox{})

	require.NoError(t, err)
	assert.Len(t, flights, 2)
	assert.Equal(t, "/states/all", gotPath)
	assert.Empty(t, gotQuery)
}

func TestGetStatesBboxAndAuth(t *testing.T) {
	var user, pass, lamin, lomax string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		user, pass, _ = r.BasicAuth()
		lamin = r.URL.Query().Get("lamin")
		lomax = r.URL.Query().Get("lomax")
		w.Write([]byte(`{"time": 1, "states": []}`))
	})
	client.conf.Username = "pilot"
	client.conf.Password = "secret"

	bbox, err := tools.GetBbox("43.52,1.32^43.7,1.69")
	require.NoError(t, err)

	_, err = client.GetStates(context.Background(), bbox)

	require.NoError(t, err)
	assert.Equal(t, "pilot", user)
	assert.Equal(t, "secret", pass)
	assert.Equal(t, "43.52", lamin)
	assert.Equal(t, "1.69", lomax)
}

func TestStatesURLOriginBbox(t *testing.T) {
	client := New(log, Configuration{URL: "https://opensky.test/api/"})

	origin, err := tools.GetBbox("0,0^0,0")
	require.NoError(t, err)

	assert.Equal(t, "https://opensky.test/api/states/all", client.statesURL(tools.Bbox{}))
	assert.Equal(t, "https://opensky.test/api/states/all?lamax=0&lamin=0&lomax=0&lomin=0", client.statesURL(origin))
}

func TestGetStatesHTTPError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := client.GetStates(context.Background(), tools.Bbox{})

	assert.ErrorContains(t, err, "429")
}

func TestGetStatesCancelled(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(statesBody))
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.GetStates(ctx, tools.Bbox{})

	assert.Error(t, err)
}

func init() {

	//log handling
	log = logrus.New()
	log.Formatter = new(logrus.TextFormatter)
	log.Formatter.(*logrus.TextFormatter).DisableColors = true
	log.Formatter.(*logrus.TextFormatter).DisableTimestamp = true
	log.Level = logrus.TraceLevel
	log.Out = os.Stdout
}
