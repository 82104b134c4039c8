package opensky

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/francois-poidevin/adsbchecker/internal/app"
	"github.com/francois-poidevin/adsbchecker/internal/app/tools"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// state vector indexes, see https://openskynetwork.github.io/opensky-api/rest.html
const (
	idxICAO24 = iota
	idxCallsign
	idxOriginCountry
	idxTimePosition
	idxLastContact
	idxLongitude
	idxLatitude
	idxBaroAltitude
	idxOnGround
	idxVelocity
	idxTrueTrack
	idxVerticalRate
)

type statesResponse struct {
	Time   int64           `json:"time"`
	States [][]interface{} `json:"states"`
}

// Client fetches state vectors from /states/all. Safe for concurrent use.
type Client struct {
	Log     *logrus.Logger
	conf    Configuration
	http    *http.Client
	limiter *rate.Limiter
}

func New(log *logrus.Logger, conf Configuration) *Client {
	limit := rate.Inf
	if conf.Rate > 0 {
		limit = rate.Limit(conf.Rate)
	}
	return &Client{
		Log:     log,
		conf:    conf,
		http:    &http.Client{Timeout: time.Duration(conf.Timeout) * time.Second},
		limiter: rate.NewLimiter(limit, 1),
	}
}

// GetStates returns every aircraft currently known to OpenSky, restricted to
// bbox when it is set.
func (c *Client) GetStates(ctx context.Context, bbox tools.Bbox) ([]app.Flight, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.statesURL(bbox), nil)
	if err != nil {
		return nil, err
	}
	if c.conf.Username != "" {
		req.SetBasicAuth(c.conf.Username, c.conf.Password)
	}

	c.Log.WithContext(ctx).WithFields(logrus.Fields{
		"url": req.URL.String(),
	}).Debug("Fetching states")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("opensky: unexpected status %s", resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	return Decode(ctx, body, c.Log)
}

func (c *Client) statesURL(bbox tools.Bbox) string {
	u := strings.TrimRight(c.conf.URL, "/") + "/states/all"
	if !bbox.IsSet() {
		return u
	}
	q := url.Values{}
	q.Set("lamin", strconv.FormatFloat(bbox.LatSW, 'f', -1, 64))
	q.Set("lomin", strconv.FormatFloat(bbox.LonSW, 'f', -1, 64))
	q.Set("lamax", strconv.FormatFloat(bbox.LatNE, 'f', -1, 64))
	q.Set("lomax", strconv.FormatFloat(bbox.LonNE, 'f', -1, 64))
	return u + "?" + q.Encode()
}

// Decode turns a /states/all body into flights. States without an icao24
// address are dropped.
func Decode(ctx context.Context, byt []byte, log *logrus.Logger) ([]app.Flight, error) {
	var data statesResponse
	if err := json.Unmarshal(byt, &data); err != nil {
		return nil, err
	}

	result := make([]app.Flight, 0, len(data.States))
	for _, state := range data.States {
		if len(state) <= idxVerticalRate {
			log.WithContext(ctx).WithFields(logrus.Fields{
				"length": len(state),
			}).Warn("Short state vector skipped")
			continue
		}
		if state[idxICAO24] == nil {
			continue
		}

		callsign := strings.TrimSpace(str(state[idxCallsign]))
		if callsign == "" {
			callsign = app.UNKNOWN
		}

		seen := num(state[idxTimePosition])
		if seen == nil {
			seen = num(state[idxLastContact])
		}
		timestamp := ""
		if seen != nil {
			timestamp = time.Unix(int64(*seen), 0).UTC().Format(time.RFC3339)
		}

		result = append(result, app.Flight{
			Callsign:     callsign,
			ICAO24:       str(state[idxICAO24]),
			Country:      str(state[idxOriginCountry]),
			Latitude:     num(state[idxLatitude]),
			Longitude:    num(state[idxLongitude]),
			Altitude:     num(state[idxBaroAltitude]),
			Velocity:     num(state[idxVelocity]),
			Heading:      num(state[idxTrueTrack]),
			VerticalRate: num(state[idxVerticalRate]),
			Timestamp:    timestamp,
		})
	}

	return result, nil
}

func str(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

func num(v interface{}) *float64 {
	if f, ok := v.(float64); ok {
		return &f
	}
	return nil
}
