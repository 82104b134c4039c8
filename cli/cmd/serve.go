package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/francois-poidevin/adsbchecker/config"
	"github.com/francois-poidevin/adsbchecker/internal"
	"github.com/francois-poidevin/adsbchecker/internal/app"
	"github.com/francois-poidevin/adsbchecker/internal/app/metrics"
	"github.com/francois-poidevin/adsbchecker/internal/app/opensky"
	"github.com/francois-poidevin/adsbchecker/internal/app/service"
	"github.com/francois-poidevin/adsbchecker/internal/app/tools"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const timeLayout = "2006-01-02T15:04:05"

type parameters struct {
	Bbox               tools.Bbox `json:"bbox"`
	FromTimeStampParam time.Time  `json:"fromTimeStampParam"`
	ToTimeStampParam   time.Time  `json:"toTimeStampParam"`
}

type response struct {
	Parameters parameters   `json:"parameters"`
	NbFlight   int          `json:"nbFlight"`
	Data       []app.Flight `json:"data"`
}

// api serves live and persisted flights and drives a background monitoring loop
type api struct {
	log     *logrus.Logger
	fetcher internal.Fetcher
	search  app.Service
	metrics *metrics.Metrics

	// run is the monitoring loop started by /start
	run func(ctx context.Context) error

	mu      sync.Mutex
	cancel  context.CancelFunc
	running bool
}

var serveBindings = map[string]string{
	"server.listen":      "listen",
	"checker.sinkertype": "sinkerType",
}

// serveCmd represents the serve command
// see https://dev.to/moficodes/build-your-first-rest-api-with-go-2gcj
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API around the ADS-B checker",
	Long:  `The HTTP Rest API service start with config parameters. Several endpoints are available under /api/v1 `,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		// Initialize config
		if err := initConfig(cmd.Flags(), serveBindings); err != nil {
			return err
		}

		m := metrics.New()
		a := &api{
			log:     log,
			fetcher: opensky.New(log, conf.Checker.Opensky),
			metrics: m,
			run:     monitor(log, *conf, m),
		}

		if hasDBSinker(conf.Checker.Sinkertype) {
			searchSvc, err := service.Open(ctx, log, conf.Checker.Postgres)
			if err != nil {
				return fmt.Errorf("unable to open search service: %w", err)
			}
			defer searchSvc.Close()
			a.search = searchSvc
		} else {
			log.Warn("No DB sinker configured, /api/v1/search is disabled")
		}

		log.WithFields(logrus.Fields{
			"listen": conf.Server.Listen,
		}).Info("Starting HTTP server")

		//Start http server here
		return http.ListenAndServe(conf.Server.Listen, newRouter(a))
	},
}

func hasDBSinker(sinkertype string) bool {
	for _, kind := range strings.Split(sinkertype, ",") {
		if strings.EqualFold(strings.TrimSpace(kind), "DB") {
			return true
		}
	}
	return false
}

func monitor(log *logrus.Logger, c config.Configuration, m *metrics.Metrics) func(ctx context.Context) error {
	c.Checker.Continuous = true
	return func(ctx context.Context) error {
		return internal.Run(ctx, log, c, m)
	}
}

func newRouter(a *api) *mux.Router {
	r := mux.NewRouter()

	v1 := r.PathPrefix("/api/v1").Subrouter()
	v1.HandleFunc("/start", a.startService).Methods(http.MethodGet)
	v1.HandleFunc("/stop", a.stopService).Methods(http.MethodGet)
	v1.HandleFunc("/flights", a.flightsService).Methods(http.MethodGet)
	v1.HandleFunc("/search", a.searchService).Methods(http.MethodGet)
	r.Handle("/metrics", a.metrics.Handler()).Methods(http.MethodGet)

	return r
}

func writeMessage(w http.ResponseWriter, status int, format string, args ...interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	btes, _ := json.Marshal(map[string]string{"message": fmt.Sprintf(format, args...)})
	w.Write(btes)
}

func writeResponse(w http.ResponseWriter, resp response) {
	result, errJsonMarshal := json.Marshal(resp)
	if errJsonMarshal != nil {
		writeMessage(w, http.StatusInternalServerError, "internal server error (%s)", errJsonMarshal.Error())
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(result)
}

//Start monitoring loop
func (a *api) startService(w http.ResponseWriter, r *http.Request) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.running {
		writeMessage(w, http.StatusForbidden, "monitoring already processing")
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel
	a.running = true

	go func() {
		errExec := a.run(ctx)
		if errExec != nil {
			a.log.WithContext(ctx).WithFields(logrus.Fields{
				"Error": errExec,
			}).Error("Error in Execute processing")
		}
		a.mu.Lock()
		if a.running && ctx.Err() == nil {
			a.running = false
			a.cancel = nil
		}
		a.mu.Unlock()
		cancel()
	}()

	writeMessage(w, http.StatusAccepted, "start monitoring called")
}

//Stop monitoring loop
func (a *api) stopService(w http.ResponseWriter, r *http.Request) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.running {
		writeMessage(w, http.StatusForbidden, "monitoring is not processing currently")
		return
	}
	a.cancel()
	a.cancel = nil
	a.running = false
	writeMessage(w, http.StatusOK, "stop monitoring called and done")
}

//Live flights, optionally restricted to bbox
func (a *api) flightsService(w http.ResponseWriter, r *http.Request) {
	bbox, errBBox := tools.GetBbox(r.URL.Query().Get("bbox"))
	if errBBox != nil {
		writeMessage(w, http.StatusBadRequest, "bbox have to be well formatted (%s)", errBBox.Error())
		return
	}

	start := time.Now()
	data, err := a.fetcher.GetStates(r.Context(), bbox)
	a.metrics.Observe(start, len(data), err)
	if err != nil {
		writeMessage(w, http.StatusBadGateway, "opensky error (%s)", err.Error())
		return
	}

	writeResponse(w, response{
		Parameters: parameters{Bbox: bbox},
		NbFlight:   len(data),
		Data:       data,
	})
}

//Search on persisted flights
// params : BBox, time windows (from, to)
func (a *api) searchService(w http.ResponseWriter, r *http.Request) {
	if a.search == nil {
		writeMessage(w, http.StatusServiceUnavailable, "search needs a DB sinker, please change config file")
		return
	}

	query := r.URL.Query()
	//Check bbox parameter
	bbox, errBBox := tools.GetBbox(query.Get("bbox"))
	if errBBox != nil || !bbox.IsSet() {
		msg := "missing bbox"
		if errBBox != nil {
			msg = errBBox.Error()
		}
		writeMessage(w, http.StatusBadRequest, "bbox have to be well formatted (%s)", msg)
		return
	}

	//Check time windows parameters
	fromTimeStamp, errFrom := time.Parse(timeLayout, query.Get("fromTimeStamp"))
	if errFrom != nil {
		writeMessage(w, http.StatusBadRequest, "need a time with layout (%s) - error: %s", timeLayout, errFrom.Error())
		return
	}
	toTimeStamp, errTo := time.Parse(timeLayout, query.Get("toTimeStamp"))
	if errTo != nil {
		writeMessage(w, http.StatusBadRequest, "need a time with layout (%s) - error: %s", timeLayout, errTo.Error())
		return
	}

	data, errSearch := a.search.Search(r.Context(), bbox, fromTimeStamp, toTimeStamp)
	if errSearch != nil {
		writeMessage(w, http.StatusInternalServerError, "internal server error (%s)", errSearch.Error())
		return
	}

	writeResponse(w, response{
		Parameters: parameters{
			Bbox:               bbox,
			FromTimeStampParam: fromTimeStamp,
			ToTimeStampParam:   toTimeStamp,
		},
		NbFlight: len(data),
		Data:     data,
	})
}

func init() {
	serveCmd.Flags().String("listen", ":8080", "HTTP listen address")
	serveCmd.Flags().String("sinkerType", "STDOUT", "sinker types used by /start, DB enables /search")
}
