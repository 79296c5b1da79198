package internal

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/mstanek/fitsite/internal/analytics"
	"github.com/mstanek/fitsite/internal/config"
	"github.com/mstanek/fitsite/internal/middleware"
	"github.com/mstanek/fitsite/internal/sheets"
	"github.com/mstanek/fitsite/internal/store"
	"github.com/mstanek/fitsite/internal/strava"
	"github.com/mstanek/fitsite/internal/telemetry/metrics"
	"github.com/mstanek/fitsite/internal/telemetry/tracing"
	"github.com/mstanek/fitsite/pkg"

	"github.com/getsentry/sentry-go"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type Server struct {
	httpServer        *http.Server
	metricsHttpServer *http.Server

	config       *config.Config
	versionInfo  string
	analyzer     *analytics.Analyzer
	fileStore    *store.FileStore
	stravaClient *strava.Client
	sheetsClient *sheets.Client

	// metrics
	metricsManager *metrics.Manager
	promRegistry   *prometheus.Registry
}

type NewServerParams struct {
	Config      *config.Config
	Secrets     config.Secrets
	VersionInfo string
}

func NewServer(ctx context.Context, params NewServerParams) (*Server, error) {
	promRegistry := metrics.SetupPrometheus()
	metricsManager := metrics.NewManager("fitsite", "main", promRegistry)
	metricsManager.GaugeLifeSignal.Set(0)

	tracedHttpClient := &http.Client{
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}

	stravaClient := strava.NewClient(
		params.Config.StravaAPIBase,
		params.Config.StravaTokenURL,
		params.Secrets.StravaClientID,
		params.Secrets.StravaClientSecret,
		params.Secrets.StravaRefreshToken,
		tracedHttpClient,
	)

	// the sheets client is optional, workouts can also come from a
	// local export through the CLI
	var sheetsClient *sheets.Client
	if params.Secrets.SheetsCredentials != "" || params.Config.CredentialsFile != "" {
		var err error
		sheetsClient, err = sheets.NewClient(
			ctx,
			params.Config.SheetID,
			params.Config.SheetRange,
			[]byte(params.Secrets.SheetsCredentials),
			params.Config.CredentialsFile,
		)
		if err != nil {
			log.Errorf("failed to create sheets client: %s", err)
			sheetsClient = nil
		}
	} else {
		log.Warnln("no google sheets credentials, workout refresh disabled")
	}

	return &Server{
		config:         params.Config,
		versionInfo:    params.VersionInfo,
		analyzer:       analytics.NewAnalyzer(),
		fileStore:      store.NewFileStore(params.Config.DataDir),
		stravaClient:   stravaClient,
		sheetsClient:   sheetsClient,
		metricsManager: metricsManager,
		promRegistry:   promRegistry,
	}, nil
}

func (s *Server) routerSetup() *mux.Router {
	r := mux.NewRouter()
	r.Use(otelmux.Middleware("main-router"))

	statsHandler := analytics.NewHandler(s.analyzer, s.fileStore)
	statsHandler.SetupRoutes(r.PathPrefix("/stats").Subrouter())

	r.HandleFunc("/refresh", s.handleRefresh).Methods("POST", "OPTIONS").Name("refresh")
	r.HandleFunc("/version", s.handleVersion).Methods("GET").Name("version")

	// all the rest - unhandled paths
	r.HandleFunc("/{unknown}", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}).Methods("GET", "POST", "PUT", "OPTIONS").Name("unknown")

	r.Use(middleware.PanicRecovery(s.metricsManager))
	r.Use(middleware.LogRequest())
	r.Use(middleware.RequestMetrics(s.metricsManager))
	r.Use(middleware.Cors())
	r.Use(middleware.DrainAndCloseRequest())

	return r
}

// handleRefresh pulls fresh data from the activity feed and the
// workout sheet and persists both for the stats endpoints.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.refresh")
	defer span.End()

	started := time.Now()

	activities, err := s.stravaClient.FetchAllActivities(ctx)
	if err != nil {
		log.Errorf("refresh: fetch activities: %s", err)
		http.Error(w, "failed to fetch activities", http.StatusBadGateway)
		return
	}
	if err := s.fileStore.SaveActivities(ctx, activities); err != nil {
		log.Errorf("refresh: save activities: %s", err)
		http.Error(w, "failed to save activities", http.StatusInternalServerError)
		return
	}
	s.metricsManager.CounterActivitiesFetched.Add(float64(len(activities)))

	workoutsRefreshed := false
	if s.sheetsClient != nil {
		workouts, err := s.sheetsClient.FetchWorkouts(ctx)
		if err != nil {
			log.Errorf("refresh: fetch workouts: %s", err)
			http.Error(w, "failed to fetch workouts", http.StatusBadGateway)
			return
		}
		if err := s.fileStore.SaveWorkouts(ctx, workouts); err != nil {
			log.Errorf("refresh: save workouts: %s", err)
			http.Error(w, "failed to save workouts", http.StatusInternalServerError)
			return
		}
		s.metricsManager.CounterWorkoutsIngested.Add(float64(len(workouts)))
		workoutsRefreshed = true
	}

	s.metricsManager.HistFetchDuration.Observe(time.Since(started).Seconds())

	pkg.WriteJSONResponseOK(w, strconv.Quote("refreshed"))
	log.Infof("refresh done: %d activities, workouts refreshed: %t", len(activities), workoutsRefreshed)
}

func (s *Server) handleVersion(w http.ResponseWriter, _ *http.Request) {
	pkg.WriteResponse(w, "text/plain", s.versionInfo)
}

func (s *Server) Serve(_ context.Context, host string, port int) {
	router := s.routerSetup()

	ipAndPort := net.JoinHostPort(host, strconv.Itoa(port))
	s.httpServer = &http.Server{
		Handler:      router,
		Addr:         ipAndPort,
		WriteTimeout: time.Minute,
		ReadTimeout:  time.Minute,
		ConnState:    s.connStateMetrics,
	}

	metricsRouter := mux.NewRouter()
	metricsRouter.Handle("/metrics", promhttp.HandlerFor(
		s.promRegistry,
		promhttp.HandlerOpts{},
	))
	metricsAddr := net.JoinHostPort(host, strconv.Itoa(s.config.MetricsPort))
	s.metricsHttpServer = &http.Server{
		Addr:    metricsAddr,
		Handler: metricsRouter,
	}

	go func() {
		log.Infof(" > server listening on: [%s]", ipAndPort)
		err := s.httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("main service, listen and serve: %s", err)
		}
	}()

	go func() {
		log.Debugf(" > metrics listening on: [%s]", metricsAddr)
		err := s.metricsHttpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("metrics service, listen and serve: %s", err)
		}
	}()

	s.metricsManager.GaugeLifeSignal.Set(1)
}

func (s *Server) GracefulShutdown() {
	log.Debug("graceful shutdown initiated ...")

	s.metricsManager.GaugeLifeSignal.Set(0)

	if ok := sentry.Flush(5 * time.Second); ok {
		log.Debugf("sentry flush ok: %t", ok)
	}

	maxWaitDuration := time.Second * 15
	ctx, timeoutCancel := context.WithTimeout(context.Background(), maxWaitDuration)
	defer timeoutCancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		log.Error(" >>> failed to gracefully shutdown http server")
	}
	log.Warnln("server shut down")

	if err := s.metricsHttpServer.Shutdown(ctx); err != nil {
		log.Error(" >>> failed to gracefully shutdown metrics http server")
	}
	log.Warnln("metrics server shut down")
}

func (s *Server) connStateMetrics(_ net.Conn, state http.ConnState) {
	switch state {
	case http.StateNew:
		s.metricsManager.GaugeRequests.Add(1)
	case http.StateClosed:
		s.metricsManager.GaugeRequests.Add(-1)
	}
}
