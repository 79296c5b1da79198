package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/mstanek/fitsite/internal"
	"github.com/mstanek/fitsite/internal/analytics"
	"github.com/mstanek/fitsite/internal/config"
	"github.com/mstanek/fitsite/internal/export"
	"github.com/mstanek/fitsite/internal/logging"
	"github.com/mstanek/fitsite/internal/models"
	"github.com/mstanek/fitsite/internal/sheets"
	"github.com/mstanek/fitsite/internal/store"
	"github.com/mstanek/fitsite/internal/strava"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const usage = `usage: fitsite <command> [flags]

commands:
  fetch     fetch activities and workouts from the sources
  analyze   print a workout summary from the stored data
  export    write the report files for the site
  serve     run the stats HTTP server
  all       fetch, analyze and export in one go
`

func main() {
	if len(os.Args) < 2 {
		fmt.Print(usage)
		os.Exit(2)
	}
	command := os.Args[1]

	flags := flag.NewFlagSet(command, flag.ExitOnError)
	env := flags.String("env", "development", "environment [prod | production | dev | development]")
	configPath := flags.String("config", "./config.toml", "path for the TOML config file")
	forceRefresh := flags.Bool("force", false, "fetch from the APIs even when stored data exists")
	outputDir := flags.String("output", "", "override the export output directory")
	if err := flags.Parse(os.Args[2:]); err != nil {
		os.Exit(2)
	}

	log.Warnf("---->> running in [%s] environment", *env)

	cfg, err := config.Load(*env, *configPath)
	if err != nil {
		panic(err)
	}

	secrets := config.SecretsFromEnv()
	logging.Setup(logging.LoggerSetupParams{
		LogFileName:      cfg.LogsPath,
		LogToStdout:      cfg.LogToStdout,
		LogLevel:         cfg.LogLevel,
		LogFormatJSON:    false,
		Environment:      cfg.Environment,
		SentryEnabled:    cfg.SentryEnabled,
		SentryDSN:        secrets.SentryDSN,
		SentryServerName: "fitsite",
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	switch command {
	case "fetch":
		err = cmdFetch(ctx, cfg, secrets)
	case "analyze":
		err = cmdAnalyze(ctx, cfg, secrets, *forceRefresh)
	case "export":
		err = cmdExport(ctx, cfg, secrets, *forceRefresh, *outputDir)
	case "serve":
		err = cmdServe(ctx, cancel, cfg, secrets)
	case "all":
		err = cmdAll(ctx, cfg, secrets)
	default:
		fmt.Print(usage)
		os.Exit(2)
	}

	if err != nil {
		log.Fatalf("%s: %s", command, err)
	}
}

func cmdFetch(ctx context.Context, cfg *config.Config, secrets config.Secrets) error {
	_, err := loadActivities(ctx, cfg, secrets, true)
	if err != nil {
		return err
	}
	_, err = loadWorkouts(ctx, cfg, secrets, true)
	return err
}

func cmdAnalyze(ctx context.Context, cfg *config.Config, secrets config.Secrets, forceRefresh bool) error {
	activities, err := loadActivities(ctx, cfg, secrets, forceRefresh)
	if err != nil {
		return err
	}
	workouts, err := loadWorkouts(ctx, cfg, secrets, forceRefresh)
	if err != nil {
		return err
	}
	printSummary(activities, workouts)
	return nil
}

func cmdExport(ctx context.Context, cfg *config.Config, secrets config.Secrets, forceRefresh bool, outputDir string) error {
	activities, err := loadActivities(ctx, cfg, secrets, forceRefresh)
	if err != nil {
		return err
	}
	workouts, err := loadWorkouts(ctx, cfg, secrets, forceRefresh)
	if err != nil {
		return err
	}

	dataDir := cfg.HugoDataDir
	if outputDir != "" {
		dataDir = outputDir
		log.Infof("exporting to custom directory: %s", dataDir)
	} else {
		log.Infof("exporting to site data dir: %s", dataDir)
	}

	exporter := export.NewExporter(analytics.NewAnalyzer(), dataDir)
	return exporter.ExportAll(activities, workouts)
}

func cmdServe(ctx context.Context, cancel context.CancelFunc, cfg *config.Config, secrets config.Secrets) error {
	chOsInterrupt := make(chan os.Signal, 1)
	signal.Notify(chOsInterrupt, os.Interrupt, syscall.SIGTERM)

	server, err := internal.NewServer(ctx, internal.NewServerParams{
		Config:      cfg,
		Secrets:     secrets,
		VersionInfo: versionInfo(),
	})
	if err != nil {
		return fmt.Errorf("new server: %w", err)
	}

	server.Serve(ctx, cfg.Host, cfg.Port)

	receivedSig := <-chOsInterrupt
	log.Warnf("signal [%s] received, killing everything ...", receivedSig)
	cancel()

	server.GracefulShutdown()
	return nil
}

func cmdAll(ctx context.Context, cfg *config.Config, secrets config.Secrets) error {
	log.Info("running full pipeline ...")

	activities, err := loadActivities(ctx, cfg, secrets, true)
	if err != nil {
		return err
	}
	workouts, err := loadWorkouts(ctx, cfg, secrets, true)
	if err != nil {
		return err
	}

	printSummary(activities, workouts)

	exporter := export.NewExporter(analytics.NewAnalyzer(), cfg.HugoDataDir)
	if err := exporter.ExportAll(activities, workouts); err != nil {
		return err
	}

	log.Info("pipeline complete")
	return nil
}

// loadActivities loads activities from the file store, falling back
// to (or forced onto) the API, and persists fresh fetches.
func loadActivities(ctx context.Context, cfg *config.Config, secrets config.Secrets, forceRefresh bool) ([]models.Activity, error) {
	fileStore := store.NewFileStore(cfg.DataDir)

	if !forceRefresh {
		activities, err := fileStore.Activities(ctx)
		if err == nil {
			log.Infof("loaded %d stored activities", len(activities))
			return activities, nil
		}
		log.Debugf("no stored activities (%s), fetching from the api", err)
	}

	if secrets.StravaClientID == "" || secrets.StravaClientSecret == "" || secrets.StravaRefreshToken == "" {
		log.Errorln("strava not configured, set STRAVA_CLIENT_ID, STRAVA_CLIENT_SECRET and STRAVA_REFRESH_TOKEN")
		return nil, nil
	}

	client := strava.NewClient(
		cfg.StravaAPIBase,
		cfg.StravaTokenURL,
		secrets.StravaClientID,
		secrets.StravaClientSecret,
		secrets.StravaRefreshToken,
		&http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)},
	)

	log.Info("fetching activities from the strava api ...")
	activities, err := client.FetchAllActivities(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch activities: %w", err)
	}

	if err := fileStore.SaveActivities(ctx, activities); err != nil {
		return nil, err
	}

	return activities, nil
}

// loadWorkouts loads workouts from the file store, falling back to
// the sheets API or a local TSV/CSV export.
func loadWorkouts(ctx context.Context, cfg *config.Config, secrets config.Secrets, forceRefresh bool) ([]models.LiftingWorkout, error) {
	fileStore := store.NewFileStore(cfg.DataDir)

	if !forceRefresh {
		workouts, err := fileStore.Workouts(ctx)
		if err == nil {
			log.Infof("loaded %d stored workouts", len(workouts))
			return workouts, nil
		}
		log.Debugf("no stored workouts (%s), refreshing", err)
	}

	if secrets.SheetsCredentials != "" || cfg.CredentialsFile != "" {
		client, err := sheets.NewClient(ctx, cfg.SheetID, cfg.SheetRange, []byte(secrets.SheetsCredentials), cfg.CredentialsFile)
		if err != nil {
			log.Warnf("google sheets client: %s, falling back to the local file", err)
		} else {
			workouts, err := client.FetchWorkouts(ctx)
			if err != nil {
				log.Warnf("google sheets fetch: %s, falling back to the local file", err)
			} else {
				if err := fileStore.SaveWorkouts(ctx, workouts); err != nil {
					return nil, err
				}
				return workouts, nil
			}
		}
	}

	if cfg.WorkoutsFile == "" {
		log.Warnln("no workout data source available")
		return nil, nil
	}

	workouts, err := sheets.LoadWorkoutsFromFile(cfg.WorkoutsFile)
	if err != nil {
		return nil, fmt.Errorf("load workouts file: %w", err)
	}

	if err := fileStore.SaveWorkouts(ctx, workouts); err != nil {
		return nil, err
	}

	return workouts, nil
}

func printSummary(activities []models.Activity, workouts []models.LiftingWorkout) {
	analyzer := analytics.NewAnalyzer()

	fmt.Println("\n============================================================")
	fmt.Println("WORKOUT SUMMARY")
	fmt.Println("============================================================")

	if len(activities) > 0 {
		stats := analyzer.RunningStats(activities)
		fmt.Println("\nRUNNING")
		fmt.Printf("   Total runs: %d\n", stats.TotalRuns)
		fmt.Printf("   Total miles: %.1f\n", stats.TotalMiles)
		fmt.Printf("   Total time: %.1f hours\n", stats.TotalTimeHours)
		fmt.Printf("   Avg pace: %s/mi\n", stats.AvgPace)
		fmt.Printf("   Fastest pace: %s/mi\n", stats.FastestPace)
		fmt.Printf("   This month: %d runs, %.1f miles\n", stats.RunsThisMonth, stats.MilesThisMonth)

		if stats.FastestRun != nil {
			fmt.Printf("\n   Fastest: %s\n", stats.FastestRun.Name)
			fmt.Printf("            %s/mi on %s\n", stats.FastestRun.Pace, stats.FastestRun.Date)
		}
		if stats.LongestRun != nil {
			fmt.Printf("\n   Longest: %s\n", stats.LongestRun.Name)
			fmt.Printf("            %.2f mi on %s\n", stats.LongestRun.Distance, stats.LongestRun.Date)
		}
	}

	if len(workouts) > 0 {
		stats := analyzer.LiftingStats(workouts)
		fmt.Println("\nLIFTING")
		fmt.Printf("   Total workouts: %d\n", stats.TotalWorkouts)
		fmt.Printf("   Total volume: %.0f lbs\n", stats.TotalVolumeLbs)
		fmt.Printf("   Date range: %s to %s\n", stats.DateRangeStart, stats.DateRangeEnd)

		fmt.Println("\n   Distribution:")
		for group, count := range stats.WorkoutDistribution {
			fmt.Printf("     %s: %d\n", group, count)
		}

		if len(stats.PersonalRecords) > 0 {
			fmt.Println("\n   Top PRs:")
			top := stats.PersonalRecords
			if len(top) > 5 {
				top = top[:5]
			}
			for _, pr := range top {
				if pr.MaxWeight > 0 {
					fmt.Printf("     %s: %.1f lbs\n", pr.Exercise, pr.MaxWeight)
				}
			}
		}
	}

	fmt.Println("\n============================================================")
}

func versionInfo() string {
	if version := os.Getenv("FITSITE_VERSION"); version != "" {
		return version
	}
	return "dev"
}
