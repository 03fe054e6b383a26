package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/norwind/bingwall/internal/bing"
	"github.com/norwind/bingwall/internal/collect"
	"github.com/norwind/bingwall/internal/config"
	"github.com/norwind/bingwall/internal/download"
	ihttp "github.com/norwind/bingwall/internal/http"
	"github.com/norwind/bingwall/internal/logging"
	"github.com/norwind/bingwall/internal/model"
	"github.com/norwind/bingwall/internal/store"
	"github.com/norwind/bingwall/internal/tui"
)

func main() {
	configFlag := flag.String("config", "", "Path to config file")
	flag.Parse()

	_ = godotenv.Load()

	settings := config.DefaultSettings()
	if *configFlag != "" {
		var err error
		settings, err = config.Load(*configFlag)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}
	settings.ApplyEnv()
	settings.Clamp()

	// Log output would fight the alternate screen, so keep it quiet.
	logger, err := logging.New("error", settings.LogFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error building logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	var st store.Store
	if settings.Storage == "sqlite" {
		st, err = store.NewDBStore(settings.DatabasePath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening store: %v\n", err)
			os.Exit(1)
		}
	} else {
		st = store.NewFileStore(settings.DataPath, settings.PrettyJSON)
	}

	httpClient := ihttp.NewClient()
	fetcher := bing.NewClient(httpClient, model.ResolutionByName(settings.Resolution))
	orch := collect.NewOrchestrator(fetcher, st, logger, settings.Markets(), settings.DaysToCollect, settings.MaxConcurrentRequests)
	// Image transfers can outlast the 30s metadata timeout, so the
	// queue gets its own client bounded by task cancellation instead.
	queue := download.NewQueue(ihttp.NewClientWithTimeout(0), logger, settings.DownloadsPath, int64(settings.MaxConcurrentDownloads))
	defer queue.Shutdown()

	if err := tui.Run(settings, orch, queue); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
