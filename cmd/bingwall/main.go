package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/norwind/bingwall/internal/bing"
	"github.com/norwind/bingwall/internal/collect"
	"github.com/norwind/bingwall/internal/config"
	"github.com/norwind/bingwall/internal/download"
	ihttp "github.com/norwind/bingwall/internal/http"
	"github.com/norwind/bingwall/internal/logging"
	"github.com/norwind/bingwall/internal/model"
	"github.com/norwind/bingwall/internal/store"
)

func main() {
	// Command line flags
	var (
		configFlag  = flag.String("config", "", "Path to config file")
		dataFlag    = flag.String("data", "", "Metadata output directory (overrides config)")
		marketFlag  = flag.String("market", "", "Collect a single market by code, e.g. ja-JP")
		allFlag     = flag.Bool("all-markets", false, "Collect every supported market")
		daysFlag    = flag.Int("days", 0, "Days of history to collect (1-8)")
		imagesFlag  = flag.Bool("images", false, "Download image files for newly collected records")
		variantFlag = flag.String("variant", "UHD", "Image variant to download (UHD, HD, Full HD, Standard)")
		listFlag    = flag.Bool("list-markets", false, "Print the supported markets and exit")
		dryRunFlag  = flag.Bool("dry-run", false, "Show what would be collected without fetching")
	)

	flag.Parse()

	if *listFlag {
		fmt.Println("Supported markets:")
		for _, m := range model.AllMarkets() {
			fmt.Printf("  %s  %-8s %s\n", m.Flag, m.Code, m.Name)
		}
		return
	}

	// A .env file next to the binary feeds the automation-mode overrides.
	_ = godotenv.Load()

	// Load config
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

	// Apply flags
	if *dataFlag != "" {
		settings.DataPath = *dataFlag
	}
	if *allFlag {
		settings.CollectAllMarkets = true
	}
	if *marketFlag != "" {
		m, ok := model.MarketByCode(model.MarketCode(*marketFlag))
		if !ok {
			fmt.Fprintf(os.Stderr, "Unknown market code %q (try -list-markets)\n", *marketFlag)
			os.Exit(1)
		}
		settings.CollectAllMarkets = false
		settings.TargetMarket = string(m.Code)
	}
	if *daysFlag > 0 {
		settings.DaysToCollect = *daysFlag
	}
	settings.Clamp()

	logger, err := logging.New(settings.LogLevel, settings.LogFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error building logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	markets := settings.Markets()

	if *dryRunFlag {
		fmt.Printf("Would collect %d day(s) for %d market(s):\n", settings.DaysToCollect, len(markets))
		for _, m := range markets {
			fmt.Printf("  %s  %s\n", m.Code, m.Name)
		}
		return
	}

	st, err := openStore(settings)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening store: %v\n", err)
		os.Exit(1)
	}

	// Handle interrupts
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Println("\nInterrupted, cancelling...")
		cancel()
	}()

	httpClient := ihttp.NewClient()
	fetcher := bing.NewClient(httpClient, model.ResolutionByName(settings.Resolution))
	orch := collect.NewOrchestrator(fetcher, st, logger, markets, settings.DaysToCollect, settings.MaxConcurrentRequests)

	fmt.Println("🖼  Bing Wallpaper Collector")
	fmt.Println()

	summary, err := orch.Run(ctx)
	if err != nil {
		if ctx.Err() != nil {
			fmt.Println("\nCollection cancelled.")
			os.Exit(130)
		}
		fmt.Fprintf(os.Stderr, "Error during collection: %v\n", err)
		os.Exit(1)
	}

	fmt.Println()
	for _, mr := range summary.Markets {
		fmt.Printf("  %-14s collected %d, skipped %d, failed %d\n",
			mr.Country, mr.Collected, mr.Skipped, mr.Failed)
	}
	fmt.Printf("\n✨ %s\n", summary)

	if !*imagesFlag || len(summary.Records) == 0 {
		return
	}

	// Download phase for the new records
	fmt.Printf("\n📥 Downloading %d image(s)...\n\n", len(summary.Records))

	// Image transfers can outlast the 30s metadata timeout, so the
	// queue gets its own client bounded by ctx instead.
	queue := download.NewQueue(ihttp.NewClientWithTimeout(0), logger, settings.DownloadsPath, int64(settings.MaxConcurrentDownloads))
	statusCh, unsubscribe := queue.SubscribeStatus()

	go func() {
		<-ctx.Done()
		queue.Clear()
	}()

	titles := make(map[uuid.UUID]string)
	for _, wp := range summary.Records {
		task, err := queue.Enqueue(wp, *variantFlag)
		if err != nil {
			logger.Warn("enqueue failed", zap.String("wallpaper", wp.ID()), zap.Error(err))
			continue
		}
		titles[task.ID] = wp.Title
	}

	// The status stream drops events under backpressure, so it only
	// feeds the live display. Completion comes from the queue itself.
	displayDone := make(chan struct{})
	go func() {
		defer close(displayDone)
		for ev := range statusCh {
			switch ev.Status {
			case model.StatusCompleted:
				fmt.Printf("  ✅ %s\n", titles[ev.TaskID])
			case model.StatusFailed:
				fmt.Printf("  ❌ %s: %s\n", titles[ev.TaskID], ev.Message)
			case model.StatusCancelled:
				fmt.Printf("  ⚠️  %s cancelled\n", titles[ev.TaskID])
			}
		}
	}()

	queue.Wait()
	unsubscribe()
	<-displayDone

	completed, failed := 0, 0
	for _, task := range queue.List() {
		switch task.Status {
		case model.StatusCompleted:
			completed++
		case model.StatusFailed:
			failed++
		}
	}

	fmt.Printf("\n✨ Images: %d completed, %d failed\n", completed, failed)
	if ctx.Err() != nil {
		os.Exit(130)
	}
}

// openStore builds the configured persistence backend.
func openStore(settings *config.Settings) (store.Store, error) {
	switch settings.Storage {
	case "sqlite":
		return store.NewDBStore(settings.DatabasePath)
	default:
		return store.NewFileStore(settings.DataPath, settings.PrettyJSON), nil
	}
}
