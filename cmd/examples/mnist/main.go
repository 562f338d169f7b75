package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	dlfs "github.com/LdDl/dlfs-go"
	"github.com/LdDl/dlfs-go/mnist"
)

var (
	configPath = flag.String("config", "", "Path to YAML config (optional)")
	baseURL    = flag.String("base-url", "", "Override origin the dataset is downloaded from")
	cacheDir   = flag.String("cache-dir", "", "Override directory the dataset is cached in")
	strict     = flag.Bool("strict", false, "Require canonical record counts")
	batchSize  = flag.Int("batch-size", 100, "Batch size")
	plotFile   = flag.String("plot", "", "Save class distribution of train labels to this file (e.g. ./output/classes.png)")
)

func main() {
	flag.Parse()

	cfg := mnist.DefaultConfig()
	if *configPath != "" {
		loaded, err := mnist.LoadConfig(*configPath)
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}
		cfg = *loaded
	}
	if *baseURL != "" {
		cfg.BaseURL = *baseURL
	}
	if *cacheDir != "" {
		cfg.CacheDir = *cacheDir
	}
	if *strict {
		cfg.Strict = true
	}
	if *batchSize <= 0 {
		log.Fatalf("batch-size must be > 0 (got %d)", *batchSize)
	}

	loader, err := mnist.NewLoader(cfg)
	if err != nil {
		log.Fatalf("invalid config: %v", err)
	}
	for _, r := range mnist.Resources {
		log.Printf("%s: %s (%s)", r, loader.State(r), loader.Path(r))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	raw, err := mnist.Load[float32](ctx, loader)
	if err != nil {
		log.Fatalf("failed to load dataset: %v", err)
	}
	ds, err := raw.Normalize()
	if err != nil {
		log.Fatalf("failed to normalize dataset: %v", err)
	}

	summary, err := mnist.Summarize(ds)
	if err != nil {
		log.Fatalf("failed to summarize dataset: %v", err)
	}
	log.Printf("train: %s", summary.Train)
	log.Printf("test: %s", summary.Test)

	if *plotFile != "" {
		if err := dlfs.PlotLabelHistogram(ds.TrainLabels(), *plotFile); err != nil {
			log.Fatalf("failed to plot class distribution: %v", err)
		}
		log.Printf("class distribution saved to %s", *plotFile)
	}

	// Score a uniform guess against the first batch of test labels
	rows := ds.TestLabels().Shape()[0]
	end := *batchSize
	if end > rows {
		end = rows
	}
	labels, err := dlfs.Rows(ds.TestLabels(), 0, end)
	if err != nil {
		log.Fatalf("failed to select batch: %v", err)
	}
	guess := make([]float32, end*mnist.NumClasses)
	prediction, err := dlfs.NewMatrix(end, mnist.NumClasses, guess)
	if err != nil {
		log.Fatalf("failed to build prediction: %v", err)
	}
	if err := dlfs.SoftmaxMut(prediction); err != nil {
		log.Fatalf("failed to apply softmax: %v", err)
	}
	sse, err := dlfs.SumSquaredError(prediction, labels)
	if err != nil {
		log.Fatalf("failed to compute sum squared error: %v", err)
	}
	ce, err := dlfs.CrossEntropyError(prediction, labels)
	if err != nil {
		log.Fatalf("failed to compute cross entropy error: %v", err)
	}
	log.Printf("uniform guess on %d test samples: sum_squared_error=%.4f cross_entropy_error=%.4f", end, sse, ce)

	batches := 0
	for i := 0; i < ds.TrainImages().Shape()[0]; i += *batchSize {
		end := i + *batchSize
		if end > ds.TrainImages().Shape()[0] {
			end = ds.TrainImages().Shape()[0]
		}
		batch, err := dlfs.Rows(ds.TrainImages(), i, end)
		if err != nil {
			log.Fatalf("failed to select batch: %v", err)
		}
		if _, err := dlfs.Sigmoid(batch); err != nil {
			log.Fatalf("failed to activate batch: %v", err)
		}
		batches++
	}
	log.Printf("walked %d train batches of up to %d samples", batches, *batchSize)
}
