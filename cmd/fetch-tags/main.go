// Command fetch-tags probes the upstream tag registry and writes the
// discovered tags to disk: tags.json with the full list and
// tag-categories.json with an id-to-name/slug map suitable for updating
// the built-in browse catalog.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/pulsepoly/pulsepoly/internal/config"
	"github.com/pulsepoly/pulsepoly/internal/gamma"
	"github.com/pulsepoly/pulsepoly/internal/logger"
	"github.com/pulsepoly/pulsepoly/internal/tags"
)

var (
	configPath = flag.String("config", "configs/config.yaml", "Path to configuration file")
	outDir     = flag.String("out", ".", "Directory for the output files")
)

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	appLog := logger.Init(logger.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	client := gamma.NewClient(cfg.Gamma.BaseURL, cfg.Gamma.Timeout, appLog)
	discoverer := tags.NewDiscoverer(client, cfg.Tags.MaxID, cfg.Tags.BatchSize, cfg.Tags.BatchPause, appLog)

	appLog.WithFields(logrus.Fields{
		"max_id":     cfg.Tags.MaxID,
		"batch_size": cfg.Tags.BatchSize,
	}).Info("Probing tag id space")

	found, err := discoverer.Discover(ctx)
	if err != nil {
		appLog.WithError(err).Fatal("Tag discovery failed")
	}
	appLog.WithField("count", len(found)).Info("Tag discovery complete")

	if err := writeJSON(*outDir+"/tags.json", found); err != nil {
		appLog.WithError(err).Fatal("Failed to write tags.json")
	}

	categories := make(map[string]map[string]string, len(found))
	for _, tag := range found {
		categories[tag.ID] = map[string]string{
			"name": tag.Label,
			"slug": tag.Slug,
		}
	}
	if err := writeJSON(*outDir+"/tag-categories.json", categories); err != nil {
		appLog.WithError(err).Fatal("Failed to write tag-categories.json")
	}
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
