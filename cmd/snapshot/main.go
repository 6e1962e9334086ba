// Command snapshot converts a historical price dataset between JSON and
// MessagePack and prints a per-series summary.
//
// Usage:
//
//	snapshot -in historical.json -out historical.msgpack
package main

import (
	"flag"
	"os"

	"github.com/aristath/hindsight/internal/modules/historical"
	"github.com/aristath/hindsight/pkg/logger"
	"github.com/rs/zerolog"
)

func main() {
	in := flag.String("in", "", "input dataset (.json or .msgpack); empty reads the embedded dataset")
	out := flag.String("out", "", "output dataset (.json or .msgpack); empty only prints the summary")
	level := flag.String("log-level", "info", "log level")
	flag.Parse()

	log := logger.New(logger.Config{Level: *level, Pretty: true})

	if err := run(*in, *out, log); err != nil {
		log.Fatal().Err(err).Msg("Snapshot failed")
	}
}

func run(in, out string, log zerolog.Logger) error {
	dataset, err := historical.Load(in)
	if err != nil {
		return err
	}

	for _, key := range dataset.Keys() {
		summary, _ := dataset.Summary(key)
		log.Info().
			Str("series", key).
			Str("first", summary.First).
			Str("last", summary.Last).
			Int("points", summary.Count).
			Msg("Series")
	}

	if out == "" {
		return nil
	}

	format, err := historical.FormatFromPath(out)
	if err != nil {
		return err
	}

	data, err := historical.Encode(dataset, format)
	if err != nil {
		return err
	}

	if err := os.WriteFile(out, data, 0644); err != nil {
		return err
	}

	log.Info().Str("path", out).Int("bytes", len(data)).Msg("Dataset written")
	return nil
}
