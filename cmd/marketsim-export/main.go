// Command marketsim-export dumps recorded tick history from a SQLite
// database to a Parquet file for offline analysis.
package main

import (
	"context"
	"flag"
	"log"

	"marketsim/internal/store"
	"marketsim/internal/util"
)

func main() {
	dbPath := flag.String("db", "data/ticks.db", "path to the tick history SQLite database")
	outPath := flag.String("out", "data/ticks.parquet", "path of the Parquet file to write")
	flag.Parse()

	logger := util.NewLogger("info", "text")
	util.SetDefault(logger)

	ts, err := store.NewTickStore(*dbPath, logger)
	if err != nil {
		log.Fatalf("opening tick store: %v", err)
	}
	defer ts.Close()

	n, err := store.ExportParquet(context.Background(), ts, *outPath)
	if err != nil {
		log.Fatalf("exporting: %v", err)
	}
	if n == 0 {
		logger.Info("no ticks recorded, nothing written")
		return
	}
	logger.Info("export complete", "rows", n, "out", *outPath)
}
