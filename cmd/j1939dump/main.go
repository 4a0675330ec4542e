// j1939dump decodes a CAN capture against a signal schema and prints
// the traffic as line-delimited JSON or a CSV summary.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"

	"j1939-dbc-core/canlog"
	"j1939-dbc-core/dbc"
	"j1939-dbc-core/export"
	"j1939-dbc-core/j1939"
	"j1939-dbc-core/sim"
)

func main() {
	var (
		dbcPath  = flag.String("dbc", "", "DBC schema file (built-in J1939-71 subset when empty)")
		csvPath  = flag.String("map", "", "CSV signal map, alternative to -dbc")
		inPath   = flag.String("in", "", "capture file: candump .log or Vector .asc")
		outPath  = flag.String("out", "-", "output file, - for stdout")
		format   = flag.String("format", "json", "output format: json|csv|decoded")
		logLevel = flag.String("log", "info", "trace|debug|info|warn|error")
	)
	flag.Parse()

	if level, err := log.ParseLevel(*logLevel); err == nil {
		log.SetLevel(level)
	}
	log.SetOutput(os.Stderr)

	if *inPath == "" {
		log.Fatal("missing -in capture file")
	}

	db, err := loadDatabase(*dbcPath, *csvPath)
	if err != nil {
		log.Fatalf("load schema: %v", err)
	}
	log.Infof("schema loaded: %d messages", len(db.Messages()))

	records, err := readCapture(*inPath)
	if err != nil {
		log.Fatalf("read capture: %v", err)
	}
	log.Infof("capture %s: %d frames", *inPath, len(records))

	out := os.Stdout
	if *outPath != "-" {
		f, err := os.Create(*outPath)
		if err != nil {
			log.Fatalf("open output: %v", err)
		}
		defer f.Close()
		out = f
	}

	codec := j1939.NewCodec(db)
	switch *format {
	case "json":
		err = export.WriteJSON(out, codec, records)
	case "csv":
		err = canlog.WriteCSV(out, records)
	case "decoded":
		err = canlog.WriteDecodedCSV(out, codec, records)
	default:
		err = fmt.Errorf("unknown format %q", *format)
	}
	if err != nil {
		log.Fatalf("write output: %v", err)
	}
}

func loadDatabase(dbcPath, csvPath string) (*dbc.Database, error) {
	switch {
	case dbcPath != "" && csvPath != "":
		return nil, fmt.Errorf("-dbc and -map are mutually exclusive")
	case dbcPath != "":
		return dbc.ParseFile(dbcPath)
	case csvPath != "":
		return dbc.LoadCSV(csvPath)
	default:
		return sim.StandardDatabase()
	}
}

func readCapture(path string) ([]canlog.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if strings.EqualFold(filepath.Ext(path), ".asc") {
		return canlog.ReadASC(f)
	}
	return canlog.ReadCandump(f)
}
