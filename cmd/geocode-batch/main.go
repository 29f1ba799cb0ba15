package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"

	"components-api/internal/config"
	"components-api/internal/geocode"
	"components-api/internal/models"
	"components-api/internal/service"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	file := flag.String("file", "", "Path to the CSV file of venue queries (first column)")
	out := flag.String("out", "geocoded.csv", "Path to the output CSV file")
	flag.Parse()

	if *file == "" {
		fmt.Println("Error: --file flag is required")
		os.Exit(1)
	}

	fmt.Printf("Starting batch geocode from file: %s\n", *file)

	queries, err := parseCSV(*file)
	if err != nil {
		fmt.Printf("Error parsing CSV: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Parsed %d queries\n", len(queries))

	// Load config
	cfg, err := config.LoadConfig("configs")
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	// The client's limiter paces requests to the upstream policy; no cache for
	// one-shot batch runs.
	logger := log.Level(zerolog.WarnLevel)
	client := geocode.NewClient(cfg.NominatimBaseURL, cfg.NominatimUserAgent, logger)
	svc := service.NewSearchService(client, nil, logger)

	resolved, misses, err := geocodeAll(svc, queries, *out)
	if err != nil {
		fmt.Printf("Error writing output: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Resolved %d of %d queries (%d without results), output in %s\n",
		resolved, len(queries), misses, *out)
}

func parseCSV(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1 // Allow variable number of fields

	// Skip header
	_, err = reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	var queries []string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read record: %w", err)
		}
		if len(record) == 0 || record[0] == "" {
			continue
		}
		queries = append(queries, record[0])
	}

	return queries, nil
}

func geocodeAll(svc *service.SearchService, queries []string, outPath string) (resolved, misses int, err error) {
	outFile, err := os.Create(outPath)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to create output file: %w", err)
	}
	defer outFile.Close()

	writer := csv.NewWriter(outFile)
	defer writer.Flush()

	header := []string{"query", "venue_name", "venue_address", "venue_city", "venue_zip_code",
		"state", "country", "country_code", "latitude", "longitude", "display_name"}
	if err := writer.Write(header); err != nil {
		return 0, 0, err
	}

	ctx := context.Background()
	for _, query := range queries {
		results := svc.Search(ctx, query)
		if len(results) == 0 {
			misses++
			if err := writer.Write(append([]string{query}, make([]string, len(header)-1)...)); err != nil {
				return resolved, misses, err
			}
			continue
		}

		loc := results[0].Location()
		if err := writer.Write(row(query, loc)); err != nil {
			return resolved, misses, err
		}
		resolved++
	}

	return resolved, misses, writer.Error()
}

func row(query string, loc models.Location) []string {
	return []string{
		query,
		loc.VenueName,
		loc.VenueAddress,
		loc.VenueCity,
		loc.VenueZipCode,
		loc.State,
		loc.Country,
		loc.CountryCode,
		coordinate(loc.Latitude),
		coordinate(loc.Longitude),
		loc.DisplayName,
	}
}

func coordinate(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
