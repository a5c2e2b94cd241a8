// Package ingest loads the gift catalog and an initial trip partition from
// CSV, joining them into the model types the engine operates on.
package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/z3r0privacy/santasleigh/internal/model"
)

// Catalog maps a gift id to its immutable attributes.
type Catalog struct {
	gifts map[int64]model.Gift
}

// Len returns the number of gifts in the catalog.
func (c *Catalog) Len() int { return len(c.gifts) }

// Lookup returns the gift with the given id.
func (c *Catalog) Lookup(id int64) (model.Gift, bool) {
	g, ok := c.gifts[id]
	return g, ok
}

func makeColumnMap(header []string) map[string]int {
	colMap := make(map[string]int, len(header))
	for i, col := range header {
		colMap[strings.TrimSpace(col)] = i
	}
	return colMap
}

func getField(record []string, colMap map[string]int, fieldName string) string {
	if idx, ok := colMap[fieldName]; ok && idx < len(record) {
		return strings.TrimSpace(record[idx])
	}
	return ""
}

// LoadCatalog reads a GiftId,Latitude,Longitude,Weight CSV from path.
func LoadCatalog(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("ingest: open catalog: %w", err)
	}
	defer f.Close()
	return parseCatalog(f)
}

func parseCatalog(r io.Reader) (*Catalog, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("ingest: read catalog header: %w", err)
	}
	colMap := makeColumnMap(header)

	cat := &Catalog{gifts: make(map[int64]model.Gift)}
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Printf("ingest: skipping malformed catalog row: %v", err)
			continue
		}

		idStr := getField(record, colMap, "GiftId")
		latStr := getField(record, colMap, "Latitude")
		lonStr := getField(record, colMap, "Longitude")
		weightStr := getField(record, colMap, "Weight")

		if idStr == "" || latStr == "" || lonStr == "" || weightStr == "" {
			log.Printf("ingest: skipping catalog row with missing fields: %v", record)
			continue
		}

		id, err := strconv.ParseInt(idStr, 10, 64)
		if err != nil {
			log.Printf("ingest: invalid GiftId %q: %v", idStr, err)
			continue
		}
		lat, err := strconv.ParseFloat(latStr, 64)
		if err != nil {
			log.Printf("ingest: invalid Latitude for gift %d: %v", id, err)
			continue
		}
		lon, err := strconv.ParseFloat(lonStr, 64)
		if err != nil {
			log.Printf("ingest: invalid Longitude for gift %d: %v", id, err)
			continue
		}
		weight, err := strconv.ParseFloat(weightStr, 64)
		if err != nil {
			log.Printf("ingest: invalid Weight for gift %d: %v", id, err)
			continue
		}

		cat.gifts[id] = model.Gift{ID: id, Point: model.Point{Lat: lat, Lon: lon}, Weight: weight}
	}

	return cat, nil
}

// LoadPartition reads a GiftId,TripId CSV and joins it against catalog to
// build the initial trip store. Rows referencing a gift id absent from the
// catalog are skipped with a warning.
func LoadPartition(path string, catalog *Catalog) (*model.Partition, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("ingest: open partition: %w", err)
	}
	defer f.Close()
	return parsePartition(f, catalog)
}

func parsePartition(r io.Reader, catalog *Catalog) (*model.Partition, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("ingest: read partition header: %w", err)
	}
	colMap := makeColumnMap(header)

	tripsByID := map[int64]*model.Trip{}
	var order []int64

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Printf("ingest: skipping malformed partition row: %v", err)
			continue
		}

		giftIDStr := getField(record, colMap, "GiftId")
		tripIDStr := getField(record, colMap, "TripId")
		if giftIDStr == "" || tripIDStr == "" {
			log.Printf("ingest: skipping partition row with missing fields: %v", record)
			continue
		}

		giftID, err := strconv.ParseInt(giftIDStr, 10, 64)
		if err != nil {
			log.Printf("ingest: invalid GiftId %q: %v", giftIDStr, err)
			continue
		}
		tripID, err := strconv.ParseInt(tripIDStr, 10, 64)
		if err != nil {
			log.Printf("ingest: invalid TripId %q: %v", tripIDStr, err)
			continue
		}

		gift, ok := catalog.Lookup(giftID)
		if !ok {
			log.Printf("ingest: gift %d not found in catalog, skipping", giftID)
			continue
		}

		trip, ok := tripsByID[tripID]
		if !ok {
			trip = &model.Trip{ID: tripID}
			tripsByID[tripID] = trip
			order = append(order, tripID)
		}
		trip.Stops = append(trip.Stops, model.Stop{Gift: gift, TripID: tripID})
	}

	trips := make([]*model.Trip, 0, len(order))
	for _, id := range order {
		trips = append(trips, tripsByID[id])
	}
	return model.NewPartition(trips), nil
}
