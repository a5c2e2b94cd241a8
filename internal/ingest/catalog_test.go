package ingest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCatalog(t *testing.T) {
	csv := "GiftId,Latitude,Longitude,Weight\n1,10.5,20.5,50\n2,-5,5,30\n"
	cat, err := parseCatalog(strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, 2, cat.Len())

	g, ok := cat.Lookup(1)
	require.True(t, ok)
	assert.Equal(t, 10.5, g.Point.Lat)
	assert.Equal(t, 50.0, g.Weight)
}

func TestParseCatalogSkipsMalformedRows(t *testing.T) {
	csv := "GiftId,Latitude,Longitude,Weight\n1,10.5,20.5,50\nbad,row\n3,1,1,not-a-number\n"
	cat, err := parseCatalog(strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, 1, cat.Len())
}

func TestParsePartitionJoinsCatalog(t *testing.T) {
	catCSV := "GiftId,Latitude,Longitude,Weight\n1,10,10,50\n2,20,20,30\n3,30,30,20\n"
	cat, err := parseCatalog(strings.NewReader(catCSV))
	require.NoError(t, err)

	partCSV := "GiftId,TripId\n1,100\n2,100\n3,200\n"
	p, err := parsePartition(strings.NewReader(partCSV), cat)
	require.NoError(t, err)

	require.Len(t, p.Trips, 2)
	assert.Equal(t, int64(100), p.Trips[0].ID)
	assert.Equal(t, 2, p.Trips[0].Len())
	assert.Equal(t, int64(200), p.Trips[1].ID)
	assert.Equal(t, 1, p.Trips[1].Len())
}

func TestParsePartitionSkipsUnknownGift(t *testing.T) {
	cat, err := parseCatalog(strings.NewReader("GiftId,Latitude,Longitude,Weight\n1,10,10,50\n"))
	require.NoError(t, err)

	p, err := parsePartition(strings.NewReader("GiftId,TripId\n1,100\n99,100\n"), cat)
	require.NoError(t, err)
	assert.Equal(t, 1, p.GiftCount())
}
