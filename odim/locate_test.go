package odim

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocationPaths(t *testing.T) {
	loc := Location{Dataset: 2, Data: 11}
	assert.Equal(t, "/dataset2/data11", loc.Group())
	assert.Equal(t, "/dataset2/data11/data", loc.DataPath())
	assert.Equal(t, "/dataset2/data11/what/gain", loc.WhatPath("gain"))
}

func TestLocate(t *testing.T) {
	tr := newVPTree(t, "VP",
		sourceData{dataset: 1, data: 1, quantity: "ff"},
		sourceData{dataset: 1, data: 2, quantity: "dd"},
		sourceData{dataset: 2, data: 1, quantity: "n"},
		sourceData{dataset: 2, data: 2, quantity: "ff"},
	)
	l := NewLocator(tr)

	tests := []struct {
		quantity string
		want     Location
		found    bool
	}{
		{"ff", Location{1, 1}, true},
		{"dd", Location{1, 2}, true},
		{"n", Location{2, 1}, true},
		{"nz", Location{}, false},
		{"FF", Location{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.quantity, func(t *testing.T) {
			got, ok := l.Locate(tt.quantity)
			assert.Equal(t, tt.found, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLocateStopsAtDatasetGap(t *testing.T) {
	tr := newVPTree(t, "VP",
		sourceData{dataset: 1, data: 1, quantity: "ff"},
		sourceData{dataset: 3, data: 1, quantity: "dd"},
	)
	l := NewLocator(tr)

	_, ok := l.Locate("ff")
	assert.True(t, ok)

	// /dataset2 is missing so /dataset3 is never scanned.
	_, ok = l.Locate("dd")
	assert.False(t, ok)
}

func TestLocateDataGapMovesToNextDataset(t *testing.T) {
	tr := newVPTree(t, "VP",
		sourceData{dataset: 1, data: 1, quantity: "ff"},
		sourceData{dataset: 1, data: 3, quantity: "dd"},
		sourceData{dataset: 2, data: 1, quantity: "nz"},
	)
	l := NewLocator(tr)

	_, ok := l.Locate("dd")
	assert.False(t, ok, "data3 lies beyond a gap")

	got, ok := l.Locate("nz")
	require.True(t, ok)
	assert.Equal(t, Location{Dataset: 2, Data: 1}, got)
}

func TestLocateSkipsGroupsWithoutQuantity(t *testing.T) {
	tr := newVPTree(t, "VP",
		sourceData{dataset: 1, data: 1},
		sourceData{dataset: 1, data: 2, quantity: "dd"},
	)
	got, ok := NewLocator(tr).Locate("dd")
	require.True(t, ok)
	assert.Equal(t, Location{Dataset: 1, Data: 2}, got)
}

func TestLocateNonStringQuantity(t *testing.T) {
	tr := newVPTree(t, "VP",
		sourceData{dataset: 1, data: 1, quantity: int64(5)},
		sourceData{dataset: 1, data: 2, quantity: "dd"},
	)
	got, ok := NewLocator(tr).Locate("dd")
	require.True(t, ok)
	assert.Equal(t, Location{Dataset: 1, Data: 2}, got)
}

func TestLocateUnreadableQuantityEndsDataset(t *testing.T) {
	tr := newVPTree(t, "VP",
		sourceData{dataset: 1, data: 1},
		sourceData{dataset: 1, data: 2, quantity: "dd"},
		sourceData{dataset: 2, data: 1, quantity: "ff"},
	)
	require.NoError(t, tr.addUnreadable("/dataset1/data1/what/quantity", errors.New("bad")))
	l := NewLocator(tr)

	_, ok := l.Locate("dd")
	assert.False(t, ok)

	got, ok := l.Locate("ff")
	require.True(t, ok)
	assert.Equal(t, Location{Dataset: 2, Data: 1}, got)
}

func TestLocateEmptyTree(t *testing.T) {
	_, ok := NewLocator(NewTree()).Locate("ff")
	assert.False(t, ok)
}
