package odim

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

type sourceData struct {
	dataset, data int
	quantity      any // nil means no quantity attribute
	array         Array
	what          map[string]Value
}

// newVPTree builds a 2.2 vertical profile reader tree with the given data
// groups. Dataset and data groups are created as needed.
func newVPTree(t *testing.T, object string, sources ...sourceData) *Tree {
	t.Helper()
	tr := NewTree()
	for _, g := range []string{"/how", "/what", "/where"} {
		require.NoError(t, tr.AddGroup(g))
	}
	require.NoError(t, tr.AddAttribute("/Conventions", String("ODIM_H5/V2_2")))
	require.NoError(t, tr.AddAttribute("/what/object", String(object)))
	require.NoError(t, tr.AddAttribute("/what/version", String("H5rad 2.2")))
	require.NoError(t, tr.AddAttribute("/what/date", String("20261017")))
	require.NoError(t, tr.AddAttribute("/what/time", String("120000")))
	require.NoError(t, tr.AddAttribute("/what/source", String("NOD:sekkr,WMO:02666")))
	require.NoError(t, tr.AddAttribute("/where/lat", Float(55.38)))
	require.NoError(t, tr.AddAttribute("/where/lon", Float(14.16)))
	require.NoError(t, tr.AddAttribute("/where/levels", Int(10)))
	require.NoError(t, tr.AddAttribute("/where/interval", Float(200)))
	require.NoError(t, tr.AddAttribute("/how/task", String("vertical_profile")))

	for _, s := range sources {
		loc := Location{Dataset: s.dataset, Data: s.data}
		for _, g := range []string{
			fmt.Sprintf("/dataset%d", s.dataset),
			loc.Group(),
			loc.Group() + "/what",
		} {
			if _, ok := tr.Node(g); !ok {
				require.NoError(t, tr.AddGroup(g))
			}
		}
		if s.quantity != nil {
			v, err := NewValue(s.quantity)
			require.NoError(t, err)
			require.NoError(t, tr.AddAttribute(loc.WhatPath("quantity"), v))
		}
		for name, v := range s.what {
			require.NoError(t, tr.AddAttribute(loc.WhatPath(name), v))
		}
		if s.array.ElementType != "" {
			require.NoError(t, tr.AddDataset(loc.DataPath(), s.array))
		}
	}
	return tr
}

func mustArray(t *testing.T, data any, shape ...uint64) Array {
	t.Helper()
	a, err := NewArray(data, shape...)
	require.NoError(t, err)
	return a
}

func seqFloat64(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = float64(i) * 0.5
	}
	return out
}
