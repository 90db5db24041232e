package odim

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTreeHasRoot(t *testing.T) {
	tr := NewTree()
	n, ok := tr.Node("/")
	require.True(t, ok)
	assert.Equal(t, GroupNode, n.Kind)
	assert.Equal(t, 1, tr.Len())
	assert.Equal(t, []string{"/"}, tr.Paths())
}

func TestTreeAdd(t *testing.T) {
	tr := NewTree()
	require.NoError(t, tr.AddGroup("/what"))
	require.NoError(t, tr.AddAttribute("/what/object", String("VP")))
	require.NoError(t, tr.AddGroup("/dataset1"))
	require.NoError(t, tr.AddDataset("/dataset1/data", mustArray(t, []int16{1, 2, 3})))
	require.NoError(t, tr.AddAttribute("/dataset1/data/CLASS", String("IMAGE")))

	want := []string{"/", "/what", "/what/object", "/dataset1", "/dataset1/data", "/dataset1/data/CLASS"}
	if diff := cmp.Diff(want, tr.Paths()); diff != "" {
		t.Errorf("Paths() mismatch (-want +got):\n%s", diff)
	}

	v, err := tr.Attribute("/what/object")
	require.NoError(t, err)
	assert.Equal(t, String("VP"), v)

	a, err := tr.Dataset("/dataset1/data")
	require.NoError(t, err)
	assert.Equal(t, TypeInt16, a.ElementType)
	assert.Equal(t, []uint64{3}, a.Shape)

	n, ok := tr.Node("/dataset1/data/CLASS")
	require.True(t, ok)
	assert.Equal(t, "CLASS", n.Name())
	assert.Equal(t, AttributeNode, n.Kind)
}

func TestTreeAddErrors(t *testing.T) {
	tr := NewTree()
	require.NoError(t, tr.AddGroup("/what"))
	require.NoError(t, tr.AddAttribute("/what/object", String("VP")))
	require.NoError(t, tr.AddDataset("/data", mustArray(t, []float64{1})))

	tests := []struct {
		name string
		add  func() error
		want error
	}{
		{"root", func() error { return tr.AddGroup("/") }, ErrInvalidPath},
		{"relative", func() error { return tr.AddGroup("what") }, ErrInvalidPath},
		{"trailing slash", func() error { return tr.AddGroup("/how/") }, ErrInvalidPath},
		{"empty component", func() error { return tr.AddGroup("/a//b") }, ErrInvalidPath},
		{"dot dot", func() error { return tr.AddGroup("/what/..") }, ErrInvalidPath},
		{"duplicate", func() error { return tr.AddGroup("/what") }, ErrPathExists},
		{"duplicate attribute", func() error { return tr.AddAttribute("/what/object", String("PVOL")) }, ErrPathExists},
		{"missing parent", func() error { return tr.AddGroup("/where/sub") }, ErrParentMissing},
		{"attribute parent", func() error { return tr.AddGroup("/what/object/x") }, ErrParentMissing},
		{"group under dataset", func() error { return tr.AddGroup("/data/g") }, ErrParentMissing},
		{"invalid value", func() error { return tr.AddAttribute("/what/date", Value{}) }, ErrUnsupportedAttributeValueType},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.add(), tt.want)
		})
	}

	// Failed adds leave the tree untouched.
	assert.Equal(t, 4, tr.Len())
}

func TestTreeLookupErrors(t *testing.T) {
	tr := NewTree()
	require.NoError(t, tr.AddGroup("/what"))

	_, err := tr.Attribute("/what/object")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = tr.Attribute("/what")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = tr.Dataset("/what")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTreeUnreadableAttribute(t *testing.T) {
	tr := NewTree()
	require.NoError(t, tr.AddGroup("/what"))
	cause := errors.New("compound value")
	require.NoError(t, tr.addUnreadable("/what/quantity", cause))

	n, ok := tr.Node("/what/quantity")
	require.True(t, ok)
	assert.Equal(t, AttributeNode, n.Kind)

	_, err := tr.Attribute("/what/quantity")
	assert.ErrorIs(t, err, cause)
	assert.True(t, tr.Index().Has("/what/quantity"))
}

func TestTreeIndex(t *testing.T) {
	tr := newVPTree(t, "VP", sourceData{dataset: 1, data: 1, quantity: "ff"})
	ix := tr.Index()
	assert.Len(t, ix, tr.Len())
	for _, p := range tr.Paths() {
		assert.True(t, ix.Has(p), p)
	}
	assert.False(t, ix.Has("/dataset2"))

	// The index is a snapshot.
	require.NoError(t, tr.AddGroup("/dataset2"))
	assert.False(t, ix.Has("/dataset2"))
}

func TestNodeKindString(t *testing.T) {
	assert.Equal(t, "group", GroupNode.String())
	assert.Equal(t, "attribute", AttributeNode.String())
	assert.Equal(t, "dataset", DatasetNode.String())
	assert.Equal(t, "NodeKind(0)", NodeKind(0).String())
}
