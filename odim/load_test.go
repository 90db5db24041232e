package odim

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baltrad/vpconvert/hdf5"
)

func TestLoadNotAContainer(t *testing.T) {
	dir := t.TempDir()
	text := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(text, []byte("not a container at all"), 0o644))

	for _, name := range []string{text, filepath.Join(dir, "missing.h5"), dir} {
		_, err := Load(name)
		assert.ErrorIs(t, err, ErrNotAContainer, name)
	}
}

// writeRawFile writes a file with the hdf5 package directly, covering
// attribute shapes Store never produces.
func writeRawFile(t *testing.T) string {
	t.Helper()
	name := filepath.Join(t.TempDir(), "raw.h5")
	f, err := hdf5.Create(name)
	require.NoError(t, err)

	root := f.Root()
	what, err := root.CreateGroup("what")
	require.NoError(t, err)
	require.NoError(t, what.SetAttr("object", "VP"))
	require.NoError(t, what.SetAttr("levels", []int32{10}))
	require.NoError(t, what.SetAttr("angles", []float64{0.5, 1.5, 2.5}))
	require.NoError(t, what.SetAttr("count", uint16(7)))

	ds1, err := root.CreateGroup("dataset1")
	require.NoError(t, err)
	_, err = ds1.CreateDataset("data", []uint8{1, 2, 3}, hdf5.WithAttribute("CLASS", "IMAGE"))
	require.NoError(t, err)

	require.NoError(t, f.Close())
	return name
}

func TestLoadAttributeShapes(t *testing.T) {
	tr, err := Load(writeRawFile(t))
	require.NoError(t, err)

	v, err := tr.Attribute("/what/object")
	require.NoError(t, err)
	assert.Equal(t, String("VP"), v)

	v, err = tr.Attribute("/what/levels")
	require.NoError(t, err)
	assert.Equal(t, Int(10), v, "single-element arrays load as scalars")

	v, err = tr.Attribute("/what/count")
	require.NoError(t, err)
	assert.Equal(t, Int(7), v)

	// Multi-element attributes are kept but cannot be read.
	n, ok := tr.Node("/what/angles")
	require.True(t, ok)
	assert.Equal(t, AttributeNode, n.Kind)
	_, err = tr.Attribute("/what/angles")
	assert.ErrorIs(t, err, ErrUnsupportedAttributeValueType)

	a, err := tr.Dataset("/dataset1/data")
	require.NoError(t, err)
	assert.Equal(t, TypeUint8, a.ElementType)
	assert.Equal(t, []uint8{1, 2, 3}, a.Data)

	v, err = tr.Attribute("/dataset1/data/CLASS")
	require.NoError(t, err)
	assert.Equal(t, String("IMAGE"), v)
}

func TestLoadThenConvert(t *testing.T) {
	name := filepath.Join(t.TempDir(), "v22.h5")
	require.NoError(t, Store(profileTree(t), name))

	tr, err := Load(name)
	require.NoError(t, err)
	res, err := NewConverter(tr).Convert("DBZH,NV", "v21.h5")
	require.NoError(t, err)

	q, err := res.Tree.Attribute("/dataset1/data1/what/quantity")
	require.NoError(t, err)
	assert.Equal(t, String("dbz"), q)

	a, err := res.Tree.Dataset("/dataset1/data2/data")
	require.NoError(t, err)
	assert.Equal(t, TypeInt, a.ElementType)
	assert.Equal(t, []int32{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, a.Data)
}
