package hdf5

import (
	"path/filepath"
	"testing"
)

// newTestFile creates a writable file in a per-test directory.
func newTestFile(t *testing.T, name string) (*File, string) {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	f, err := Create(p)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	return f, p
}

// reopen closes f and opens the same file read-only.
func reopen(t *testing.T, f *File) *File {
	t.Helper()
	p := f.Path()
	if err := f.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	f2, err := Open(p)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { f2.Close() })
	return f2
}

// buildSampleFile writes a small hierarchy with attributes on groups and
// datasets:
//
//	/            @Conventions
//	/what        @object @version
//	/dataset1/data1/data  @units
func buildSampleFile(t *testing.T) *File {
	t.Helper()
	f, _ := newTestFile(t, "sample.h5")
	root := f.Root()

	if err := root.SetAttr("Conventions", "ODIM_H5/V2_2"); err != nil {
		t.Fatalf("SetAttr failed: %v", err)
	}
	what, err := root.CreateGroup("what")
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	if err := what.SetAttr("object", "VP"); err != nil {
		t.Fatalf("SetAttr failed: %v", err)
	}
	if err := what.SetAttr("version", "H5rad 2.2"); err != nil {
		t.Fatalf("SetAttr failed: %v", err)
	}

	ds1, err := root.CreateGroup("dataset1")
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	d1, err := ds1.CreateGroup("data1")
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	if _, err := d1.CreateDataset("data", []float64{1.5, 2.5, 3.5}, WithAttribute("units", "m/s")); err != nil {
		t.Fatalf("CreateDataset failed: %v", err)
	}

	return reopen(t, f)
}
