package hdf5

import (
	"strings"
	"testing"
)

func TestAttrPaths(t *testing.T) {
	valid := map[string][2]string{
		"/@Conventions":              {"/", "Conventions"},
		"/how@task":                  {"/how", "task"},
		"/dataset1/data1/what@gain":  {"/dataset1/data1/what", "gain"},
		"dataset1/what@product":      {"/dataset1/what", "product"},
		"/dataset1/data1/data@CLASS": {"/dataset1/data1/data", "CLASS"},
	}
	for in, want := range valid {
		obj, name, err := ParseAttrPath(in)
		if err != nil {
			t.Errorf("ParseAttrPath(%q): %v", in, err)
			continue
		}
		if obj != want[0] || name != want[1] {
			t.Errorf("ParseAttrPath(%q) = %q, %q, want %q, %q", in, obj, name, want[0], want[1])
		}
		if in[0] == '/' {
			if joined := JoinAttrPath(obj, name); joined != in {
				t.Errorf("JoinAttrPath(%q, %q) = %q", obj, name, joined)
			}
		}
	}

	for _, in := range []string{"", "/what", "/what@"} {
		if _, _, err := ParseAttrPath(in); err == nil {
			t.Errorf("ParseAttrPath(%q) succeeded", in)
		}
	}
}

func TestWalk(t *testing.T) {
	f := buildSampleFile(t)

	var groups, datasets []string
	err := Walk(f.Root(), func(p string, obj interface{}, err error) error {
		if err != nil {
			return err
		}
		switch obj.(type) {
		case *Group:
			groups = append(groups, p)
		case *Dataset:
			datasets = append(datasets, p)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Walk failed: %v", err)
	}

	wantGroups := []string{"/", "/what", "/dataset1", "/dataset1/data1"}
	if strings.Join(groups, ",") != strings.Join(wantGroups, ",") {
		t.Errorf("groups = %v, want %v", groups, wantGroups)
	}
	if len(datasets) != 1 || datasets[0] != "/dataset1/data1/data" {
		t.Errorf("datasets = %v, want [/dataset1/data1/data]", datasets)
	}
}

func TestGetAttr(t *testing.T) {
	f := buildSampleFile(t)

	attr, err := f.GetAttr("/dataset1/data1/data@units")
	if err != nil {
		t.Fatalf("GetAttr failed: %v", err)
	}
	val, err := attr.Value()
	if err != nil {
		t.Fatalf("Value failed: %v", err)
	}
	if v, ok := val.(string); !ok || v != "m/s" {
		t.Errorf("got %v (%T), want 'm/s'", val, val)
	}
}

func TestReadAttr(t *testing.T) {
	f := buildSampleFile(t)

	tests := []struct {
		path string
		want string
	}{
		{"/@Conventions", "ODIM_H5/V2_2"},
		{"/what@object", "VP"},
		{"/what@version", "H5rad 2.2"},
	}
	for _, tt := range tests {
		val, err := f.ReadAttr(tt.path)
		if err != nil {
			t.Errorf("ReadAttr(%q) failed: %v", tt.path, err)
			continue
		}
		if val != tt.want {
			t.Errorf("ReadAttr(%q) = %v, want %q", tt.path, val, tt.want)
		}
	}
}

func TestGetAttrNotFound(t *testing.T) {
	f := buildSampleFile(t)

	if _, err := f.GetAttr("/what@nonexistent"); err == nil {
		t.Error("expected error for non-existent attribute")
	}
	if _, err := f.GetAttr("/nonexistent@attr"); err == nil {
		t.Error("expected error for non-existent object")
	}
}
