package hdf5

import "testing"

func TestCreate(t *testing.T) {
	f, _ := newTestFile(t, "create.h5")
	if f.Root() == nil {
		t.Fatal("root group should not be nil")
	}

	f2 := reopen(t, f)
	if f2.Version() < 2 {
		t.Errorf("superblock version = %d, want >= 2", f2.Version())
	}
	members, err := f2.Root().Members()
	if err != nil {
		t.Fatalf("Members failed: %v", err)
	}
	if len(members) != 0 {
		t.Errorf("new file has members %v", members)
	}
}

func TestCreateFlush(t *testing.T) {
	f, p := newTestFile(t, "flush.h5")
	if _, err := f.Root().CreateGroup("what"); err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	if err := f.Flush(); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}

	// A flushed file is readable while the writer is still open
	f2, err := Open(p)
	if err != nil {
		t.Fatalf("Open after flush failed: %v", err)
	}
	defer f2.Close()
	if _, err := f2.OpenGroup("what"); err != nil {
		t.Errorf("OpenGroup after flush failed: %v", err)
	}
	f.Close()
}
