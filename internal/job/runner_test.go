package job

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baltrad/vpconvert/odim"
)

var testNow = time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)

// writeProfile stores a minimal 2.2 vertical profile holding ff and n.
func writeProfile(t *testing.T, object string) string {
	t.Helper()
	tr := odim.NewTree()
	for _, g := range []string{"/what", "/where", "/how", "/dataset1", "/dataset1/data1", "/dataset1/data1/what", "/dataset1/data2", "/dataset1/data2/what"} {
		require.NoError(t, tr.AddGroup(g))
	}
	require.NoError(t, tr.AddAttribute("/what/object", odim.String(object)))
	require.NoError(t, tr.AddAttribute("/dataset1/data1/what/quantity", odim.String("ff")))
	require.NoError(t, tr.AddAttribute("/dataset1/data2/what/quantity", odim.String("n")))

	ff, err := odim.NewArray([]float64{1, 2, 3}, 3, 1)
	require.NoError(t, err)
	n, err := odim.NewArray([]int32{4, 5, 6}, 3, 1)
	require.NoError(t, err)
	require.NoError(t, tr.AddDataset("/dataset1/data1/data", ff))
	require.NoError(t, tr.AddDataset("/dataset1/data2/data", n))

	name := filepath.Join(t.TempDir(), "vp.h5")
	require.NoError(t, odim.Store(tr, name))
	return name
}

func newTestRunner(cfg RunnerConfig) *Runner {
	return NewRunner(cfg, clockwork.NewFakeClockAt(testNow), slog.Default())
}

func TestRunnerRun(t *testing.T) {
	input := writeProfile(t, "VP")
	outDir := t.TempDir()
	r := newTestRunner(RunnerConfig{Compression: 6, OutputDir: outDir, Quantities: "ff"})

	res := r.Run(context.Background(), Job{ID: "j1", Input: input, Quantities: "NV,ff"})

	assert.Equal(t, StatusOK, res.Status, res.Error)
	assert.Empty(t, res.Error)
	assert.Equal(t, "j1", res.ID)
	assert.Equal(t, filepath.Join(outDir, "vp_v21.h5"), res.Output)
	assert.Equal(t, []string{"NV", "ff"}, res.Quantities)
	assert.Equal(t, testNow, res.ProcessedAt)
	assert.Zero(t, res.DurationMS)

	tree, err := odim.Load(res.Output)
	require.NoError(t, err)
	q, err := tree.Attribute("/dataset1/data1/what/quantity")
	require.NoError(t, err)
	assert.Equal(t, odim.String("n"), q)
	v, err := tree.Attribute("/Conventions")
	require.NoError(t, err)
	assert.Equal(t, odim.String("ODIM_H5/V2_1"), v)
}

func TestRunnerDefaultsQuantities(t *testing.T) {
	input := writeProfile(t, "VP")
	output := filepath.Join(t.TempDir(), "out.h5")
	r := newTestRunner(RunnerConfig{Quantities: "ff"})

	res := r.Run(context.Background(), Job{ID: "j2", Input: input, Output: output, Compression: intPtr(0)})
	require.Equal(t, StatusOK, res.Status, res.Error)
	assert.Equal(t, []string{"ff"}, res.Quantities)
	assert.Equal(t, output, res.Output)
}

func TestRunnerFailures(t *testing.T) {
	notHDF5 := filepath.Join(t.TempDir(), "text.h5")
	require.NoError(t, os.WriteFile(notHDF5, []byte("plain text"), 0o644))

	tests := []struct {
		name string
		job  Job
		want string
	}{
		{"not a container", Job{ID: "a", Input: notHDF5}, "not an HDF5 file"},
		{"wrong object", Job{ID: "b", Input: writeProfile(t, "PVOL"), Quantities: "ff"}, "unsupported object type"},
		{"missing quantity", Job{ID: "c", Input: writeProfile(t, "VP"), Quantities: "HGHT"}, "quantity not found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRunner(RunnerConfig{OutputDir: t.TempDir()})
			res := r.Run(context.Background(), tt.job)
			assert.Equal(t, StatusFailed, res.Status)
			assert.Contains(t, res.Error, tt.want)
			_, err := os.Stat(res.Output)
			assert.True(t, os.IsNotExist(err), "no output expected")
		})
	}
}

func TestRunnerCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := newTestRunner(RunnerConfig{})
	res := r.Run(ctx, Job{ID: "c", Input: "/does/not/matter.h5"})
	assert.Equal(t, StatusFailed, res.Status)
	assert.Equal(t, context.Canceled.Error(), res.Error)
}
