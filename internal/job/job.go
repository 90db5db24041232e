// Package job defines the conversion requests handled by the service and
// the results it publishes.
package job

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Result statuses.
const (
	StatusOK     = "ok"
	StatusFailed = "failed"
)

// ErrInvalidJob is returned for job messages that cannot be processed.
var ErrInvalidJob = errors.New("invalid job")

// Job requests the conversion of one file.
//
// Arguments is the flat key/value list used by product generation
// frameworks, e.g. ["quantities", "NV,DBZH", "compression", "6"]. Explicit
// fields take precedence over it.
type Job struct {
	ID          string   `json:"id"`
	Input       string   `json:"input"`
	Output      string   `json:"output,omitempty"`
	Quantities  string   `json:"quantities,omitempty"`
	Compression *int     `json:"compression,omitempty"`
	Arguments   []string `json:"arguments,omitempty"`
}

// Result reports the outcome of a job.
type Result struct {
	ID          string    `json:"id"`
	Input       string    `json:"input"`
	Output      string    `json:"output,omitempty"`
	Status      string    `json:"status"`
	Error       string    `json:"error,omitempty"`
	Quantities  []string  `json:"quantities,omitempty"`
	DurationMS  int64     `json:"duration_ms"`
	ProcessedAt time.Time `json:"processed_at"`
}

// Message is a job message read from the broker. Commit acknowledges it and
// may be nil.
type Message struct {
	Key       []byte
	Value     []byte
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
	Headers   map[string]string
	Commit    func(ctx context.Context) error
}

// Decode parses a JSON job and folds its argument list into the explicit
// fields.
func Decode(data []byte) (Job, error) {
	var j Job
	if err := json.Unmarshal(data, &j); err != nil {
		return Job{}, fmt.Errorf("%w: %v", ErrInvalidJob, err)
	}
	if err := j.applyArguments(); err != nil {
		return Job{}, err
	}
	if strings.TrimSpace(j.Input) == "" {
		return Job{}, fmt.Errorf("%w: no input file", ErrInvalidJob)
	}
	return j, nil
}

// ParseArguments turns a flat key/value list into a map. Later keys
// replace earlier ones.
func ParseArguments(list []string) (map[string]string, error) {
	if len(list)%2 != 0 {
		return nil, fmt.Errorf("%w: argument list has odd length %d", ErrInvalidJob, len(list))
	}
	out := make(map[string]string, len(list)/2)
	for i := 0; i < len(list); i += 2 {
		out[list[i]] = list[i+1]
	}
	return out, nil
}

func (j *Job) applyArguments() error {
	args, err := ParseArguments(j.Arguments)
	if err != nil {
		return err
	}
	if v, ok := args["input"]; ok && j.Input == "" {
		j.Input = v
	}
	if v, ok := args["output"]; ok && j.Output == "" {
		j.Output = v
	}
	if v, ok := args["quantities"]; ok && j.Quantities == "" {
		j.Quantities = v
	}
	if v, ok := args["compression"]; ok && j.Compression == nil {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 || n > 9 {
			return fmt.Errorf("%w: compression %q", ErrInvalidJob, v)
		}
		j.Compression = &n
	}
	return nil
}

// OutputPath returns the file the job writes. Without an explicit output
// the input name gets a _v21 suffix, placed in dir when dir is set.
func (j Job) OutputPath(dir string) string {
	if j.Output != "" {
		return j.Output
	}
	base := filepath.Base(j.Input)
	ext := filepath.Ext(base)
	name := strings.TrimSuffix(base, ext) + "_v21" + ext
	if ext == "" {
		name += ".h5"
	}
	if dir == "" {
		dir = filepath.Dir(j.Input)
	}
	return filepath.Join(dir, name)
}
