package bench

import (
	"io"
	"time"

	"github.com/RaphaelDarley/quadrille/internal/cli/output"
)

// Result is one run's report.
type Result struct {
	RunID  string `json:"run_id" yaml:"run_id"`
	Store  string `json:"store" yaml:"store"`
	Policy string `json:"policy" yaml:"policy"`

	Workers  int `json:"workers" yaml:"workers"`
	Attempts int `json:"attempts" yaml:"attempts"`

	Duration  time.Duration `json:"duration" yaml:"duration"`
	OpsPerSec float64       `json:"ops_per_sec" yaml:"ops_per_sec"`

	Commits   uint64 `json:"commits" yaml:"commits"`
	Conflicts uint64 `json:"conflicts" yaml:"conflicts"`
	Races     uint64 `json:"races" yaml:"races"`
	Resolves  uint64 `json:"resolves" yaml:"resolves"`
	Exhausted uint64 `json:"exhausted" yaml:"exhausted"`

	LatencyP50  time.Duration `json:"latency_p50" yaml:"latency_p50"`
	LatencyP90  time.Duration `json:"latency_p90" yaml:"latency_p90"`
	LatencyP99  time.Duration `json:"latency_p99" yaml:"latency_p99"`
	LatencyMax  time.Duration `json:"latency_max" yaml:"latency_max"`
	LatencyMean time.Duration `json:"latency_mean" yaml:"latency_mean"`

	FinalVersion      uint64 `json:"final_version" yaml:"final_version"`
	FinalKeys         int    `json:"final_keys" yaml:"final_keys"`
	DistinctCommitted int    `json:"distinct_committed" yaml:"distinct_committed"`
	Verified          bool   `json:"verified" yaml:"verified"`
	Interrupted       bool   `json:"interrupted" yaml:"interrupted"`
}

// Write renders the result to w in the given format.
func (r *Result) Write(w io.Writer, format output.Format) error {
	return output.NewFormatter(format).Format(w, r)
}
