package pipeline

import (
	"github.com/claimspipe/billamounts/constants"
)

// Amount is one classified amount in the external result shape, with
// source-text provenance for auditability.
type Amount struct {
	Type   string  `json:"type"`
	Value  float64 `json:"value"`
	Source string  `json:"source"`
}

// Result is the terminal entity of a pipeline run. Constructed once per
// invocation and immutable after construction. Degenerate outcomes carry a
// non-ok Status with a human-readable Reason instead of an error: callers
// must branch on them as data.
type Result struct {
	Currency   string                   `json:"currency,omitempty"`
	Amounts    []Amount                 `json:"amounts,omitempty"`
	Status     constants.PipelineStatus `json:"status"`
	Reason     string                   `json:"reason,omitempty"`
	Confidence float64                  `json:"confidence,omitempty"`
}
