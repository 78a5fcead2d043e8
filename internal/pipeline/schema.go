package pipeline

import (
	"github.com/claimspipe/billamounts/constants"
)

// BuildResultJSONSchema returns a JSON-Schema (draft 2020-12 subset) for the
// terminal result shape, as a generic map. Used locally to validate what we
// hand to the downstream claims pipeline.
func BuildResultJSONSchema() map[string]any {
	amountProps := map[string]any{
		"type": map[string]any{
			"type": "string",
			"enum": []any{
				string(constants.TotalBill),
				string(constants.Paid),
				string(constants.Due),
			},
		},
		"value":  map[string]any{"type": "number", "minimum": 0.0},
		"source": map[string]any{"type": "string", "minLength": 1},
	}

	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"currency": map[string]any{
				"type": "string",
				"enum": []any{
					string(constants.INR),
					string(constants.USD),
					string(constants.EUR),
					string(constants.GBP),
				},
			},
			"amounts": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type":                 "object",
					"additionalProperties": false,
					"properties":           amountProps,
					"required":             []any{"type", "value", "source"},
				},
			},
			"status": map[string]any{
				"type": "string",
				"enum": []any{
					string(constants.StatusOK),
					string(constants.StatusNoAmountsFound),
					string(constants.StatusLowConfidence),
					string(constants.StatusInvalidAmounts),
				},
			},
			"reason":     map[string]any{"type": "string"},
			"confidence": map[string]any{"type": "number", "minimum": 0.0, "maximum": 1.0},
		},
		"required": []any{"status"},
	}
}
