package order_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/otwjunior/coffee-house/internal/order"
)

func TestCustomizations_Display(t *testing.T) {
	tests := []struct {
		name           string
		customizations order.Customizations
		want           string
	}{
		{
			name:           "nil_map_is_standard",
			customizations: nil,
			want:           "Standard",
		},
		{
			name:           "empty_map_is_standard",
			customizations: order.Customizations{},
			want:           "Standard",
		},
		{
			name:           "size_abbreviated",
			customizations: order.Customizations{"size": "large"},
			want:           "L",
		},
		{
			name:           "unknown_size_rendered_verbatim",
			customizations: order.Customizations{"size": "venti"},
			want:           "venti",
		},
		{
			name:           "milk_capitalized",
			customizations: order.Customizations{"milk": "oat"},
			want:           "Oat",
		},
		{
			name:           "single_shot_singular",
			customizations: order.Customizations{"shots": 1},
			want:           "1 shot",
		},
		{
			name:           "multiple_shots_plural",
			customizations: order.Customizations{"shots": 3},
			want:           "3 shots",
		},
		{
			name:           "shots_from_json_float",
			customizations: order.Customizations{"shots": float64(2)},
			want:           "2 shots",
		},
		{
			name:           "temperature_in_celsius",
			customizations: order.Customizations{"temperature": 65},
			want:           "65°C",
		},
		{
			name:           "flags_rendered_when_true",
			customizations: order.Customizations{"decaf": true, "extra_hot": true},
			want:           "Decaf, Extra Hot",
		},
		{
			name:           "false_and_empty_values_skipped",
			customizations: order.Customizations{"decaf": false, "milk": "", "syrup": "caramel"},
			want:           "Caramel",
		},
		{
			name: "fixed_display_order",
			customizations: order.Customizations{
				"extra_hot": true,
				"milk":      "soy",
				"size":      "small",
				"shots":     2,
			},
			want: "S, Soy, 2 shots, Extra Hot",
		},
		{
			name:           "unrecognized_keys_ignored",
			customizations: order.Customizations{"size": "medium", "sprinkles": "rainbow"},
			want:           "M",
		},
		{
			name:           "only_unrecognized_keys_is_custom",
			customizations: order.Customizations{"sprinkles": "rainbow"},
			want:           "Custom",
		},
		{
			name:           "only_skipped_values_is_custom",
			customizations: order.Customizations{"decaf": false, "milk": ""},
			want:           "Custom",
		},
		{
			name:           "zero_shots_is_custom",
			customizations: order.Customizations{"shots": 0},
			want:           "Custom",
		},
		{
			name:           "zero_temperature_is_custom",
			customizations: order.Customizations{"temperature": 0},
			want:           "Custom",
		},
		{
			name:           "zero_shots_from_json_float_skipped",
			customizations: order.Customizations{"shots": float64(0), "milk": "oat"},
			want:           "Oat",
		},
		{
			name:           "ice_level_capitalized",
			customizations: order.Customizations{"ice_level": "light"},
			want:           "Light",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.customizations.Display())
		})
	}
}
