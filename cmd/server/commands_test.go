package main

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"equitystek/server/internal/domainerr"
)

const testPlans = `
plans:
  - code: starter
    name: Starter
    base_price: "9.99"
    price_per_property: "5"
    max_properties: 3
`

func execute(t *testing.T, cmd *cobra.Command, args ...string) (map[string]interface{}, error) {
	t.Helper()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)

	if err := cmd.Execute(); err != nil {
		return nil, err
	}
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(out.Bytes(), &body))
	return body, nil
}

func plansFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "plans.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testPlans), 0644))
	return path
}

func TestQuoteCmd(t *testing.T) {
	body, err := execute(t, quoteCmd(), "--plan", "starter", "--from", "1", "--to", "3", "--file", plansFile(t))
	require.NoError(t, err)

	assert.Equal(t, float64(1), body["previous_property_count"])
	assert.Equal(t, float64(3), body["property_count"])
	assert.Equal(t, "9.99", body["current_price"])
	assert.Equal(t, "19.99", body["estimated_price"])
	assert.Equal(t, "10", body["price_difference"])
}

func TestQuoteCmd_RejectsNonPositiveCounts(t *testing.T) {
	tests := []struct {
		name     string
		from, to string
	}{
		{"zero from", "0", "2"},
		{"negative to", "1", "-4"},
		{"both invalid", "0", "-4"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, quoteCmd(), "--plan", "starter", "--from", tt.from, "--to", tt.to, "--file", plansFile(t))

			var invalid *domainerr.InvalidInputError
			require.ErrorAs(t, err, &invalid)
			assert.Equal(t, "property_count", invalid.Field)
		})
	}
}

func TestQuoteCmd_PlanLimitAndUnknownPlan(t *testing.T) {
	_, err := execute(t, quoteCmd(), "--plan", "starter", "--from", "3", "--to", "4", "--file", plansFile(t))
	_, ok := domainerr.AsPlanLimit(err)
	assert.True(t, ok)

	_, err = execute(t, quoteCmd(), "--plan", "enterprise", "--file", plansFile(t))
	assert.ErrorContains(t, err, `plan "enterprise" not found`)
}

func TestValueCmd(t *testing.T) {
	body, err := execute(t, valueCmd(), "--sqft", "2000", "--beds", "3", "--baths", "2", "--added", "8000")
	require.NoError(t, err)
	assert.Equal(t, "465000", body["base_value"])
	assert.Equal(t, "8000", body["maintenance_added_value"])
	assert.Equal(t, "473000", body["composite_value"])

	body, err = execute(t, valueCmd(), "--sqft", "2000", "--beds", "3", "--baths", "2", "--base")
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"base_value": "465000"}, body)
}

func TestValueCmd_InvalidInput(t *testing.T) {
	_, err := execute(t, valueCmd(), "--sqft", "0")
	assert.True(t, domainerr.IsInvalidInput(err))

	_, err = execute(t, valueCmd(), "--sqft", "1000", "--baths", "two")
	assert.ErrorContains(t, err, "invalid --baths")
}
