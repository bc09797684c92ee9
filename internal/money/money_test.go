package money

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRound(t *testing.T) {
	assert.Equal(t, "8.01", Round(decimal.RequireFromString("8.005")).String())
	assert.Equal(t, "8", Round(decimal.RequireFromString("8.0000")).String())
}

func TestParse(t *testing.T) {
	d, err := Parse("12.5")
	require.NoError(t, err)
	assert.True(t, d.Equal(decimal.RequireFromString("12.50")))

	d, err = Parse("")
	require.NoError(t, err)
	assert.True(t, d.IsZero())

	_, err = Parse("twelve")
	assert.Error(t, err)
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "KES 98.00", Format(decimal.NewFromInt(98), "KES"))
	assert.Equal(t, "0.50", Format(decimal.RequireFromString("0.5"), ""))
}

func TestMarshalsAsJSONNumber(t *testing.T) {
	out, err := json.Marshal(map[string]decimal.Decimal{"total": decimal.RequireFromString("98.5")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"total":98.5}`, string(out))
}
