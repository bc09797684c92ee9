package ident

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestID_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want ID
	}{
		{"number", `42`, "42"},
		{"string", `"abc-1"`, "abc-1"},
		{"numeric string", `"7"`, "7"},
		{"null", `null`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var id ID
			require.NoError(t, json.Unmarshal([]byte(tt.in), &id))
			assert.Equal(t, tt.want, id)
		})
	}
}

func TestID_UnmarshalJSON_RejectsObjects(t *testing.T) {
	var id ID
	assert.Error(t, json.Unmarshal([]byte(`{"id":1}`), &id))
	assert.Error(t, json.Unmarshal([]byte(`true`), &id))
}

func TestID_MarshalJSON(t *testing.T) {
	out, err := json.Marshal(struct {
		A ID `json:"a"`
		B ID `json:"b"`
	}{A: "12", B: "sku-9"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":12,"b":"sku-9"}`, string(out))
}

func TestID_Int(t *testing.T) {
	n, ok := ID("15").Int()
	assert.True(t, ok)
	assert.Equal(t, int64(15), n)

	_, ok = ID("x").Int()
	assert.False(t, ok)
	assert.True(t, ID("").IsZero())
}
