package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSONObject(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			"fenced markdown",
			"```json\n{\"a\":1}\n```",
			`{"a":1}`,
		},
		{
			"surrounding prose",
			"辨識結果如下：{\"items\":[]} 請確認",
			`{"items":[]}`,
		},
		{
			"bare object unchanged",
			`{"a":1}`,
			`{"a":1}`,
		},
		{
			"no object returns input",
			"no json here",
			"no json here",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ExtractJSONObject(tt.input))
		})
	}
}

func TestQuoteJSONKeys(t *testing.T) {
	raw := `{name: "Milk", quantity: 2, nested: {unit: "L"}}`
	quoted := QuoteJSONKeys(raw)
	assert.Equal(t, `{"name": "Milk", "quantity": 2, "nested": {"unit": "L"}}`, quoted)

	// 已經合法的 JSON 不受影響
	valid := `{"name": "Milk"}`
	assert.Equal(t, valid, QuoteJSONKeys(valid))
}

func TestParseJSON(t *testing.T) {
	var out struct {
		Name     string  `json:"name"`
		Quantity float64 `json:"quantity"`
	}

	require.NoError(t, ParseJSON(`{"name":"Milk","quantity":2}`, &out))
	assert.Equal(t, "Milk", out.Name)
	assert.Equal(t, 2.0, out.Quantity)
}

func TestParseJSON_RejectsTrailingData(t *testing.T) {
	var out map[string]interface{}
	err := ParseJSON(`{"a":1}{"b":2}`, &out)
	assert.Error(t, err)
}

func TestParseJSONStrict_RejectsUnknownFields(t *testing.T) {
	var out struct {
		Name string `json:"name"`
	}
	err := ParseJSONStrict(`{"name":"Milk","extra":true}`, &out)
	assert.Error(t, err)
}
