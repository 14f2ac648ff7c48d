package extraction

import (
	"testing"

	"pantry-keeper/internal/infrastructure/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testService() *Service {
	return &Service{
		config: &config.Config{
			Pantry: config.PantryConfig{
				DefaultUnit:     "份",
				DefaultCategory: "未分類",
				RoundDecimals:   2,
			},
		},
	}
}

func TestParseDrafts(t *testing.T) {
	s := testService()

	content := `辨識結果如下：
{"items":[{"name":"牛奶","quantity":2,"unit":"瓶","category":"乳製品","price":78},{"name":"雞蛋","quantity":10,"unit":"顆","category":"蛋類","price":65}],"summary":"全聯收據，共 2 項食材"}`

	drafts, err := s.parseDrafts(content)
	require.NoError(t, err)
	require.Len(t, drafts, 2)

	assert.Equal(t, "牛奶", drafts[0].Name)
	assert.Equal(t, 2.0, drafts[0].Quantity)
	assert.Equal(t, "瓶", drafts[0].Unit)
	assert.Equal(t, 78.0, drafts[0].Price)

	assert.Equal(t, "雞蛋", drafts[1].Name)
}

func TestParseDrafts_FillsDefaults(t *testing.T) {
	s := testService()

	content := `{"items":[{"name":"鹽","quantity":0,"unit":"","category":""}]}`

	drafts, err := s.parseDrafts(content)
	require.NoError(t, err)
	require.Len(t, drafts, 1)

	// 預設值在邊界一次補齊
	assert.Equal(t, 1.0, drafts[0].Quantity)
	assert.Equal(t, "份", drafts[0].Unit)
	assert.Equal(t, "未分類", drafts[0].Category)
}

func TestParseDrafts_FiltersEmptyNames(t *testing.T) {
	s := testService()

	content := `{"items":[{"name":"  ","quantity":1},{"name":"豆腐","quantity":1,"unit":"盒"}]}`

	drafts, err := s.parseDrafts(content)
	require.NoError(t, err)
	require.Len(t, drafts, 1)
	assert.Equal(t, "豆腐", drafts[0].Name)
}

func TestParseDrafts_RepairsUnquotedKeys(t *testing.T) {
	s := testService()

	// 辨識服務偶爾回傳未加引號的鍵
	content := "```json\n{items:[{name:\"米\",quantity:1,unit:\"包\"}],summary:\"ok\"}\n```"

	drafts, err := s.parseDrafts(content)
	require.NoError(t, err)
	require.Len(t, drafts, 1)
	assert.Equal(t, "米", drafts[0].Name)
}

func TestParseDrafts_InvalidJSON(t *testing.T) {
	s := testService()

	_, err := s.parseDrafts("完全不是 JSON")
	assert.Error(t, err)
}
