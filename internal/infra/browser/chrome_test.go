package browser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractScript_EmbedsSelectors(t *testing.T) {
	script := extractScript(Config{
		ItemSelector:  "tr.athing",
		TitleSelector: "span.titleline > a",
		TimeSelector:  "span.age",
		TimeAttr:      "title",
	})

	assert.Contains(t, script, `querySelectorAll("tr.athing")`)
	assert.Contains(t, script, `querySelector("span.titleline > a")`)
	assert.Contains(t, script, `getAttribute("title")`)
	assert.Contains(t, script, "nextElementSibling")
}

func TestExtractScript_TextContentWhenNoAttr(t *testing.T) {
	script := extractScript(Config{
		ItemSelector:  "li.entry",
		TitleSelector: "a",
		TimeSelector:  "time",
	})

	assert.Contains(t, script, "t.textContent.trim()")
	assert.NotContains(t, script, "getAttribute")
}

func TestExtractScript_EscapesQuotedSelectors(t *testing.T) {
	script := extractScript(Config{
		ItemSelector:  `tr[data-kind="story"]`,
		TitleSelector: "a",
		TimeSelector:  "time",
	})

	assert.Contains(t, script, `querySelectorAll("tr[data-kind=\"story\"]")`)
}

func TestSettleScript(t *testing.T) {
	script := settleScript("tr.athing", 30, "item-1")

	assert.Contains(t, script, "rows.length > 30")
	assert.Contains(t, script, `!== "item-1"`)
}

func TestToRawItems(t *testing.T) {
	items := toRawItems([]pageRecord{
		{ID: "1", Title: "First", Time: "1735787045"},
		{ID: "2", Title: "Second", Time: "not a time"},
		{ID: "3", Title: "", Time: ""},
	})

	require.Len(t, items, 3)

	require.NotNil(t, items[0].UnixSeconds)
	assert.Equal(t, 1735787045.0, *items[0].UnixSeconds)

	assert.Nil(t, items[1].UnixSeconds, "unparseable time yields no timestamp")
	assert.Equal(t, "Second", items[1].Title)

	assert.Empty(t, items[2].Title)
	assert.Nil(t, items[2].UnixSeconds)
}
