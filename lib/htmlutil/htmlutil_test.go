package htmlutil

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
)

const document = `<html><head>
<script src="/base.js"></script>
<script>var a = 1;</script>
</head><body>
<p>hello <b>world</b></p>
<script>var ytInitialData = {};</script>
</body></html>`

func TestScripts(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(document))
	require.NoError(t, err)

	require.Equal(t, []string{"", "var a = 1;", "var ytInitialData = {};"}, ScriptTexts(doc))

	text, ok := FirstScript(doc, func(text string) bool {
		return strings.Contains(text, "ytInitialData")
	})
	require.True(t, ok)
	require.Equal(t, "var ytInitialData = {};", text)

	_, ok = FirstScript(doc, func(text string) bool { return false })
	require.False(t, ok)
}

func TestGetText(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(document))
	require.NoError(t, err)
	require.Equal(t, "hello world", GetText(doc.Find("p").Nodes[0]))
	require.Equal(t, "", GetText(nil))
}
