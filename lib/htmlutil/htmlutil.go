package htmlutil

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

func GetText(node *html.Node) string {
	var buffer bytes.Buffer
	getTextRecursive(node, &buffer)
	return buffer.String()
}

func getTextRecursive(node *html.Node, buffer *bytes.Buffer) {
	if node == nil {
		return
	}
	if node.Type == html.TextNode {
		buffer.WriteString(node.Data)
		return
	}
	child := node.FirstChild
	for child != nil {
		getTextRecursive(child, buffer)
		child = child.NextSibling
	}
}

// ScriptTexts returns the text of every inline <script> in document order.
// Scripts with a src attribute and no body come back as empty strings.
func ScriptTexts(doc *goquery.Document) []string {
	nodes := doc.Find("script").Nodes
	texts := make([]string, len(nodes))
	for i, n := range nodes {
		texts[i] = GetText(n)
	}
	return texts
}

// FirstScript returns the first inline script for which match returns true.
func FirstScript(doc *goquery.Document, match func(text string) bool) (string, bool) {
	for _, text := range ScriptTexts(doc) {
		if strings.TrimSpace(text) == "" {
			continue
		}
		if match(text) {
			return text, true
		}
	}
	return "", false
}
