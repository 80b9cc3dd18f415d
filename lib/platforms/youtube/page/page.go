package page

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"ytfeed/lib/htmlutil"

	"github.com/PuerkitoBio/goquery"
)

type ExtractionKind string

const (
	KindState  ExtractionKind = "state"
	KindConfig ExtractionKind = "config"
)

// ExtractionError is returned when one of the two embedded payloads cannot be
// found or decoded.
type ExtractionError struct {
	Kind ExtractionKind
	Err  error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extract %s: %s", e.Kind, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

var errScriptNotFound = fmt.Errorf("script not found")

// Page is a fetched page reduced to its two embedded payloads.
type Page struct {
	State  Node
	Config Config
}

// Parse extracts both payloads from a page.
func Parse(html []byte) (Page, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return Page{}, &ExtractionError{Kind: KindState, Err: err}
	}
	state, err := ExtractState(doc)
	if err != nil {
		return Page{}, err
	}
	cfg, err := ExtractConfig(doc)
	if err != nil {
		return Page{}, err
	}
	return Page{State: state, Config: cfg}, nil
}

var statePrefix = regexp.MustCompile(`^(?:var ytInitialData\s*=|window\["ytInitialData"\]\s*=)`)

const jsonParsePrefix = "JSON.parse("

// ExtractState decodes the ytInitialData snapshot.
func ExtractState(doc *goquery.Document) (Node, error) {
	var text string
	found := false
	for _, script := range htmlutil.ScriptTexts(doc) {
		trimmed := strings.TrimSpace(script)
		if loc := statePrefix.FindStringIndex(trimmed); loc != nil {
			text = trimmed[loc[1]:]
			found = true
			break
		}
	}
	if !found {
		return Node{}, &ExtractionError{Kind: KindState, Err: errScriptNotFound}
	}

	if i := strings.IndexAny(text, "\r\n"); i >= 0 {
		text = text[:i]
	}
	text = strings.TrimSpace(text)
	text = strings.TrimSuffix(text, ";")

	if strings.HasPrefix(text, jsonParsePrefix) {
		var encoded string
		decoder := json.NewDecoder(strings.NewReader(text[len(jsonParsePrefix):]))
		err := decoder.Decode(&encoded)
		if err != nil {
			return Node{}, &ExtractionError{Kind: KindState, Err: fmt.Errorf("decode JSON.parse argument: %w", err)}
		}
		text = encoded
	}

	node, err := DecodeNode([]byte(text))
	if err != nil {
		return Node{}, &ExtractionError{Kind: KindState, Err: err}
	}
	if _, ok := node.Value().(map[string]any); !ok {
		return Node{}, &ExtractionError{Kind: KindState, Err: fmt.Errorf("expected an object, got %T", node.Value())}
	}
	return node, nil
}

const (
	configMarker = `"INNERTUBE_CONTEXT_CLIENT_VERSION":`
	configCall   = "ytcfg.set({"
)

// ExtractConfig decodes the ytcfg.set({...}) map that carries the client
// version.
func ExtractConfig(doc *goquery.Document) (Config, error) {
	script, ok := htmlutil.FirstScript(doc, func(text string) bool {
		return strings.Contains(text, configMarker)
	})
	if !ok {
		return Config{}, &ExtractionError{Kind: KindConfig, Err: errScriptNotFound}
	}

	script = strings.NewReplacer("\r", "", "\n", "").Replace(script)
	i := strings.LastIndex(script, configCall)
	if i < 0 {
		return Config{}, &ExtractionError{Kind: KindConfig, Err: fmt.Errorf("no %s call", configCall)}
	}
	script = "{" + script[i+len(configCall):]

	node, err := DecodeNode([]byte(script))
	if err != nil {
		return Config{}, &ExtractionError{Kind: KindConfig, Err: err}
	}
	return configFromNode(node), nil
}
