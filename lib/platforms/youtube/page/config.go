package page

import (
	"fmt"
	"strings"
)

// ClientName is the innertube client every call identifies as.
const ClientName = "WEB"

// Config is the subset of the page's ytcfg map needed to sign and address
// innertube calls.
type Config struct {
	APIKey             string
	VisitorData        string
	DelegatedSessionID string
	UserSessionID      string
	// SessionIndex is "0" when the page does not name one.
	SessionIndex   string
	ClientVersion  string
	ClientNameCode string
}

type MissingConfigFieldError struct {
	Fields []string
}

func (e *MissingConfigFieldError) Error() string {
	return fmt.Sprintf("page config is missing %s", strings.Join(e.Fields, ", "))
}

func configFromNode(root Node) Config {
	return Config{
		APIKey:             root.Get("INNERTUBE_API_KEY").StrOr(""),
		VisitorData:        root.Get("VISITOR_DATA").StrOr(""),
		DelegatedSessionID: root.Get("DELEGATED_SESSION_ID").StrOr(""),
		UserSessionID:      root.Get("USER_SESSION_ID").StrOr(""),
		SessionIndex:       root.Get("SESSION_INDEX").StrOr("0"),
		ClientVersion:      root.Get("INNERTUBE_CONTEXT_CLIENT_VERSION").StrOr(""),
		ClientNameCode:     root.Get("INNERTUBE_CONTEXT_CLIENT_NAME").StrOr(""),
	}
}

// Validate checks the fields every innertube call needs.
func (c Config) Validate() error {
	var missing []string
	if c.APIKey == "" {
		missing = append(missing, "INNERTUBE_API_KEY")
	}
	if c.ClientVersion == "" {
		missing = append(missing, "INNERTUBE_CONTEXT_CLIENT_VERSION")
	}
	if c.DelegatedSessionID == "" && c.UserSessionID == "" {
		missing = append(missing, "DELEGATED_SESSION_ID or USER_SESSION_ID")
	}
	if len(missing) > 0 {
		return &MissingConfigFieldError{Fields: missing}
	}
	return nil
}

// ClientContext is the context.client object of an innertube body.
func (c Config) ClientContext() map[string]any {
	return map[string]any{
		"clientName":    ClientName,
		"clientVersion": c.ClientVersion,
	}
}
