// Package harness replays recorded HTTP traffic and provides scripted
// fixture sources so searches can run without the network.
package harness

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"

	"github.com/honeycarbs/jobscout/pkg/fetch"
)

// Cassette is a recorded set of request/response pairs
type Cassette struct {
	Name         string        `yaml:"name"`
	RecordedAt   string        `yaml:"recorded_at,omitempty"`
	Interactions []Interaction `yaml:"interactions"`
}

// Interaction is one recorded exchange
type Interaction struct {
	Request  RecordedRequest  `yaml:"request"`
	Response RecordedResponse `yaml:"response"`
}

type RecordedRequest struct {
	Method string `yaml:"method"`
	URL    string `yaml:"url"`
}

type RecordedResponse struct {
	Status  int               `yaml:"status"`
	Headers map[string]string `yaml:"headers,omitempty"`
	Body    string            `yaml:"body"`
}

const cassetteSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["name", "interactions"],
  "properties": {
    "name": {"type": "string", "minLength": 1},
    "recorded_at": {"type": "string"},
    "interactions": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["request", "response"],
        "properties": {
          "request": {
            "type": "object",
            "required": ["url"],
            "properties": {
              "method": {"type": "string", "enum": ["GET", "POST", "HEAD"]},
              "url": {"type": "string", "pattern": "^https?://"}
            }
          },
          "response": {
            "type": "object",
            "required": ["status"],
            "properties": {
              "status": {"type": "integer", "minimum": 100, "maximum": 999},
              "headers": {"type": "object", "additionalProperties": {"type": "string"}},
              "body": {"type": "string"}
            }
          }
        }
      }
    }
  }
}`

var schemaLoader = gojsonschema.NewStringLoader(cassetteSchema)

// ParseCassette validates raw YAML against the cassette schema and decodes it
func ParseCassette(raw []byte) (*Cassette, error) {
	var doc map[string]any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("harness: parse cassette: %w", err)
	}
	if doc == nil {
		return nil, fmt.Errorf("harness: cassette is empty")
	}

	res, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewGoLoader(doc))
	if err != nil {
		return nil, fmt.Errorf("harness: validate cassette: %w", err)
	}
	if !res.Valid() {
		problems := make([]string, 0, len(res.Errors()))
		for _, e := range res.Errors() {
			problems = append(problems, e.String())
		}
		return nil, fmt.Errorf("harness: invalid cassette: %s", strings.Join(problems, "; "))
	}

	var c Cassette
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("harness: decode cassette: %w", err)
	}
	for i := range c.Interactions {
		if c.Interactions[i].Request.Method == "" {
			c.Interactions[i].Request.Method = "GET"
		}
	}
	return &c, nil
}

// LoadCassette reads and validates a cassette file
func LoadCassette(path string) (*Cassette, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("harness: read cassette: %w", err)
	}
	c, err := ParseCassette(raw)
	if err != nil {
		return nil, fmt.Errorf("%w (%s)", err, path)
	}
	return c, nil
}

// Save writes the cassette as YAML
func (c *Cassette) Save(path string) error {
	if c.RecordedAt == "" {
		c.RecordedAt = time.Now().UTC().Format(time.RFC3339)
	}
	raw, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("harness: encode cassette: %w", err)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("harness: write cassette: %w", err)
	}
	return nil
}

// canonicalURL sorts query parameters and drops credentials so equivalent
// URLs match whoever recorded them
func canonicalURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	q := u.Query()
	for k := range q {
		if fetch.IsSecretParam(k) {
			q.Del(k)
		}
	}
	u.RawQuery = q.Encode()
	u.Fragment = ""
	return u.String()
}

func interactionKey(method, rawURL string) string {
	if method == "" {
		method = "GET"
	}
	return strings.ToUpper(method) + " " + canonicalURL(rawURL)
}
