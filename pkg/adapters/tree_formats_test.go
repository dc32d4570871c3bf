package adapters

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/tabkit/tabkit/pkg/tree"
)

const countryJSON = `{
  "id": 1,
  "country": "LK",
  "isCapital": true,
  "zipcodes": [123456, 987654],
  "properties": {
    "salary": "1000 EUR",
    "titles": {"Sir": true}
  },
  "cities": ["Munich", "Berlin"],
  "address": {
    "zipcode": 87463,
    "city": "Munich",
    "street": "Schneckenburgerstrasse"
  }
}`

func TestParseJSON_Scalars(t *testing.T) {
	tr, err := ParseJSON(strings.NewReader(countryJSON))
	if err != nil {
		t.Fatalf("ParseJSON failed: %v", err)
	}

	tests := []struct {
		path string
		want string
	}{
		{"id", "1"},
		{"country", "LK"},
		{"isCapital", "true"},
		{"properties/salary", "1000 EUR"},
		{"properties/titles/Sir", "true"},
		{"properties;titles;Sir", "true"},
		{"address/city", "Munich"},
		{"missing", ""},
	}
	for _, tt := range tests {
		if got := tr.Value(tt.path); got != tt.want {
			t.Errorf("Value(%q): expected %q, got %q", tt.path, tt.want, got)
		}
	}
}

func TestParseJSON_Composites(t *testing.T) {
	tr, err := ParseJSON(strings.NewReader(countryJSON))
	if err != nil {
		t.Fatalf("ParseJSON failed: %v", err)
	}

	// Composite values render as compact JSON in document order.
	tests := []struct {
		path string
		want string
	}{
		{"zipcodes", "[123456,987654]"},
		{"cities", `["Munich","Berlin"]`},
		{"address", `{"zipcode":87463,"city":"Munich","street":"Schneckenburgerstrasse"}`},
		{"properties", `{"salary":"1000 EUR","titles":{"Sir":true}}`},
	}
	for _, tt := range tests {
		if got := tr.Value(tt.path); got != tt.want {
			t.Errorf("Value(%q): expected %q, got %q", tt.path, tt.want, got)
		}
	}
}

func TestParseJSON_NumberLiterals(t *testing.T) {
	tr, err := ParseJSON(strings.NewReader(`{"a": 1E+2, "b": 0.50, "c": -7}`))
	if err != nil {
		t.Fatalf("ParseJSON failed: %v", err)
	}

	// Literals survive as written, no float formatting.
	if got := tr.Value("a"); got != "1E+2" {
		t.Errorf("Expected 1E+2, got %q", got)
	}
	if got := tr.Value("b"); got != "0.50" {
		t.Errorf("Expected 0.50, got %q", got)
	}
	if got := tr.Value("c"); got != "-7" {
		t.Errorf("Expected -7, got %q", got)
	}
}

func TestParseJSON_Null(t *testing.T) {
	tr, err := ParseJSON(strings.NewReader(`{"a": null}`))
	if err != nil {
		t.Fatalf("ParseJSON failed: %v", err)
	}
	if got := tr.Value("a"); got != "" {
		t.Errorf("Expected empty value for null, got %q", got)
	}
	if got := tr.Root.JSON(); got != `{"a":null}` {
		t.Errorf("Expected null to render back, got %q", got)
	}
}

func TestParseJSON_TrailingContent(t *testing.T) {
	if _, err := ParseJSON(strings.NewReader(`{"a": 1} extra`)); err == nil {
		t.Error("Expected error for trailing content")
	}
}

func TestParseJSON_Empty(t *testing.T) {
	tr, err := ParseJSON(strings.NewReader(""))
	if err != nil {
		t.Fatalf("ParseJSON failed: %v", err)
	}
	if got := tr.Value("anything"); got != "" {
		t.Errorf("Expected empty value, got %q", got)
	}
}

func TestJSON_RoundTrip(t *testing.T) {
	tr, err := ParseJSON(strings.NewReader(countryJSON))
	if err != nil {
		t.Fatalf("ParseJSON failed: %v", err)
	}

	path := filepath.Join(t.TempDir(), "country.json")
	if err := WriteJSON(tr, path); err != nil {
		t.Fatalf("WriteJSON failed: %v", err)
	}

	back, err := ReadJSON(path)
	if err != nil {
		t.Fatalf("ReadJSON failed: %v", err)
	}
	if got, want := back.Root.JSON(), tr.Root.JSON(); got != want {
		t.Errorf("Round trip changed document:\nwant %s\ngot  %s", want, got)
	}
}

const serverYAML = `server:
  host: localhost
  port: 8080
  tls: true
  timeout: null
regions:
  - name: eu
    zones: [a, b]
  - name: us
    zones: [c]
`

func TestParseYAML_Values(t *testing.T) {
	tr, err := ParseYAML(strings.NewReader(serverYAML))
	if err != nil {
		t.Fatalf("ParseYAML failed: %v", err)
	}

	if got := tr.Value("server/host"); got != "localhost" {
		t.Errorf("Expected localhost, got %q", got)
	}
	if got := tr.Value("server/port"); got != "8080" {
		t.Errorf("Expected 8080, got %q", got)
	}
	if got := tr.Value("server/timeout"); got != "" {
		t.Errorf("Expected empty null value, got %q", got)
	}

	// Sequence elements are transparent to path lookups.
	names := tr.Values("regions/name")
	if len(names) != 2 || names[0] != "eu" || names[1] != "us" {
		t.Errorf("Expected [eu us], got %v", names)
	}
}

func TestParseYAML_Kinds(t *testing.T) {
	tr, err := ParseYAML(strings.NewReader(serverYAML))
	if err != nil {
		t.Fatalf("ParseYAML failed: %v", err)
	}

	tests := []struct {
		path string
		want tree.Kind
	}{
		{"server/host", tree.KindString},
		{"server/port", tree.KindNumber},
		{"server/tls", tree.KindBool},
		{"server/timeout", tree.KindNull},
		{"server", tree.KindObject},
		{"regions", tree.KindArray},
	}
	for _, tt := range tests {
		nodes := tr.Find(tt.path)
		if len(nodes) == 0 {
			t.Errorf("Find(%q) found nothing", tt.path)
			continue
		}
		if nodes[0].Kind != tt.want {
			t.Errorf("Find(%q): expected kind %d, got %d", tt.path, tt.want, nodes[0].Kind)
		}
	}
}

func TestParseYAML_Alias(t *testing.T) {
	doc := "primary: &addr\n  city: Munich\nsecondary: *addr\n"
	tr, err := ParseYAML(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("ParseYAML failed: %v", err)
	}
	if got := tr.Value("secondary/city"); got != "Munich" {
		t.Errorf("Expected alias to expand, got %q", got)
	}
}

func TestYAML_RoundTrip(t *testing.T) {
	tr, err := ParseYAML(strings.NewReader(serverYAML))
	if err != nil {
		t.Fatalf("ParseYAML failed: %v", err)
	}

	path := filepath.Join(t.TempDir(), "server.yaml")
	if err := WriteYAML(tr, path); err != nil {
		t.Fatalf("WriteYAML failed: %v", err)
	}

	back, err := ReadYAML(path)
	if err != nil {
		t.Fatalf("ReadYAML failed: %v", err)
	}
	if got, want := back.Root.JSON(), tr.Root.JSON(); got != want {
		t.Errorf("Round trip changed document:\nwant %s\ngot  %s", want, got)
	}
}

const configXML = `<configuration version="2">
  <database>
    <host type="dns">localhost</host>
    <port>5432</port>
  </database>
  <region name="eu">
    <zone>a</zone>
    <zone>b</zone>
  </region>
  <region name="us">
    <zone>c</zone>
  </region>
</configuration>`

func TestParseXML_Values(t *testing.T) {
	tr, err := ParseXML(strings.NewReader(configXML))
	if err != nil {
		t.Fatalf("ParseXML failed: %v", err)
	}

	if got := tr.Value("configuration/database/host"); got != "localhost" {
		t.Errorf("Expected localhost, got %q", got)
	}
	zones := tr.Values("configuration/region/zone")
	if len(zones) != 3 || zones[0] != "a" || zones[2] != "c" {
		t.Errorf("Expected [a b c], got %v", zones)
	}
}

func TestParseXML_Attributes(t *testing.T) {
	tr, err := ParseXML(strings.NewReader(configXML))
	if err != nil {
		t.Fatalf("ParseXML failed: %v", err)
	}

	if got := tr.Attributes("configuration", "version"); len(got) != 1 || got[0] != "2" {
		t.Errorf("Expected [2], got %v", got)
	}
	if got := tr.Attributes("configuration/region", "name"); len(got) != 2 || got[0] != "eu" || got[1] != "us" {
		t.Errorf("Expected [eu us], got %v", got)
	}

	// Attributes work on leaf elements too.
	if got := tr.Attributes("configuration/database/host", "type"); len(got) != 1 || got[0] != "dns" {
		t.Errorf("Expected [dns], got %v", got)
	}
}

func TestXML_RoundTrip(t *testing.T) {
	tr, err := ParseXML(strings.NewReader(configXML))
	if err != nil {
		t.Fatalf("ParseXML failed: %v", err)
	}

	path := filepath.Join(t.TempDir(), "config.xml")
	if err := WriteXML(tr, path); err != nil {
		t.Fatalf("WriteXML failed: %v", err)
	}

	back, err := ReadXML(path)
	if err != nil {
		t.Fatalf("ReadXML failed: %v", err)
	}
	if got := back.Value("configuration/database/port"); got != "5432" {
		t.Errorf("Expected 5432, got %q", got)
	}
	if got := back.Attributes("configuration/region", "name"); len(got) != 2 || got[1] != "us" {
		t.Errorf("Expected [eu us], got %v", got)
	}
}

func TestWriteXML_ArraysRepeatElements(t *testing.T) {
	path := filepath.Join(t.TempDir(), "person.xml")
	if err := WriteXML(buildPersonTree(), path); err != nil {
		t.Fatalf("WriteXML failed: %v", err)
	}

	back, err := ReadXML(path)
	if err != nil {
		t.Fatalf("ReadXML failed: %v", err)
	}
	cities := back.Values("person/cities")
	if len(cities) != 2 || cities[0] != "Munich" || cities[1] != "Berlin" {
		t.Errorf("Expected [Munich Berlin], got %v", cities)
	}
}

func TestWriteXML_RequiresSingleRoot(t *testing.T) {
	tr := tree.New()
	tr.Root.AddChild(tree.NewScalar("a", tree.KindString, "1"))
	tr.Root.AddChild(tree.NewScalar("b", tree.KindString, "2"))

	if err := WriteXML(tr, filepath.Join(t.TempDir(), "multi.xml")); err == nil {
		t.Error("Expected error for document with two roots")
	}
}
