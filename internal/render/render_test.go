package render

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/zonetools/zonegit/internal/registry"
)

func writeTemplate(t *testing.T, name, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	return path
}

func TestLoad_JSON(t *testing.T) {
	path := writeTemplate(t, "named.json", `{
		"header": "# generated $datetime\n",
		"item": "zone $zonename;\n",
		"defaultvar": "master",
		"zonevars": {"*.example.com.": "slave"}
	}`)

	tmpl, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if tmpl.DefaultVar != "master" {
		t.Errorf("Expected defaultvar master, got %q", tmpl.DefaultVar)
	}
	if _, ok := tmpl.ZoneVars["*.example.com"]; !ok {
		t.Error("Expected zonevar pattern normalized without trailing dot")
	}
}

func TestLoad_YAML(t *testing.T) {
	path := writeTemplate(t, "named.yaml", "item: \"zone $zonename;\"\ndefaultvar: master\n")
	tmpl, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if tmpl.Item != "zone $zonename;" {
		t.Errorf("Unexpected item: %q", tmpl.Item)
	}
}

func TestLoad_UnknownKeyRejected(t *testing.T) {
	path := writeTemplate(t, "named.json", `{"itme": "typo"}`)
	if _, err := Load(path); err == nil {
		t.Fatal("Expected an error for an unknown template key")
	}
}

func TestLoad_MalformedJSON(t *testing.T) {
	path := writeTemplate(t, "named.json", "{not json")
	_, err := Load(path)
	if err == nil {
		t.Fatal("Expected an error for malformed JSON")
	}
	if !strings.Contains(err.Error(), "failed to parse JSON template") {
		t.Errorf("Unexpected error: %v", err)
	}
}

func testRegistry() registry.Registry {
	return registry.Registry{
		"example.com": {Name: "example.com", Path: "example.com", Hash: "h1", Serial: 1},
	}
}

func TestRender_ItemPlaceholders(t *testing.T) {
	tmpl := &Template{Item: `zone $zonename { file "$zonefile"; };`}
	out := tmpl.Render(testRegistry(), Params{CheckoutPath: "/zones", Now: time.Unix(0, 0)})
	want := `zone example.com { file "/zones/example.com"; };`
	if out != want {
		t.Errorf("Render = %q, want %q", out, want)
	}
}

func TestRender_RelFileAndZoneVar(t *testing.T) {
	reg := registry.Registry{
		"example.com": {Name: "example.com", Path: "zones/example.com.zone"},
	}
	tmpl := &Template{
		Item:       "$zonerelfile $zonevar\n",
		DefaultVar: "default",
		ZoneVars:   map[string]string{"*.com": "dotcom"},
	}
	out := tmpl.Render(reg, Params{CheckoutPath: "/srv", Now: time.Unix(0, 0)})
	if out != "zones/example.com.zone dotcom\n" {
		t.Errorf("Render = %q", out)
	}
}

func TestRender_DefaultVarFallback(t *testing.T) {
	reg := registry.Registry{"foo.net": {Name: "foo.net", Path: "foo.net.zone"}}
	tmpl := &Template{
		Item:       "$zonename=$zonevar\n",
		DefaultVar: "fallback",
		ZoneVars:   map[string]string{"*.com": "dotcom"},
	}
	out := tmpl.Render(reg, Params{Now: time.Unix(0, 0)})
	if out != "foo.net=fallback\n" {
		t.Errorf("Render = %q", out)
	}
}

func TestRender_HeaderFooterAndOrder(t *testing.T) {
	reg := registry.Registry{
		"b.com": {Name: "b.com", Path: "b.com.zone"},
		"a.com": {Name: "a.com", Path: "a.com.zone"},
	}
	tmpl := &Template{Header: "begin\n", Item: "$zonename\n", Footer: "end\n"}
	out := tmpl.Render(reg, Params{Now: time.Unix(0, 0)})
	if out != "begin\na.com\nb.com\nend\n" {
		t.Errorf("Render = %q", out)
	}
}

func TestRender_DatetimeInHeader(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	tmpl := &Template{Header: "# $datetime\n"}
	out := tmpl.Render(registry.Registry{}, Params{Now: now})
	if out != "# 2024-01-01 12:00:00\n" {
		t.Errorf("Render = %q", out)
	}
}

func TestRender_UnknownPlaceholderLeftVerbatim(t *testing.T) {
	tmpl := &Template{Item: "$zonename $bogus\n"}
	out := tmpl.Render(testRegistry(), Params{Now: time.Unix(0, 0)})
	if out != "example.com $bogus\n" {
		t.Errorf("Render = %q", out)
	}
}

func TestRender_Idempotent(t *testing.T) {
	reg := registry.Registry{
		"a.com": {Name: "a.com", Path: "a.com.zone"},
		"b.com": {Name: "b.com", Path: "b.com.zone"},
	}
	tmpl := &Template{Header: "# $datetime\n", Item: "zone $zonename;\n"}
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	p := Params{CheckoutPath: "/srv", Now: now}
	first := tmpl.Render(reg, p)
	for i := 0; i < 10; i++ {
		if out := tmpl.Render(reg, p); out != first {
			t.Fatalf("Render is not reproducible: %q vs %q", first, out)
		}
	}
}

func TestWriteAtomic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "named.conf")
	if err := WriteAtomic(path, []byte("first\n")); err != nil {
		t.Fatalf("WriteAtomic failed: %v", err)
	}
	if err := WriteAtomic(path, []byte("second\n")); err != nil {
		t.Fatalf("WriteAtomic replace failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(data) != "second\n" {
		t.Errorf("Expected replaced content, got %q", data)
	}

	// No temporary leftovers in the directory.
	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("Expected only the output file, found %d entries", len(entries))
	}
}
