package config

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/zonetools/zonegit/internal/runner"
)

type mockConfig struct {
	values map[string]string
}

func (m *mockConfig) ConfigSection(_ context.Context, _ string) (map[string]string, error) {
	return m.values, nil
}

func load(t *testing.T, values map[string]string) Options {
	t.Helper()
	opts, err := Load(context.Background(), &mockConfig{values: values})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	return opts
}

func TestLoad_Defaults(t *testing.T) {
	opts := load(t, nil)

	if opts.IgnoreWhitespaceErrors || opts.AllowFancyNames || opts.NoSerialUpdate || opts.NoMissingDotCheck {
		t.Error("Expected all booleans to default to false")
	}
	if opts.CheckoutPath != "" || len(opts.Templates) != 0 || len(opts.ReconfigCmds) != 0 {
		t.Error("Expected empty paths and slots by default")
	}
	if opts.CommandTimeout != runner.DefaultTimeout {
		t.Errorf("Expected default timeout %v, got %v", runner.DefaultTimeout, opts.CommandTimeout)
	}
	if len(opts.Warnings) != 0 {
		t.Errorf("Expected no warnings, got %v", opts.Warnings)
	}
}

func TestLoad_BooleanSpellings(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"true", true},
		{"TRUE", true},
		{"yes", true},
		{"on", true},
		{"1", true},
		{"false", false},
		{"no", false},
		{"0", false},
		{"", false},
		{"nonsense", false},
	}

	for _, tt := range tests {
		opts := load(t, map[string]string{"ignorewhitespaceerrors": tt.value})
		if opts.IgnoreWhitespaceErrors != tt.want {
			t.Errorf("parseBool(%q) = %v, want %v", tt.value, opts.IgnoreWhitespaceErrors, tt.want)
		}
	}
}

func TestLoad_AllOptions(t *testing.T) {
	opts := load(t, map[string]string{
		"allowfancynames": "true",
		"noserialupdate":  "yes",
		"checkoutpath":    "/var/dns/zones",
		"zoneblacklist":   "/etc/dns/blacklist",
		"zonewhitelist":   "/etc/dns/whitelist",
		"compilecmd":      "/usr/bin/named-compilezone -i none",
	})

	if !opts.AllowFancyNames || !opts.NoSerialUpdate {
		t.Error("Expected booleans set")
	}
	if opts.CheckoutPath != "/var/dns/zones" {
		t.Errorf("Unexpected checkoutpath: %q", opts.CheckoutPath)
	}
	if opts.BlacklistPath != "/etc/dns/blacklist" || opts.WhitelistPath != "/etc/dns/whitelist" {
		t.Errorf("Unexpected filter paths: %q / %q", opts.BlacklistPath, opts.WhitelistPath)
	}
	if opts.CompileCmd != "/usr/bin/named-compilezone -i none" {
		t.Errorf("Unexpected compilecmd: %q", opts.CompileCmd)
	}
}

func TestLoad_TemplateSlotOrder(t *testing.T) {
	opts := load(t, map[string]string{
		"conffiletemplate2": "/etc/dns/knot.json",
		"conffilepath2":     "/etc/knot/zones.conf",
		"conffiletemplate":  "/etc/dns/bind.json",
		"conffilepath":      "/etc/bind/zones.conf",
		"conffiletemplate1": "/etc/dns/nsd.json",
		"conffilepath1":     "/etc/nsd/zones.conf",
	})

	if len(opts.Templates) != 3 {
		t.Fatalf("Expected 3 template slots, got %d", len(opts.Templates))
	}
	wantSuffixes := []string{"", "1", "2"}
	for i, slot := range opts.Templates {
		if slot.Suffix != wantSuffixes[i] {
			t.Errorf("Slot %d: expected suffix %q, got %q", i, wantSuffixes[i], slot.Suffix)
		}
	}
	if opts.Templates[0].Template != "/etc/dns/bind.json" || opts.Templates[0].Output != "/etc/bind/zones.conf" {
		t.Errorf("Unexpected bare slot: %+v", opts.Templates[0])
	}
}

func TestLoad_MismatchedSlotWarnsAndDisables(t *testing.T) {
	opts := load(t, map[string]string{
		"conffiletemplate":  "/etc/dns/bind.json",
		"conffilepath1":     "/etc/nsd/zones.conf",
		"conffiletemplate2": "/etc/dns/knot.json",
		"conffilepath2":     "/etc/knot/zones.conf",
	})

	if len(opts.Templates) != 1 || opts.Templates[0].Suffix != "2" {
		t.Fatalf("Expected only the complete slot 2, got %+v", opts.Templates)
	}
	if len(opts.Warnings) != 2 {
		t.Fatalf("Expected 2 warnings, got %v", opts.Warnings)
	}
	if !strings.Contains(opts.Warnings[0], "conffiletemplate has no matching conffilepath") {
		t.Errorf("Unexpected warning: %q", opts.Warnings[0])
	}
	if !strings.Contains(opts.Warnings[1], "conffilepath1 has no matching conffiletemplate1") {
		t.Errorf("Unexpected warning: %q", opts.Warnings[1])
	}
}

func TestLoad_CommandSlots(t *testing.T) {
	opts := load(t, map[string]string{
		"reconfigcmd":    "/usr/sbin/rndc reconfig",
		"reconfigcmd1":   "/usr/sbin/knotc reload",
		"zonereloadcmd":  "/usr/sbin/rndc reload",
		"zonereloadcmd3": "   ",
	})

	if len(opts.ReconfigCmds) != 2 {
		t.Fatalf("Expected 2 reconfig commands, got %v", opts.ReconfigCmds)
	}
	if opts.ReconfigCmds[0] != "/usr/sbin/rndc reconfig" || opts.ReconfigCmds[1] != "/usr/sbin/knotc reload" {
		t.Errorf("Unexpected reconfig order: %v", opts.ReconfigCmds)
	}
	if len(opts.ZoneReloadCmds) != 1 {
		t.Errorf("Expected blank reload command skipped, got %v", opts.ZoneReloadCmds)
	}
}

func TestLoad_CommandTimeout(t *testing.T) {
	opts := load(t, map[string]string{"commandtimeout": "120"})
	if opts.CommandTimeout != 120*time.Second {
		t.Errorf("Expected 120s timeout, got %v", opts.CommandTimeout)
	}

	opts = load(t, map[string]string{"commandtimeout": "soon"})
	if opts.CommandTimeout != runner.DefaultTimeout {
		t.Errorf("Expected default timeout on invalid value, got %v", opts.CommandTimeout)
	}
	if len(opts.Warnings) != 1 || !strings.Contains(opts.Warnings[0], "invalid commandtimeout") {
		t.Errorf("Expected invalid-timeout warning, got %v", opts.Warnings)
	}

	opts = load(t, map[string]string{"commandtimeout": "0"})
	if opts.CommandTimeout != runner.DefaultTimeout {
		t.Errorf("Expected default timeout on zero, got %v", opts.CommandTimeout)
	}
}
