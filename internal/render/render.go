package render

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/zonetools/zonegit/internal/match"
	"github.com/zonetools/zonegit/internal/registry"
)

// Params carries the per-run inputs of a rendering pass. Apart from Now,
// the output is a pure function of the template and the registry.
type Params struct {
	// CheckoutPath is the working copy root; $zonefile is resolved
	// beneath it.
	CheckoutPath string
	// Now feeds the $datetime placeholder.
	Now time.Time
}

const datetimeLayout = "2006-01-02 15:04:05"

// Render produces the full snippet: header, one item per zone in lexical
// zone-name order, footer. Recognized placeholders form a closed set;
// unknown $tokens are left verbatim, never interpreted.
func (t *Template) Render(reg registry.Registry, p Params) string {
	datetime := p.Now.Format(datetimeLayout)

	var b strings.Builder
	b.WriteString(strings.ReplaceAll(t.Header, "$datetime", datetime))
	for _, name := range reg.Names() {
		entry := reg[name]
		zonevar := t.DefaultVar
		if v, ok := match.Lookup(name, t.ZoneVars); ok {
			zonevar = v
		}
		r := strings.NewReplacer(
			"$datetime", datetime,
			"$zonename", name,
			"$zonefile", filepath.Join(p.CheckoutPath, entry.Path),
			"$zonerelfile", entry.Path,
			"$zonevar", zonevar,
		)
		b.WriteString(r.Replace(t.Item))
	}
	b.WriteString(strings.ReplaceAll(t.Footer, "$datetime", datetime))
	return b.String()
}

// WriteAtomic replaces path with data via a temporary file in the same
// directory and a rename, so a concurrently reading DNS server never
// observes a partially written file.
func WriteAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp*")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}
