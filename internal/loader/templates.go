package loader

import (
	"embed"
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/roach88/blueprint/internal/ir"
)

//go:embed templates/*.yaml
var templateFS embed.FS

// DefaultTemplate seeds `blueprint new` when no template is named.
const DefaultTemplate = "blank"

// Templates lists the embedded seed template names.
func Templates() []string {
	entries, err := templateFS.ReadDir("templates")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), ".yaml"))
	}
	sort.Strings(names)
	return names
}

// Template returns the named seed document.
func Template(name string) (ir.Document, error) {
	data, err := templateFS.ReadFile(path.Join("templates", name+".yaml"))
	if err != nil {
		return ir.Document{}, fmt.Errorf("unknown template %q (available: %s)", name, strings.Join(Templates(), ", "))
	}
	return Decode(data, FormatYAML, name+".yaml")
}
