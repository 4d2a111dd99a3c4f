// Package seed loads anchors from YAML, JSON or TOML files and applies them to
// the registry at startup.
package seed

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/knadh/koanf"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"

	"github.com/haukened/rr-anchor/internal/dns/common/utils"
)

var errEmptySeed = errors.New("seed contains no anchors")

// Anchor is one desired name -> CID binding.
type Anchor struct {
	Name string `koanf:"name"`
	CID  string `koanf:"cid"`
	Lock bool   `koanf:"lock"`
}

// Load reads anchors from path. A directory is walked and every supported
// file in it is loaded; files with other extensions are ignored.
func Load(path string) ([]Anchor, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		if parserFor(path) == nil {
			return nil, fmt.Errorf("unsupported seed file type %q", filepath.Ext(path))
		}
		return loadFile(path)
	}

	var all []Anchor
	err = filepath.WalkDir(path, func(p string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() || parserFor(p) == nil {
			return err
		}
		anchors, err := loadFile(p)
		if err != nil {
			return err
		}
		all = append(all, anchors...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return all, nil
}

func parserFor(path string) koanf.Parser {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Parser()
	case ".json":
		return json.Parser()
	case ".toml":
		return toml.Parser()
	default:
		return nil
	}
}

// loadFile parses one seed file. Names are expanded against the optional
// zone_root ("@" is the root itself) and canonicalized.
func loadFile(path string) ([]Anchor, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), parserFor(path)); err != nil {
		return nil, fmt.Errorf("failed to load seed file %s: %w", path, err)
	}

	var anchors []Anchor
	if err := k.Unmarshal("anchors", &anchors); err != nil {
		return nil, fmt.Errorf("invalid anchors in %s: %w", path, err)
	}

	root := utils.CanonicalDNSName(k.String("zone_root"))
	for i := range anchors {
		a := &anchors[i]
		a.CID = strings.TrimSpace(a.CID)
		if strings.TrimSpace(a.Name) == "" || a.CID == "" {
			return nil, fmt.Errorf("anchor %d in %s needs both name and cid", i, path)
		}
		a.Name = utils.PresentationDNSName(expandName(strings.TrimSpace(a.Name), root))
	}
	return anchors, nil
}

// expandName qualifies a relative name with root. Absolute names (trailing
// dot) and files without a root are left alone.
func expandName(label, root string) string {
	if root == "" {
		return label
	}
	if label == "@" {
		return root
	}
	if strings.HasSuffix(label, ".") {
		return label
	}
	return label + "." + root
}

// GroupByApex buckets anchors by registrable domain so a zone is applied as a unit.
func GroupByApex(anchors []Anchor) map[string][]Anchor {
	groups := make(map[string][]Anchor)
	for _, a := range anchors {
		apex := utils.GetApexDomain(a.Name)
		groups[apex] = append(groups[apex], a)
	}
	return groups
}

// sortedApexes returns group keys in a stable order.
func sortedApexes(groups map[string][]Anchor) []string {
	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Duplicates reports names that appear more than once; the later entry wins
// when applied.
func Duplicates(anchors []Anchor) []string {
	seen := make(map[string]int, len(anchors))
	for _, a := range anchors {
		seen[a.Name]++
	}
	var dups []string
	for name, n := range seen {
		if n > 1 {
			dups = append(dups, name)
		}
	}
	sort.Strings(dups)
	return dups
}

