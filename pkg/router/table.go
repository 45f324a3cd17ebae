package router

import (
	"os"
	"strings"
	"sync/atomic"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"

	"github.com/hyperpolymath/har/pkg/graphir"
	"github.com/hyperpolymath/har/pkg/harerr"
	"github.com/hyperpolymath/har/pkg/harlog"
)

// fileFormat is the on-disk YAML shape of the routing table.
type fileFormat struct {
	Routes []fileRule `yaml:"routes"`
}

type fileRule struct {
	Pattern  filePattern       `yaml:"pattern"`
	Backends []fileBackend     `yaml:"backends"`
}

type filePattern struct {
	Operation string            `yaml:"operation"`
	Target    map[string]string `yaml:"target"`
}

type fileBackend struct {
	Name         string                 `yaml:"name"`
	Type         string                 `yaml:"type"`
	Priority     int                    `yaml:"priority"`
	Capabilities []string               `yaml:"capabilities"`
	Metadata     map[string]interface{} `yaml:"metadata"`
}

// RoutingTable answers RoutingTable.match against a set of rules loaded
// from YAML; it is single-writer/many-reader via an atomic pointer swap
// so Match never observes a torn table mid-reload.
type RoutingTable struct {
	rules atomic.Pointer[[]RoutingRule]
	path  string
	watch *fsnotify.Watcher
}

// defaultFallbackRule is installed whenever a load fails and no prior
// table exists.
func defaultFallbackRule() RoutingRule {
	return RoutingRule{
		Pattern: Pattern{Operation: "*"},
		Backends: []BackendDescriptor{
			{Name: "passthrough", Type: BackendPassthrough, Priority: 1},
		},
	}
}

// NewRoutingTable constructs a table pre-populated with rules (no file
// involved; used by tests and programmatic setup).
func NewRoutingTable(rules []RoutingRule) *RoutingTable {
	t := &RoutingTable{}
	cp := append([]RoutingRule(nil), rules...)
	t.rules.Store(&cp)
	return t
}

// LoadRoutingTable reads and parses a routing table YAML file. On parse
// failure it returns the default fallback table alongside the error so
// callers can choose to keep serving rather than fail startup.
func LoadRoutingTable(path string) (*RoutingTable, error) {
	t := &RoutingTable{path: path}
	if err := t.reload(path); err != nil {
		fallback := []RoutingRule{defaultFallbackRule()}
		t.rules.Store(&fallback)
		return t, err
	}
	return t, nil
}

// Reload re-reads the table from path. On parse failure the previous
// table stays live and an error is returned.
func (t *RoutingTable) Reload(path string) error {
	return t.reload(path)
}

func (t *RoutingTable) reload(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return harerr.Wrap(harerr.RoutingFailed, "reading routing table "+path, err)
	}

	var ff fileFormat
	if err := yaml.Unmarshal(data, &ff); err != nil {
		return harerr.Wrap(harerr.RoutingFailed, "parsing routing table "+path, err)
	}

	rules := make([]RoutingRule, 0, len(ff.Routes))
	for _, r := range ff.Routes {
		rule := RoutingRule{
			Pattern: Pattern{Operation: r.Pattern.Operation, Target: r.Pattern.Target},
		}
		for _, b := range r.Backends {
			rule.Backends = append(rule.Backends, BackendDescriptor{
				Name:         b.Name,
				Type:         BackendType(b.Type),
				Priority:     b.Priority,
				Capabilities: b.Capabilities,
				Metadata:     b.Metadata,
			})
		}
		rules = append(rules, rule)
	}

	t.rules.Store(&rules)
	t.path = path
	harlog.WithComponent("router.table").Info().Str("path", path).Int("rules", len(rules)).Msg("routing table loaded")
	return nil
}

// WatchReload starts an fsnotify watch on path and reloads the table on
// every write event, logging (and discarding, per the fail-open-on-reload
// contract) any parse error encountered along the way.
func (t *RoutingTable) WatchReload(path string) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return harerr.Wrap(harerr.RoutingFailed, "creating routing table watcher", err)
	}
	if err := w.Add(path); err != nil {
		w.Close()
		return harerr.Wrap(harerr.RoutingFailed, "watching routing table "+path, err)
	}
	t.watch = w

	log := harlog.WithComponent("router.table")
	go func() {
		for {
			select {
			case event, ok := <-w.Events:
				if !ok {
					return
				}
				if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
					if err := t.reload(path); err != nil {
						log.Warn().Err(err).Msg("routing table reload failed, keeping previous table live")
					}
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				log.Warn().Err(err).Msg("routing table watch error")
			}
		}
	}()
	return nil
}

// Close stops any active file watch.
func (t *RoutingTable) Close() error {
	if t.watch != nil {
		return t.watch.Close()
	}
	return nil
}

// Match returns the ordered list of backends matching op against target,
// highest priority first, deduplicated by name with first occurrence
// winning.
func (t *RoutingTable) Match(op *graphir.Operation, target string) []BackendDescriptor {
	rules := t.rules.Load()
	if rules == nil {
		return nil
	}

	var candidates []BackendDescriptor
	for _, rule := range *rules {
		if !matchField(rule.Pattern.Operation, string(op.Type)) {
			continue
		}
		allMatch := true
		for k, pat := range rule.Pattern.Target {
			if !matchField(pat, op.TargetString(k)) {
				allMatch = false
				break
			}
		}
		if !allMatch {
			continue
		}
		candidates = append(candidates, rule.Backends...)
	}

	sortByPriorityDesc(candidates)
	return dedupByName(candidates)
}

// matchField implements three matcher kinds: nil/"*" always matches; a
// literal is an exact compare; a string containing "*" is an anchored
// glob via doublestar.
func matchField(pattern, value string) bool {
	if pattern == "" || pattern == "*" {
		return true
	}
	if !strings.Contains(pattern, "*") {
		return pattern == value
	}
	ok, err := doublestar.Match(pattern, value)
	return err == nil && ok
}

func sortByPriorityDesc(backends []BackendDescriptor) {
	// Stable insertion sort: small N per call, and stability preserves
	// rule-encounter order among equal priorities ahead of the name dedup.
	for i := 1; i < len(backends); i++ {
		j := i
		for j > 0 && backends[j-1].Priority < backends[j].Priority {
			backends[j-1], backends[j] = backends[j], backends[j-1]
			j--
		}
	}
}

func dedupByName(backends []BackendDescriptor) []BackendDescriptor {
	seen := map[string]bool{}
	out := make([]BackendDescriptor, 0, len(backends))
	for _, b := range backends {
		if seen[b.Name] {
			continue
		}
		seen[b.Name] = true
		out = append(out, b)
	}
	return out
}
