package hornql

import (
	"fmt"
	"io/ioutil"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	yaml "gopkg.in/yaml.v3"
)

// FactsFile is the YAML ingestion format: a list of entities with
// their types, attributes, and relation links. Entities without an id
// get a generated one, which only matters if nothing links to them.
type FactsFile struct {
	Entities []*FactEntity `yaml:"entities"`
}

type FactEntity struct {
	ID        string                 `yaml:"id"`
	Types     []string               `yaml:"types"`
	Attrs     map[string]interface{} `yaml:"attrs"`
	Relations map[string][]string    `yaml:"relations"`
}

func ReadFactsFile(path string) (*FactsFile, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading facts file")
	}
	facts := &FactsFile{}
	if err := yaml.Unmarshal(data, facts); err != nil {
		return nil, errors.Wrapf(err, "parsing facts file %s", path)
	}
	for _, entity := range facts.Entities {
		if entity.ID == "" {
			entity.ID = "e_" + strings.Replace(uuid.New().String(), "-", "", -1)
		}
	}
	return facts, nil
}

// Statements renders the facts as wire statements: all entity
// statements first, then types and attributes, then links, so a link
// never references an entity that doesn't exist yet.
func (f *FactsFile) Statements() []string {
	var stmts []string
	for _, entity := range f.Entities {
		stmts = append(stmts, fmt.Sprintf("entity %s", entity.ID))
	}
	for _, entity := range f.Entities {
		for _, label := range entity.Types {
			stmts = append(stmts, fmt.Sprintf("type %s %s", entity.ID, label))
		}
		for _, name := range sortedKeys(entity.Attrs) {
			stmts = append(stmts, fmt.Sprintf("set %s %s = %s",
				entity.ID, name, renderLiteral(entity.Attrs[name])))
		}
	}
	for _, entity := range f.Entities {
		names := make([]string, 0, len(entity.Relations))
		for name := range entity.Relations {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			for _, target := range entity.Relations[name] {
				stmts = append(stmts, fmt.Sprintf("link %s %s %s", entity.ID, name, target))
			}
		}
	}
	return stmts
}

// LoadFacts applies a facts file directly, without going over the
// wire. Returns the number of statements applied.
func (db *Database) LoadFacts(f *FactsFile) (int, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	stmts := f.Statements()
	for _, raw := range stmts {
		stmt, err := Parse(raw)
		if err != nil {
			return 0, errors.Wrapf(err, "loading %q", raw)
		}
		if _, err := db.apply(stmt); err != nil {
			return 0, errors.Wrapf(err, "loading %q", raw)
		}
	}
	return len(stmts), nil
}

var dateLiteral = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

func renderLiteral(v interface{}) string {
	switch val := v.(type) {
	case time.Time:
		// yaml resolves bare dates into timestamps
		return val.Format("2006-01-02")
	case string:
		if dateLiteral.MatchString(val) {
			return val
		}
		return fmt.Sprintf("'%s'", val)
	case bool:
		if val {
			return "true"
		}
		return "false"
	case int:
		return fmt.Sprintf("%d", val)
	case float64:
		return fmt.Sprintf("%g", val)
	}
	return fmt.Sprintf("%v", v)
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
