package pipeline

import (
	_ "embed"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/siamtrail/airtrip-cli/internal/model"
)

//go:embed tables.yaml
var tablesYAML []byte

type categoryTable struct {
	Category  model.Category `yaml:"category"`
	Hints     []string       `yaml:"hints"`
	NameWords []string       `yaml:"name_words"`
}

type classifyTables struct {
	Categories []categoryTable `yaml:"categories"`
}

// hintCategories maps a normalized type hint to its category; nameFallbacks
// keeps the per-category name keyword lists in table order.
var (
	hintCategories = map[string]model.Category{}
	nameFallbacks  []categoryTable
)

func init() {
	var tables classifyTables
	if err := yaml.Unmarshal(tablesYAML, &tables); err != nil {
		panic("pipeline: bad embedded category tables: " + err.Error())
	}
	for _, ct := range tables.Categories {
		for _, hint := range ct.Hints {
			hintCategories[hint] = ct.Category
		}
		if len(ct.NameWords) > 0 {
			nameFallbacks = append(nameFallbacks, ct)
		}
	}
}

// Classify assigns a place to its ranking category. The source type hint wins
// when recognized; otherwise the name is scanned for category keywords, and
// anything left over counts as an attraction.
func Classify(p model.Place) model.Category {
	hint := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(p.CategoryHint)), " ", "_")
	if c, ok := hintCategories[hint]; ok {
		return c
	}

	name := strings.ToLower(p.Name)
	for _, ct := range nameFallbacks {
		for _, word := range ct.NameWords {
			if strings.Contains(name, word) {
				return ct.Category
			}
		}
	}
	return model.CategoryAttraction
}
