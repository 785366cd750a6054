package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed plans.yaml
var defaultPlansYAML []byte

// Plan is a purchasable tier. Amount is in the currency's minor unit.
type Plan struct {
	Code        string   `yaml:"code"`
	Name        string   `yaml:"name"`
	Amount      int64    `yaml:"amount"`
	Currency    string   `yaml:"currency"`
	Description string   `yaml:"description"`
	Features    []string `yaml:"features"`
}

type PlanCatalog struct {
	Plans []Plan `yaml:"plans"`
}

var ErrPlanNotFound = errors.New("plan not found")

func (c PlanCatalog) Find(code string) (Plan, error) {
	code = strings.ToLower(strings.TrimSpace(code))
	for _, p := range c.Plans {
		if p.Code == code {
			return p, nil
		}
	}
	return Plan{}, ErrPlanNotFound
}

// LoadPlans reads the plan catalog from path, or the embedded default when
// path is empty.
func LoadPlans(path string, defaultCurrency string) (PlanCatalog, error) {
	data := defaultPlansYAML
	if strings.TrimSpace(path) != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return PlanCatalog{}, fmt.Errorf("failed to read plans file: %w", err)
		}
		data = b
	}
	return parsePlans(data, defaultCurrency)
}

func parsePlans(data []byte, defaultCurrency string) (PlanCatalog, error) {
	var cat PlanCatalog
	if err := yaml.Unmarshal(data, &cat); err != nil {
		return PlanCatalog{}, fmt.Errorf("failed to parse plans: %w", err)
	}

	seen := map[string]struct{}{}
	for i := range cat.Plans {
		p := &cat.Plans[i]
		p.Code = strings.ToLower(strings.TrimSpace(p.Code))
		if p.Code == "" {
			return PlanCatalog{}, fmt.Errorf("plan %d: code is required", i)
		}
		if _, dup := seen[p.Code]; dup {
			return PlanCatalog{}, fmt.Errorf("plan %s: duplicate code", p.Code)
		}
		seen[p.Code] = struct{}{}
		if p.Amount <= 0 {
			return PlanCatalog{}, fmt.Errorf("plan %s: amount must be positive", p.Code)
		}
		if p.Currency == "" {
			p.Currency = defaultCurrency
		}
		p.Currency = strings.ToUpper(p.Currency)
	}
	if len(cat.Plans) == 0 {
		return PlanCatalog{}, errors.New("plan catalog is empty")
	}
	return cat, nil
}
