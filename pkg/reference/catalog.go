// Package reference expose les fiches de référence des KPI et les personas des
// destinataires. Les données sont embarquées, lues une fois, jamais modifiées.
package reference

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"kpi-dashboard/pkg/models"
)

var ErrUnknownPersona = errors.New("unknown persona")

//go:embed kpis.yaml
var catalogYAML []byte

// Entry est la fiche technique d'un KPI.
type Entry struct {
	Key        string           `yaml:"key" json:"key"`
	Label      string           `yaml:"label" json:"label"`
	Definition string           `yaml:"definition" json:"definition"`
	Formula    string           `yaml:"formula" json:"formula"`
	Unit       string           `yaml:"unit" json:"unit"`
	Owner      string           `yaml:"owner" json:"owner"`
	Tier       string           `yaml:"tier" json:"tier"`
	Frequency  string           `yaml:"frequency" json:"frequency"`
	Direction  models.Direction `yaml:"direction" json:"direction"`
	Target     *float64         `yaml:"target" json:"target,omitempty"` // nil: objectif de croissance, pas de seuil
	TargetText string           `yaml:"target_text" json:"target_text"`
	Computed   bool             `yaml:"computed" json:"computed"` // false: documenté mais hors des données de vente
}

// Persona décrit un destinataire du tableau de bord et les KPI qu'il consulte.
type Persona struct {
	Role       string   `yaml:"role" json:"role"`
	Title      string   `yaml:"title" json:"title"`
	Focus      string   `yaml:"focus" json:"focus"`
	Objectives []string `yaml:"objectives" json:"objectives"`
	KPIs       []string `yaml:"kpis" json:"kpis"`
}

// Catalog est une table de consultation en lecture seule.
type Catalog struct {
	entries  map[string]Entry
	order    []string
	personas map[string]Persona
	roles    []string
}

type document struct {
	KPIs     []Entry   `yaml:"kpis"`
	Personas []Persona `yaml:"personas"`
}

// Parse construit un catalogue et vérifie sa cohérence.
func Parse(data []byte) (*Catalog, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	c := &Catalog{entries: map[string]Entry{}, personas: map[string]Persona{}}
	for _, e := range doc.KPIs {
		if e.Key == "" {
			return nil, fmt.Errorf("catalog: entry without key")
		}
		if _, dup := c.entries[e.Key]; dup {
			return nil, fmt.Errorf("catalog: duplicate key %q", e.Key)
		}
		if e.Direction != models.HigherIsBetter && e.Direction != models.LowerIsBetter {
			return nil, fmt.Errorf("catalog: %s: invalid direction %q", e.Key, e.Direction)
		}
		c.entries[e.Key] = e
		c.order = append(c.order, e.Key)
	}
	for _, p := range doc.Personas {
		role := strings.ToUpper(p.Role)
		for _, k := range p.KPIs {
			if _, ok := c.entries[k]; !ok {
				return nil, fmt.Errorf("catalog: persona %s: %w: %q", role, models.ErrUnknownMetric, k)
			}
		}
		p.Role = role
		c.personas[role] = p
		c.roles = append(c.roles, role)
	}
	return c, nil
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
)

// Default renvoie le catalogue embarqué, chargé une seule fois.
func Default() *Catalog {
	defaultOnce.Do(func() {
		c, err := Parse(catalogYAML)
		if err != nil {
			panic(err)
		}
		defaultCatalog = c
	})
	return defaultCatalog
}

// Lookup renvoie la fiche d'un KPI, ou models.ErrUnknownMetric.
func (c *Catalog) Lookup(name string) (Entry, error) {
	e, ok := c.entries[name]
	if !ok {
		return Entry{}, fmt.Errorf("%w: %q", models.ErrUnknownMetric, name)
	}
	return e, nil
}

// Entries renvoie les fiches dans l'ordre du catalogue.
func (c *Catalog) Entries() []Entry {
	out := make([]Entry, 0, len(c.order))
	for _, k := range c.order {
		out = append(out, c.entries[k])
	}
	return out
}

// Persona renvoie un persona par rôle (insensible à la casse).
func (c *Catalog) Persona(role string) (Persona, error) {
	p, ok := c.personas[strings.ToUpper(role)]
	if !ok {
		return Persona{}, fmt.Errorf("%w: %q", ErrUnknownPersona, role)
	}
	return p, nil
}

func (c *Catalog) Personas() []Persona {
	out := make([]Persona, 0, len(c.roles))
	for _, r := range c.roles {
		out = append(out, c.personas[r])
	}
	return out
}

// Project sélectionne dans l'instantané les KPI calculables d'un persona.
func (c *Catalog) Project(s models.Snapshot, role string) ([]models.NamedValue, error) {
	p, err := c.Persona(role)
	if err != nil {
		return nil, err
	}
	out := make([]models.NamedValue, 0, len(p.KPIs))
	for _, k := range p.KPIs {
		if !c.entries[k].Computed {
			continue
		}
		v, err := s.Value(k)
		if err != nil {
			return nil, err
		}
		out = append(out, models.NamedValue{Name: k, Value: v})
	}
	return out, nil
}
