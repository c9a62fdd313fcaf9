package models

import (
	"fmt"
	"strconv"
	"strings"
)

// All désigne l'absence de filtre sur une option.
const All = "all"

// Criteria est la sélection passée explicitement à chaque calcul.
// Year == 0, "" ou "all" n'imposent aucune restriction.
type Criteria struct {
	Year     int    `json:"year,omitempty" yaml:"year"`
	Region   string `json:"region,omitempty" yaml:"region"`
	Category string `json:"category,omitempty" yaml:"category"`
}

func isAll(s string) bool {
	return s == "" || strings.EqualFold(strings.TrimSpace(s), All)
}

// Normalize ramène toutes les formes de "tout" à la valeur zéro.
func (c Criteria) Normalize() Criteria {
	out := Criteria{Year: c.Year}
	if !isAll(c.Region) {
		out.Region = strings.TrimSpace(c.Region)
	}
	if !isAll(c.Category) {
		out.Category = strings.TrimSpace(c.Category)
	}
	return out
}

// IsZero indique une sélection sans restriction.
func (c Criteria) IsZero() bool {
	return c.Normalize() == Criteria{}
}

// Matches renvoie true si r satisfait chaque option présente.
func (c Criteria) Matches(r Record) bool {
	n := c.Normalize()
	if n.Year != 0 && r.Year() != n.Year {
		return false
	}
	if n.Region != "" && r.Region != n.Region {
		return false
	}
	if n.Category != "" && r.Category != n.Category {
		return false
	}
	return true
}

// Key est une représentation stable, utilisée comme clé de cache.
func (c Criteria) Key() string {
	n := c.Normalize()
	year := All
	if n.Year != 0 {
		year = strconv.Itoa(n.Year)
	}
	return fmt.Sprintf("year=%s;region=%s;category=%s", year, orAll(n.Region), orAll(n.Category))
}

func orAll(s string) string {
	if s == "" {
		return All
	}
	return s
}
