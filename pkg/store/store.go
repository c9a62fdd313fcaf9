// Package store contient la collection immuable de lignes en mémoire et les
// vues filtrées calculées dessus.
package store

import (
	"sort"

	"kpi-dashboard/pkg/models"
)

// Store est immuable après New; il peut être partagé entre lecteurs concurrents.
type Store struct {
	records []models.Record
}

// New copie records: les modifications ultérieures du slice appelant n'ont pas d'effet.
func New(records []models.Record) *Store {
	cp := make([]models.Record, len(records))
	copy(cp, records)
	return &Store{records: cp}
}

// Len renvoie le nombre total de lignes.
func (s *Store) Len() int { return len(s.records) }

// All renvoie une vue sur toutes les lignes.
func (s *Store) All() View {
	idx := make([]int, len(s.records))
	for i := range idx {
		idx[i] = i
	}
	return View{store: s, idx: idx}
}

// View est une sélection ordonnée de lignes d'un Store. Les vues ne modifient jamais le Store.
type View struct {
	store *Store
	idx   []int
}

// Len renvoie le nombre de lignes de la vue.
func (v View) Len() int { return len(v.idx) }

// Each appelle fn pour chaque ligne, dans l'ordre du Store.
func (v View) Each(fn func(models.Record)) {
	for _, i := range v.idx {
		fn(v.store.records[i])
	}
}

// Records renvoie une copie des lignes de la vue.
func (v View) Records() []models.Record {
	out := make([]models.Record, 0, len(v.idx))
	v.Each(func(r models.Record) { out = append(out, r) })
	return out
}

// Where restreint la vue aux lignes satisfaisant pred.
func (v View) Where(pred func(models.Record) bool) View {
	idx := make([]int, 0, len(v.idx))
	for _, i := range v.idx {
		if pred(v.store.records[i]) {
			idx = append(idx, i)
		}
	}
	return View{store: v.store, idx: idx}
}

// Partition répartit la vue par clé en un seul passage; l'ordre du Store est conservé dans chaque part.
func (v View) Partition(key func(models.Record) string) map[string]View {
	parts := map[string]View{}
	for _, i := range v.idx {
		k := key(v.store.records[i])
		p := parts[k]
		p.store = v.store
		p.idx = append(p.idx, i)
		parts[k] = p
	}
	return parts
}

// Filter applique les critères. Une combinaison sans correspondance donne une vue vide.
func (v View) Filter(c models.Criteria) View {
	if c.IsZero() {
		return v
	}
	c = c.Normalize()
	return v.Where(c.Matches)
}

// Years, Regions et Categories alimentent les sélecteurs de filtres (valeurs distinctes triées).

func (v View) Years() []int {
	seen := map[int]struct{}{}
	v.Each(func(r models.Record) { seen[r.Year()] = struct{}{} })
	out := make([]int, 0, len(seen))
	for y := range seen {
		out = append(out, y)
	}
	sort.Ints(out)
	return out
}

func (v View) Regions() []string {
	return v.distinct(func(r models.Record) string { return r.Region })
}

func (v View) Categories() []string {
	return v.distinct(func(r models.Record) string { return r.Category })
}

func (v View) distinct(key func(models.Record) string) []string {
	seen := map[string]struct{}{}
	v.Each(func(r models.Record) { seen[key(r)] = struct{}{} })
	out := make([]string, 0, len(seen))
	for k := range seen {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
