package calculator

import (
	"errors"
	"fmt"
	"time"

	"kpi-dashboard/pkg/models"
	"kpi-dashboard/pkg/store"
)

// ParseMonth("MMYYYY") -> 1er jour du mois UTC
func ParseMonth(mmyyyy string) (time.Time, error) {
	if len(mmyyyy) != 6 {
		return time.Time{}, fmt.Errorf("format attendu MMYYYY (ex: 012025)")
	}
	for i := 0; i < len(mmyyyy); i++ {
		if mmyyyy[i] < '0' || mmyyyy[i] > '9' {
			return time.Time{}, fmt.Errorf("format attendu MMYYYY (ex: 012025)")
		}
	}
	month := int(mmyyyy[0]-'0')*10 + int(mmyyyy[1]-'0')
	year := int(mmyyyy[2]-'0')*1000 + int(mmyyyy[3]-'0')*100 + int(mmyyyy[4]-'0')*10 + int(mmyyyy[5]-'0')
	if month < 1 || month > 12 {
		return time.Time{}, fmt.Errorf("mois invalide")
	}
	return time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC), nil
}

// MonthsBetweenInclusive renvoie le premier jour de chaque mois de [start, end].
func MonthsBetweenInclusive(start, end time.Time) []time.Time {
	cur := time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, time.UTC)
	last := time.Date(end.Year(), end.Month(), 1, 0, 0, 0, 0, time.UTC)
	var out []time.Time
	for !cur.After(last) {
		out = append(out, cur)
		cur = cur.AddDate(0, 1, 0)
	}
	return out
}

func FormatMonth(t time.Time) string {
	return fmt.Sprintf("%02d/%04d", int(t.Month()), t.Year())
}

// MaxMonthSpan borne le nombre de mois d'une requête mensuelle (20 ans).
const MaxMonthSpan = 240

var ErrMonthSpan = errors.New("month range too wide")

// MonthSpan compte les mois de [start, end], bornes incluses.
func MonthSpan(start, end time.Time) int {
	return (end.Year()-start.Year())*12 + int(end.Month()) - int(start.Month()) + 1
}

// MonthlySnapshots calcule un instantané par mois entre deux bornes "MMYYYY" incluses.
// Les lignes sont réparties par mois en un seul passage sur la vue.
func MonthlySnapshots(v store.View, startMonth, endMonth string) ([]models.PeriodResult, error) {
	start, err := ParseMonth(startMonth)
	if err != nil {
		return nil, fmt.Errorf("start_month: %w", err)
	}
	end, err := ParseMonth(endMonth)
	if err != nil {
		return nil, fmt.Errorf("end_month: %w", err)
	}
	if end.Before(start) {
		return nil, fmt.Errorf("end_month < start_month")
	}
	if n := MonthSpan(start, end); n > MaxMonthSpan {
		return nil, fmt.Errorf("%w: %d mois (max %d)", ErrMonthSpan, n, MaxMonthSpan)
	}

	byMonth := v.Partition(models.Record.YearMonth)
	months := MonthsBetweenInclusive(start, end)
	results := make([]models.PeriodResult, 0, len(months))
	for _, m := range months {
		ym := fmt.Sprintf("%04d-%02d", m.Year(), int(m.Month()))
		results = append(results, models.PeriodResult{
			MonthYear: FormatMonth(m),
			Snapshot:  ComputeSnapshot(byMonth[ym]),
		})
	}
	return results, nil
}
