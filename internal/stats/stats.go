package stats

import (
	"sort"
	"time"

	"vocab-coach/pkg/models"
)

// ComputeStreak считает серию дней с оценками, заканчивающуюся на asOf.
// Берутся различные календарные даты прошлых оценок плюс дата asOf,
// сортируются по убыванию и считается непрерывный ряд дат, отличающихся
// ровно на один день; первый разрыв останавливает счет.
// Серия всегда пересчитывается из журнала целиком, а не инкрементно —
// это переживает правки и дозаливки журнала.
// У пользователя без прошлых оценок серия после первой оценки равна 1.
func ComputeStreak(priorDates []time.Time, asOf time.Time) int {
	seen := make(map[time.Time]bool)
	for _, d := range priorDates {
		seen[truncateToDay(d)] = true
	}
	seen[truncateToDay(asOf)] = true

	days := make([]time.Time, 0, len(seen))
	for d := range seen {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool {
		return days[i].After(days[j])
	})

	streak := 1
	for i := 1; i < len(days); i++ {
		if days[i-1].Sub(days[i]) != 24*time.Hour {
			break
		}
		streak++
	}
	return streak
}

// Average возвращает арифметическое среднее баллов.
// Всегда пересчитывается из полной истории, без инкрементных поправок.
func Average(scores []int) float64 {
	if len(scores) == 0 {
		return 0
	}
	sum := 0
	for _, s := range scores {
		sum += s
	}
	return float64(sum) / float64(len(scores))
}

// WeakAreaCount — слабая зона с частотой упоминаний в журнале
type WeakAreaCount struct {
	Area  string
	Count int
}

// AggregateWeakAreas собирает слабые зоны из записей оценок,
// упорядоченные по убыванию частоты (при равенстве — по алфавиту)
func AggregateWeakAreas(records []models.AssessmentRecord) []WeakAreaCount {
	counts := make(map[string]int)
	for _, r := range records {
		for _, area := range r.WeakAreas {
			counts[area]++
		}
	}

	result := make([]WeakAreaCount, 0, len(counts))
	for area, count := range counts {
		result = append(result, WeakAreaCount{Area: area, Count: count})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Count != result[j].Count {
			return result[i].Count > result[j].Count
		}
		return result[i].Area < result[j].Area
	})
	return result
}

// truncateToDay обрезает время до календарной даты в UTC
func truncateToDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
