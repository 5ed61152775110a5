package ranking

import (
	"maps"
	"slices"

	"github.com/mcoot/snakegame-go/internal/model"
)

// Stats summarises the scores of a set of records
type Stats struct {
	Count  int
	Top    int
	Mean   float64
	Median float64
	// Modes holds the most frequent scores in ascending order. Empty when
	// every score is unique.
	Modes []int
}

// Summarize computes Stats over records. Empty input yields zero Stats.
func Summarize(records []*model.ScoreRecord) Stats {
	if len(records) == 0 {
		return Stats{Modes: []int{}}
	}

	scores := make([]int, len(records))
	for i, r := range records {
		scores[i] = r.Score
	}
	slices.Sort(scores)

	return Stats{
		Count:  len(scores),
		Top:    scores[len(scores)-1],
		Mean:   mean(scores),
		Median: median(scores),
		Modes:  modes(scores),
	}
}

func mean(scores []int) float64 {
	sum := 0
	for _, s := range scores {
		sum += s
	}
	return float64(sum) / float64(len(scores))
}

// median expects sorted scores
func median(scores []int) float64 {
	mid := len(scores) / 2
	if len(scores)%2 == 0 {
		return float64(scores[mid-1]+scores[mid]) / 2
	}
	return float64(scores[mid])
}

func modes(scores []int) []int {
	frequency := make(map[int]int)
	maxFreq := 0
	for _, s := range scores {
		frequency[s]++
		maxFreq = max(maxFreq, frequency[s])
	}
	if maxFreq == 1 {
		return []int{}
	}

	result := make([]int, 0)
	for _, s := range slices.Sorted(maps.Keys(frequency)) {
		if frequency[s] == maxFreq {
			result = append(result, s)
		}
	}
	return result
}
