package scheduler

import (
	"math/rand"
	"sort"
	"time"

	"github.com/example/drillcards/pkg/models"
)

// NewItemWindow bounds how many not-yet-due new items are considered when
// picking one at random.
const NewItemWindow = 5

// Items still being acquired come before stable ones.
var statePriority = map[models.State]float64{
	models.StateNew:        0,
	models.StateLearning:   1,
	models.StateRelearning: 1.5,
	models.StateReview:     2,
}

func priority(s models.State) float64 {
	if p, ok := statePriority[s]; ok {
		return p
	}
	return 999
}

// SelectNext picks the item to present next, or nil for an empty pool.
//
// Due items win, ordered by state priority and then by due time. With
// nothing due, one of the first NewItemWindow new items is chosen at
// random. Otherwise the earliest due item in the pool is returned.
// rnd may be nil to use the global source.
func SelectNext(items []models.Item, now time.Time, rnd *rand.Rand) *models.Item {
	if len(items) == 0 {
		return nil
	}

	var due, fresh []int
	for i, item := range items {
		switch {
		case item.MemoryState.IsDue(now):
			due = append(due, i)
		case item.MemoryState.State == models.StateNew:
			fresh = append(fresh, i)
		}
	}

	if len(due) > 0 {
		sort.SliceStable(due, func(a, b int) bool {
			ma, mb := items[due[a]].MemoryState, items[due[b]].MemoryState
			if pa, pb := priority(ma.State), priority(mb.State); pa != pb {
				return pa < pb
			}
			return ma.Due.Before(mb.Due)
		})
		return &items[due[0]]
	}

	if len(fresh) > 0 {
		window := len(fresh)
		if window > NewItemWindow {
			window = NewItemWindow
		}
		var n int
		if rnd != nil {
			n = rnd.Intn(window)
		} else {
			n = rand.Intn(window)
		}
		return &items[fresh[n]]
	}

	earliest := 0
	for i := range items {
		if items[i].MemoryState.Due.Before(items[earliest].MemoryState.Due) {
			earliest = i
		}
	}
	return &items[earliest]
}
