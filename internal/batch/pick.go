package batch

import (
	"math/rand/v2"

	"oszimport/internal/items"
)

// Picker chooses the item reported as representative of a finished batch.
type Picker func(batch []items.WorkItem) items.WorkItem

// PickRandom picks a uniformly random item. The choice is cosmetic.
func PickRandom(batch []items.WorkItem) items.WorkItem {
	if len(batch) == 0 {
		return items.WorkItem{}
	}
	return batch[rand.IntN(len(batch))]
}

// PickFirst always reports the first item.
func PickFirst(batch []items.WorkItem) items.WorkItem {
	if len(batch) == 0 {
		return items.WorkItem{}
	}
	return batch[0]
}
