package grocery

import "strings"

// DefaultDuplicateThreshold is the similarity a candidate must exceed against
// an existing item to be flagged as a potential duplicate.
const DefaultDuplicateThreshold = 0.7

// ExistingItem is a read-only snapshot of an item already on one of the
// user's shopping lists.
type ExistingItem struct {
	Name      string `json:"name"`
	Category  string `json:"category"`
	Completed bool   `json:"completed"`
}

// Result partitions candidate ingredient names against existing items.
//
// PotentialDuplicates is computed independently of AlreadyInLists, so a name
// can appear in both.
type Result struct {
	AlreadyInLists      []string `json:"alreadyInLists"`
	SuggestedAdditions  []string `json:"suggestedAdditions"`
	PotentialDuplicates []string `json:"potentialDuplicates"`
}

// Reconciler compares candidates with existing items. It holds no mutable
// state and is safe for concurrent use.
type Reconciler struct {
	threshold float64
}

// NewReconciler returns a Reconciler using the given duplicate threshold.
// Values outside (0, 1] fall back to DefaultDuplicateThreshold.
func NewReconciler(threshold float64) *Reconciler {
	if threshold <= 0 || threshold > 1 {
		threshold = DefaultDuplicateThreshold
	}
	return &Reconciler{threshold: threshold}
}

// Threshold returns the duplicate threshold in use.
func (r *Reconciler) Threshold() float64 {
	return r.threshold
}

// Reconcile splits candidates into names already present (bidirectional
// case-insensitive substring match), names to add (everything not present)
// and names that look like near-duplicates by edit-distance similarity.
// Candidate order and repeats are preserved in every bucket.
func (r *Reconciler) Reconcile(candidates, existing []string) Result {
	res := Result{
		AlreadyInLists:      []string{},
		SuggestedAdditions:  []string{},
		PotentialDuplicates: []string{},
	}

	lowered := make([]string, len(existing))
	for i, name := range existing {
		lowered[i] = strings.ToLower(name)
	}

	present := make(map[string]struct{})
	for _, c := range candidates {
		lc := strings.ToLower(c)
		for _, e := range lowered {
			if strings.Contains(e, lc) || strings.Contains(lc, e) {
				res.AlreadyInLists = append(res.AlreadyInLists, c)
				present[c] = struct{}{}
				break
			}
		}
	}

	for _, c := range candidates {
		if _, ok := present[c]; !ok {
			res.SuggestedAdditions = append(res.SuggestedAdditions, c)
		}
	}

	for _, c := range candidates {
		lc := strings.ToLower(c)
		for _, e := range lowered {
			if Similarity(lc, e) > r.threshold {
				res.PotentialDuplicates = append(res.PotentialDuplicates, c)
				break
			}
		}
	}

	return res
}

// ReconcileItems reconciles candidates against the names of items, completed
// or not.
func (r *Reconciler) ReconcileItems(candidates []string, items []ExistingItem) Result {
	return r.Reconcile(candidates, ItemNames(items))
}

// ItemNames flattens items into their names.
func ItemNames(items []ExistingItem) []string {
	names := make([]string, len(items))
	for i, it := range items {
		names[i] = it.Name
	}
	return names
}

var defaultReconciler = NewReconciler(DefaultDuplicateThreshold)

// Reconcile uses the default duplicate threshold.
func Reconcile(candidates, existing []string) Result {
	return defaultReconciler.Reconcile(candidates, existing)
}
