package core

// AmountBucket is one of the fixed amount ranges offered by the amount
// filter. The gap between $50 and $100 is deliberate: amounts in (50, 100)
// match no bucket at all.
type AmountBucket string

const (
	BucketNone AmountBucket = ""
	BucketLow  AmountBucket = "0-50"
	BucketMid  AmountBucket = "100-500"
	BucketHigh AmountBucket = "500+"
)

// Bucket boundaries in cents.
const (
	lowMaxCents  = 50_00
	midMinCents  = 100_00
	midMaxCents  = 500_00
	highMinCents = 500_00
)

func (b AmountBucket) IsValid() bool {
	switch b {
	case BucketNone, BucketLow, BucketMid, BucketHigh:
		return true
	}
	return false
}

// Matches reports whether the amount falls inside the bucket. BucketNone
// matches everything.
func (b AmountBucket) Matches(m Money) bool {
	switch b {
	case BucketNone:
		return true
	case BucketLow:
		return m.Cents <= lowMaxCents
	case BucketMid:
		return m.Cents >= midMinCents && m.Cents <= midMaxCents
	case BucketHigh:
		return m.Cents > highMinCents
	}
	return false
}

// Criteria is a set of independently optional filter predicates. The zero
// value matches every transaction.
type Criteria struct {
	Start    Date
	End      Date
	Store    string
	Category string
	Bucket   AmountBucket
}

// Matches reports whether the transaction satisfies every set predicate.
// Date comparison happens on calendar dates in FilterLocation; store and
// category matches are exact and case-sensitive.
func (c Criteria) Matches(t Transaction) bool {
	if !c.Start.IsEmpty() && t.Date.Before(c.Start) {
		return false
	}
	if !c.End.IsEmpty() && t.Date.After(c.End) {
		return false
	}
	if c.Store != "" && t.Store != c.Store {
		return false
	}
	if c.Category != "" && t.Category != c.Category {
		return false
	}
	return c.Bucket.Matches(t.Amount)
}

// Filter returns the transactions matching the criteria, preserving input
// order. The input slice is never mutated.
func Filter(txns []Transaction, c Criteria) []Transaction {
	out := make([]Transaction, 0, len(txns))
	for _, t := range txns {
		if c.Matches(t) {
			out = append(out, t)
		}
	}
	return out
}

// DistinctStores returns the unique store names in first-seen order.
func DistinctStores(txns []Transaction) []string {
	return distinct(txns, func(t Transaction) string { return t.Store })
}

// DistinctCategories returns the unique category names in first-seen order.
func DistinctCategories(txns []Transaction) []string {
	return distinct(txns, func(t Transaction) string { return t.Category })
}

func distinct(txns []Transaction, field func(Transaction) string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(txns))
	for _, t := range txns {
		v := field(t)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
