package services

// bucketRow is one $group result: the grouped field value and its count.
type bucketRow struct {
	ID    string `bson:"_id"`
	Count int64  `bson:"count"`
}

// fillBuckets folds raw $group rows into a map keyed by the enumerated
// bucket keys. Every key is present in the result, zero-filled when no row
// matched it; rows whose mapped key is not enumerated are dropped.
func fillBuckets(rows []bucketRow, keys []string, keyFn func(string) string) map[string]int64 {
	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[keyFn(row.ID)] += row.Count
	}

	buckets := make(map[string]int64, len(keys))
	for _, key := range keys {
		buckets[key] = counts[key]
	}
	return buckets
}
