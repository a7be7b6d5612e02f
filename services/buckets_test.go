package services

import (
	"testing"

	"task-manager/backend/models"
)

func TestFillBucketsZeroFillsEmptyData(t *testing.T) {
	buckets := fillBuckets(nil, statusChartKeys(), func(raw string) string {
		return models.TaskStatus(raw).ChartKey()
	})

	for _, key := range []string{"Pending", "InProgress", "Completed"} {
		count, ok := buckets[key]
		if !ok {
			t.Errorf("bucket %q missing from empty data set", key)
		}
		if count != 0 {
			t.Errorf("bucket %q = %d, want 0", key, count)
		}
	}
}

func TestFillBucketsMapsStatusKeys(t *testing.T) {
	rows := []bucketRow{
		{ID: "In Progress", Count: 3},
		{ID: "Completed", Count: 2},
	}

	buckets := fillBuckets(rows, statusChartKeys(), func(raw string) string {
		return models.TaskStatus(raw).ChartKey()
	})

	if buckets["InProgress"] != 3 {
		t.Errorf(`buckets["InProgress"] = %d, want 3`, buckets["InProgress"])
	}
	if buckets["Completed"] != 2 {
		t.Errorf(`buckets["Completed"] = %d, want 2`, buckets["Completed"])
	}
	if buckets["Pending"] != 0 {
		t.Errorf(`buckets["Pending"] = %d, want 0`, buckets["Pending"])
	}
}

func TestFillBucketsDropsUnknownKeys(t *testing.T) {
	rows := []bucketRow{{ID: "Archived", Count: 7}}

	buckets := fillBuckets(rows, priorityKeys(), func(raw string) string { return raw })

	if len(buckets) != 3 {
		t.Errorf("got %d buckets, want 3", len(buckets))
	}
	if _, ok := buckets["Archived"]; ok {
		t.Error("unenumerated key leaked into buckets")
	}
}

func TestPriorityKeysZeroFilled(t *testing.T) {
	buckets := fillBuckets(nil, priorityKeys(), func(raw string) string { return raw })

	for _, key := range []string{"Low", "Medium", "High"} {
		if count, ok := buckets[key]; !ok || count != 0 {
			t.Errorf("bucket %q = %d (present=%v), want 0 present", key, count, ok)
		}
	}
}
