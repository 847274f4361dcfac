package domain

import "fmt"

// Buckets partitions reports by status. All four statuses are always present.
type Buckets map[ReportStatus][]EmergencyReport

// Total is the number of reports across all buckets.
func (b Buckets) Total() int {
	n := 0
	for _, reports := range b {
		n += len(reports)
	}
	return n
}

// Classify places every report into the bucket matching its status, keeping
// input order within each bucket. A report with an unknown status is a
// contract violation and fails the whole call rather than being dropped.
func Classify(reports []EmergencyReport) (Buckets, error) {
	buckets := make(Buckets, len(Statuses()))
	for _, s := range Statuses() {
		buckets[s] = []EmergencyReport{}
	}

	for _, r := range reports {
		if !r.Status.Valid() {
			return nil, fmt.Errorf("classify report %s: %w: %q", r.ID, ErrInvalidStatus, r.Status)
		}
		buckets[r.Status] = append(buckets[r.Status], r)
	}
	return buckets, nil
}
