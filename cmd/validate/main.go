// Command validate checks a seed fixture against every report invariant: each
// record parses and validates, ids are unique, the collection classifies
// into the four status buckets without loss, and every card renders.
//
// Usage:
//
//	go run ./cmd/validate -seed internal/seed/seed.yaml
//
// With no -seed flag the embedded fixture is checked.
package main

import (
	"flag"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/couchcryptid/drone-emergency-dashboard/internal/domain"
	"github.com/couchcryptid/drone-emergency-dashboard/internal/seed"
	"github.com/couchcryptid/drone-emergency-dashboard/internal/viewmodel"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	seedPath := flag.String("seed", "", "path to a YAML seed fixture (embedded fixture when empty)")
	tzName := flag.String("tz", "UTC", "timezone used to render timestamps")
	flag.Parse()

	if code := run(*seedPath, *tzName); code != 0 {
		os.Exit(code)
	}
}

func run(seedPath, tzName string) int {
	fmt.Println("=== Seed Fixture Validation ===")
	fmt.Println()

	tz, err := time.LoadLocation(tzName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load timezone: %v\n", err)
		return 1
	}

	data, err := seed.ReadFile(seedPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
		return 1
	}
	raws, err := seed.Decode(data)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
		return 1
	}

	recordPhase, reports := validateRecords(raws)
	phases := []*phase{
		recordPhase,
		validateUniqueness(reports),
		validateClassification(reports),
		validatePresentation(reports, tz),
	}

	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Records: %d in fixture, %d valid\n", len(raws), len(reports))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

// ── Phase 1: Record invariants ──

func validateRecords(raws []domain.RawReport) (*phase, []domain.EmergencyReport) {
	p := &phase{name: "Phase 1: Record Invariants"}

	reports := make([]domain.EmergencyReport, 0, len(raws))
	for i, raw := range raws {
		if raw.ID == "" {
			p.errorf("record %d: missing id (ingestion would assign a random one)", i)
		}
		r, err := domain.ParseReport(raw)
		if err != nil {
			p.errorf("record %d: %v", i, err)
			continue
		}
		reports = append(reports, r)
	}
	return p, reports
}

// ── Phase 2: Uniqueness ──

func validateUniqueness(reports []domain.EmergencyReport) *phase {
	p := &phase{name: "Phase 2: Unique Ids"}

	seen := make(map[string]int, len(reports))
	for i, r := range reports {
		if prev, dup := seen[r.ID]; dup {
			p.errorf("id %q used by records %d and %d", r.ID, prev, i)
			continue
		}
		seen[r.ID] = i
	}
	return p
}

// ── Phase 3: Classification ──

func validateClassification(reports []domain.EmergencyReport) *phase {
	p := &phase{name: "Phase 3: Status Classification"}

	buckets, err := domain.Classify(reports)
	if err != nil {
		p.errorf("classify: %v", err)
		return p
	}

	total := 0
	for _, status := range domain.Statuses() {
		bucket, ok := buckets[status]
		if !ok {
			p.errorf("bucket %s missing", status)
		}
		total += len(bucket)
		fmt.Printf("  %-12s %d\n", status, len(bucket))
	}
	if total != len(reports) {
		p.errorf("buckets hold %d reports, fixture has %d", total, len(reports))
	}
	return p
}

// ── Phase 4: Presentation ──

func validatePresentation(reports []domain.EmergencyReport, tz *time.Location) *phase {
	p := &phase{name: "Phase 4: Presentation"}

	board, err := viewmodel.NewBoard(reports, tz)
	if err != nil {
		p.errorf("build board: %v", err)
		return p
	}
	if len(board.Columns) != len(domain.Statuses()) {
		p.errorf("board has %d columns", len(board.Columns))
	}

	for _, r := range reports {
		if r.Title == "" {
			p.errorf("%s: empty title", r.ID)
		}
		if r.HasImage() {
			u, err := url.Parse(r.ImageURL)
			if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
				p.errorf("%s: image url %q is not http(s)", r.ID, r.ImageURL)
			}
		}
		if r.Timestamp.After(time.Now()) {
			p.errorf("%s: timestamp %s is in the future", r.ID, r.Timestamp.Format(time.RFC3339))
		}
	}
	return p
}
