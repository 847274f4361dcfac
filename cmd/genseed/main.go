// Command genseed converts a legacy JSON report fixture into the YAML seed
// layout the dashboard loads. Legacy `location.coordinates: [lng, lat]`
// arrays become `coordinates: {lat, lng}` and every record is validated.
//
// Usage:
//
//	go run ./cmd/genseed -in mock_emergencies.json -out internal/seed/seed.yaml
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/couchcryptid/drone-emergency-dashboard/internal/seed"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	in := flag.String("in", "", "path to the legacy JSON fixture")
	out := flag.String("out", "", "output path for the YAML seed (stdout when empty)")
	flag.Parse()

	if *in == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -in")
	}

	data, err := os.ReadFile(*in)
	if err != nil {
		return fmt.Errorf("read %s: %w", *in, err)
	}

	converted, err := seed.ConvertJSON(data)
	if err != nil {
		return fmt.Errorf("convert %s: %w", *in, err)
	}

	if *out == "" {
		_, err = os.Stdout.Write(converted)
		return err
	}
	if err := os.WriteFile(*out, converted, 0o644); err != nil { //nolint:gosec // fixture is not secret
		return fmt.Errorf("write %s: %w", *out, err)
	}
	log.Printf("wrote seed fixture: %s", *out)
	return nil
}
