// Command gencustomers emits a synthetic customer CSV with realistic
// quality problems (missing values, bad formats, duplicates) for
// exercising the custodian pipeline.
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/jaswdr/faker"

	c "github.com/wdm0006/custodian/pkg/custodian"
)

func main() {
	rows := flag.Int("rows", 100, "Number of data rows to generate")
	seed := flag.Int64("seed", 42, "Random seed (same seed, same dataset)")
	dirty := flag.Float64("dirty", 0.3, "Fraction of rows given at least one quality problem")
	out := flag.String("o", "-", "Output path (default stdout)")
	flag.Parse()

	rng := rand.New(rand.NewSource(*seed))
	fk := faker.NewWithSeed(rand.NewSource(*seed))

	w := csv.NewWriter(os.Stdout)
	if *out != "-" && *out != "" {
		f, err := os.Create(*out)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		defer func() { _ = f.Close() }()
		w = csv.NewWriter(f)
	}

	hdr := make([]string, 0, len(c.CustomerSchema().Columns))
	for _, cs := range c.CustomerSchema().Columns {
		hdr = append(hdr, cs.Name)
	}
	if err := w.Write(hdr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	for i := 0; i < *rows; i++ {
		rec := cleanRow(i+1, rng, fk)
		if rng.Float64() < *dirty {
			corrupt(rec, rng)
		}
		if err := w.Write(rec); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// cleanRow builds a well-formed record in schema column order.
func cleanRow(id int, rng *rand.Rand, fk faker.Faker) []string {
	dob := time.Date(1940+rng.Intn(65), time.Month(1+rng.Intn(12)), 1+rng.Intn(28), 0, 0, 0, 0, time.UTC)
	created := time.Date(2015+rng.Intn(10), time.Month(1+rng.Intn(12)), 1+rng.Intn(28), 0, 0, 0, 0, time.UTC)
	statuses := []string{"active", "inactive", "suspended"}
	return []string{
		strconv.Itoa(id),
		fk.Person().FirstName(),
		fk.Person().LastName(),
		strings.ToLower(fk.Internet().Email()),
		fmt.Sprintf("%03d-%03d-%04d", 200+rng.Intn(800), rng.Intn(1000), rng.Intn(10000)),
		dob.Format("2006-01-02"),
		fk.Address().StreetAddress(),
		strconv.Itoa(20000 + rng.Intn(180000)),
		statuses[rng.Intn(len(statuses))],
		created.Format("2006-01-02"),
	}
}

// corrupt injects one random quality problem into a record. Indexes
// follow the schema column order.
func corrupt(rec []string, rng *rand.Rand) {
	switch rng.Intn(12) {
	case 0: // missing name
		rec[1] = ""
	case 1: // all caps name
		rec[2] = strings.ToUpper(rec[2])
	case 2: // broken email
		rec[3] = strings.Replace(rec[3], "@", " at ", 1)
	case 3: // missing email
		rec[3] = ""
	case 4: // phone with country code and punctuation
		rec[4] = "1-" + rec[4]
	case 5: // phone too short
		rec[4] = "555-1234"
	case 6: // unparseable date
		rec[5] = "invalid_date"
	case 7: // US slash date
		if t, err := time.Parse("2006-01-02", rec[5]); err == nil {
			rec[5] = t.Format("01/02/2006")
		}
	case 8: // missing address
		rec[6] = ""
	case 9: // negative income
		rec[7] = "-" + rec[7]
	case 10: // shouting status
		rec[8] = strings.ToUpper(rec[8])
	case 11: // future created date
		rec[9] = "2099-01-01"
	}
}
