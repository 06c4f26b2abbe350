// Package jsonlio writes audit artifacts (validation failures, cleaning
// actions) as JSON Lines for downstream tooling.
package jsonlio

import (
	"bufio"
	"encoding/json"

	iox "github.com/wdm0006/custodian/pkg/io/ioutils"
)

// WriteAll encodes one record per line to path ("-" for stdout, .gz
// transparently compressed).
func WriteAll[T any](path string, recs []T) error {
	out, err := iox.CreateMaybeCompressed(path)
	if err != nil {
		return err
	}
	defer func() { _ = out.Close() }()
	w := bufio.NewWriter(out)
	enc := json.NewEncoder(w)
	for _, rec := range recs {
		if err := enc.Encode(rec); err != nil {
			return err
		}
	}
	return w.Flush()
}
