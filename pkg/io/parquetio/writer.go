// Package parquetio writes table snapshots as Parquet for analytics
// consumers. Cells are raw text, so every column maps to an optional UTF8
// byte array; absent cells become nulls.
package parquetio

import (
	"encoding/json"
	"fmt"

	c "github.com/wdm0006/custodian/pkg/custodian"
	local "github.com/xitongsys/parquet-go-source/local"
	pw "github.com/xitongsys/parquet-go/writer"
)

func parquetSchemaJSON(s c.Schema) string {
	type field struct {
		Tag string `json:"Tag"`
	}
	type schema struct {
		Tag    string  `json:"Tag"`
		Fields []field `json:"Fields"`
	}
	sc := schema{Tag: "name=schema, repetitiontype=REQUIRED"}
	for _, cs := range s.Columns {
		sc.Fields = append(sc.Fields, field{
			Tag: "name=" + cs.Name + ", repetitiontype=OPTIONAL, type=BYTE_ARRAY, convertedtype=UTF8",
		})
	}
	b, _ := json.Marshal(sc)
	return string(b)
}

// WriteAll writes a Table to a Parquet file using parquet-go's JSONWriter.
func WriteAll(path string, t *c.Table) error {
	fw, err := local.NewLocalFileWriter(path)
	if err != nil {
		return err
	}
	writer, err := pw.NewJSONWriter(parquetSchemaJSON(t.Schema()), fw, 4)
	if err != nil {
		_ = fw.Close()
		return fmt.Errorf("parquet writer init: %w", err)
	}
	defer func() { _ = writer.WriteStop(); _ = fw.Close() }()

	for r := 0; r < t.Rows(); r++ {
		rec := make(map[string]any, len(t.Schema().Columns))
		for _, cs := range t.Schema().Columns {
			if v, ok := t.Get(r, cs.Name); ok {
				rec[cs.Name] = v
			}
		}
		if err := writer.Write(rec); err != nil {
			return fmt.Errorf("parquet write row: %w", err)
		}
	}
	return nil
}
