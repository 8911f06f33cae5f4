package ingest

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"spendtrend/internal/core"
)

// Canonical column names. Every component downstream of Validate uses
// these and nothing else.
const (
	FieldDate        = "date"
	FieldDescription = "description"
	FieldAmount      = "amount"
	FieldCategory    = "category"
)

// RequiredFields lists the canonical columns a ledger table must carry.
var RequiredFields = []string{FieldDate, FieldDescription, FieldAmount, FieldCategory}

// Aliases maps a header variant (after trimming) to a canonical field.
// Matching is exact and case-sensitive.
type Aliases map[string]string

// DefaultAliases covers the header spellings found in real exports,
// including the "Categroy" typo and the "Date " trailing blank.
func DefaultAliases() Aliases {
	return Aliases{
		"Date":        FieldDate,
		"Description": FieldDescription,
		"Amount":      FieldAmount,
		"Category":    FieldCategory,
		"Categroy":    FieldCategory,
	}
}

type aliasFile struct {
	Aliases map[string][]string `yaml:"aliases"`
}

// LoadAliasFile reads extra variants from a YAML file of the form
//
//	aliases:
//	  date: ["Posted On", "Booking Date"]
//	  category: ["Kategorie"]
//
// and returns them merged over DefaultAliases.
func LoadAliasFile(path string) (Aliases, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read alias file: %w", err)
	}
	return ParseAliases(data)
}

// ParseAliases decodes the YAML alias document and merges it over the defaults.
func ParseAliases(data []byte) (Aliases, error) {
	var doc aliasFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode alias file: %w", err)
	}
	out := DefaultAliases()
	for canonical, variants := range doc.Aliases {
		if !isCanonical(canonical) {
			return nil, fmt.Errorf("alias file: unknown field %q (must be one of %v)", canonical, RequiredFields)
		}
		for _, v := range variants {
			v = strings.TrimSpace(v)
			if v == "" {
				continue
			}
			if prev, ok := out[v]; ok && prev != canonical {
				return nil, fmt.Errorf("alias file: %q maps to both %q and %q", v, prev, canonical)
			}
			out[v] = canonical
		}
	}
	return out, nil
}

// Canonical resolves a raw header to its canonical field name.
func (a Aliases) Canonical(header string) (string, bool) {
	h := strings.TrimSpace(header)
	if isCanonical(h) {
		return h, true
	}
	c, ok := a[h]
	return c, ok
}

func isCanonical(name string) bool {
	for _, f := range RequiredFields {
		if f == name {
			return true
		}
	}
	return false
}

// Validate checks that every required column is present exactly once and
// returns a copy of t whose required columns carry canonical names. Cell
// values are not inspected. A nil aliases uses DefaultAliases.
func Validate(t Table, aliases Aliases) (Table, error) {
	if aliases == nil {
		aliases = DefaultAliases()
	}

	rename := make(map[string]string, len(t.Columns))
	seen := make(map[string]bool, len(RequiredFields))
	var dup []string
	for _, col := range t.Columns {
		canonical, ok := aliases.Canonical(col)
		if !ok {
			continue
		}
		if seen[canonical] {
			dup = append(dup, canonical)
			continue
		}
		seen[canonical] = true
		rename[col] = canonical
	}

	var missing []string
	for _, f := range RequiredFields {
		if !seen[f] {
			missing = append(missing, f)
		}
	}
	if len(missing) > 0 || len(dup) > 0 {
		return Table{}, &core.SchemaError{Missing: missing, Duplicate: dup}
	}

	out := Table{
		Columns: make([]string, len(t.Columns)),
		Rows:    make([]Row, len(t.Rows)),

		Malformed: t.Malformed,
	}
	for i, col := range t.Columns {
		out.Columns[i] = col
		if c, ok := rename[col]; ok {
			out.Columns[i] = c
		}
	}
	for i, row := range t.Rows {
		r := make(Row, len(row))
		for k, v := range row {
			if c, ok := rename[k]; ok {
				k = c
			}
			r[k] = v
		}
		out.Rows[i] = r
	}
	return out, nil
}
