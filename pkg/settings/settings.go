package settings

import (
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
)

// Setting is one row of hot-reloadable configuration. A path can hold several
// rows (e.g. a list of solar system ids) or a single scalar value.
type Setting struct {
	Path  string
	Value string
}

// Provider fetches settings by path. Zero rows means the path is unset, which
// callers treat as "feature disabled"; it is never an error.
type Provider interface {
	GetSettingsByPath(path string) ([]Setting, error)
}

// Bool reads a single boolean value. Unset paths read as false.
func Bool(p Provider, path string) (bool, error) {
	rows, err := p.GetSettingsByPath(path)
	if err != nil {
		return false, err
	}
	if len(rows) == 0 {
		return false, nil
	}
	return rows[0].Value == "true" || rows[0].Value == "1", nil
}

// Int64 reads a single integer value, falling back to defaultVal when unset.
func Int64(p Provider, path string, defaultVal int64) (int64, error) {
	rows, err := p.GetSettingsByPath(path)
	if err != nil {
		return defaultVal, err
	}
	if len(rows) == 0 {
		return defaultVal, nil
	}
	v, err := strconv.ParseInt(rows[0].Value, 10, 64)
	if err != nil {
		return defaultVal, fmt.Errorf("setting '%s' is not an integer: %w", path, err)
	}
	return v, nil
}

// Decimal reads a single decimal value. Unset paths read as zero.
func Decimal(p Provider, path string) (decimal.Decimal, error) {
	rows, err := p.GetSettingsByPath(path)
	if err != nil {
		return decimal.Zero, err
	}
	if len(rows) == 0 {
		return decimal.Zero, nil
	}
	v, err := decimal.NewFromString(rows[0].Value)
	if err != nil {
		return decimal.Zero, fmt.Errorf("setting '%s' is not a decimal: %w", path, err)
	}
	return v, nil
}

// Int64Set reads every row under a path as a set of integer ids. Rows that do
// not parse are skipped rather than failing the whole set.
func Int64Set(p Provider, path string) (map[int64]bool, error) {
	rows, err := p.GetSettingsByPath(path)
	if err != nil {
		return nil, err
	}
	set := make(map[int64]bool, len(rows))
	for _, row := range rows {
		v, err := strconv.ParseInt(row.Value, 10, 64)
		if err != nil {
			continue
		}
		set[v] = true
	}
	return set, nil
}
