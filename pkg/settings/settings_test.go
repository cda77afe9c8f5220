package settings

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

type mapProvider struct {
	values map[string][]string
	err    error
}

func (m *mapProvider) GetSettingsByPath(path string) ([]Setting, error) {
	if m.err != nil {
		return nil, m.err
	}
	rows := make([]Setting, 0, len(m.values[path]))
	for _, v := range m.values[path] {
		rows = append(rows, Setting{Path: path, Value: v})
	}
	return rows, nil
}

func Test_Bool(t *testing.T) {
	p := &mapProvider{values: map[string][]string{
		"feature.on":      {"true"},
		"feature.numeric": {"1"},
		"feature.off":     {"false"},
		"feature.garbage": {"yes"},
	}}

	t.Run("Should accept true and 1", func(t *testing.T) {
		v, err := Bool(p, "feature.on")
		assert.Nil(t, err)
		assert.True(t, v)

		v, err = Bool(p, "feature.numeric")
		assert.Nil(t, err)
		assert.True(t, v)
	})

	t.Run("Should read anything else as false", func(t *testing.T) {
		v, err := Bool(p, "feature.off")
		assert.Nil(t, err)
		assert.False(t, v)

		v, err = Bool(p, "feature.garbage")
		assert.Nil(t, err)
		assert.False(t, v)
	})

	t.Run("Should read an unset path as false", func(t *testing.T) {
		v, err := Bool(p, "feature.unset")
		assert.Nil(t, err)
		assert.False(t, v)
	})
}

func Test_Int64(t *testing.T) {
	p := &mapProvider{values: map[string][]string{
		"limit":    {"25"},
		"badLimit": {"twenty"},
	}}

	t.Run("Should parse the stored value", func(t *testing.T) {
		v, err := Int64(p, "limit", 10)
		assert.Nil(t, err)
		assert.Equal(t, int64(25), v)
	})

	t.Run("Should fall back to the default when unset", func(t *testing.T) {
		v, err := Int64(p, "unset", 10)
		assert.Nil(t, err)
		assert.Equal(t, int64(10), v)
	})

	t.Run("Should fail on an unparseable value", func(t *testing.T) {
		_, err := Int64(p, "badLimit", 10)
		assert.NotNil(t, err)
	})
}

func Test_Decimal(t *testing.T) {
	p := &mapProvider{values: map[string][]string{
		"pool": {"1000.50"},
	}}

	t.Run("Should parse the stored value", func(t *testing.T) {
		v, err := Decimal(p, "pool")
		assert.Nil(t, err)
		assert.Equal(t, "1000.5", v.String())
	})

	t.Run("Should read an unset path as zero", func(t *testing.T) {
		v, err := Decimal(p, "unset")
		assert.Nil(t, err)
		assert.True(t, v.IsZero())
	})
}

func Test_Int64Set(t *testing.T) {
	t.Run("Should read every row under the path", func(t *testing.T) {
		p := &mapProvider{values: map[string][]string{
			"systems": {"30000001", "30000002", "30000001"},
		}}
		set, err := Int64Set(p, "systems")
		assert.Nil(t, err)
		assert.Len(t, set, 2)
		assert.True(t, set[30000001])
		assert.True(t, set[30000002])
	})

	t.Run("Should skip rows that do not parse", func(t *testing.T) {
		p := &mapProvider{values: map[string][]string{
			"systems": {"30000001", "not-a-system"},
		}}
		set, err := Int64Set(p, "systems")
		assert.Nil(t, err)
		assert.Len(t, set, 1)
	})

	t.Run("Should read an unset path as an empty set", func(t *testing.T) {
		p := &mapProvider{values: map[string][]string{}}
		set, err := Int64Set(p, "systems")
		assert.Nil(t, err)
		assert.Len(t, set, 0)
	})

	t.Run("Should propagate provider errors", func(t *testing.T) {
		p := &mapProvider{err: fmt.Errorf("connection reset")}
		_, err := Int64Set(p, "systems")
		assert.NotNil(t, err)
	})
}
