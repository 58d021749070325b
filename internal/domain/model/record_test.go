package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordUnmarshalPreservesFieldOrder(t *testing.T) {
	var rec Record
	err := json.Unmarshal([]byte(`{"Zeta":1,"Alpha":"a","Mid":null,"Beta":true}`), &rec)
	require.NoError(t, err)

	assert.Equal(t, []string{"Zeta", "Alpha", "Mid", "Beta"}, rec.Keys())

	v, ok := rec.Get("Mid")
	assert.True(t, ok)
	assert.Nil(t, v)
	assert.True(t, rec.Has("Beta"))
	assert.False(t, rec.Has("Gamma"))
}

func TestRecordUnmarshalNumbers(t *testing.T) {
	var rec Record
	err := json.Unmarshal([]byte(`{"int":106972,"float":95.67,"big":1e300,"huge":123456789012345678901234567890}`), &rec)
	require.NoError(t, err)

	v, _ := rec.Get("int")
	assert.Equal(t, int64(106972), v)

	v, _ = rec.Get("float")
	assert.Equal(t, 95.67, v)

	v, _ = rec.Get("big")
	assert.Equal(t, 1e300, v)

	v, _ = rec.Get("huge")
	assert.IsType(t, float64(0), v)
}

func TestRecordDuplicateKeyKeepsFirstPositionAndLastValue(t *testing.T) {
	var rec Record
	err := json.Unmarshal([]byte(`{"A":1,"B":2,"A":3}`), &rec)
	require.NoError(t, err)

	assert.Equal(t, []string{"A", "B"}, rec.Keys())
	v, _ := rec.Get("A")
	assert.Equal(t, int64(3), v)
}

func TestRecordRejectsNonObject(t *testing.T) {
	for _, raw := range []string{`null`, `[1,2]`, `"text"`, `42`} {
		var rec Record
		err := json.Unmarshal([]byte(raw), &rec)
		assert.ErrorIs(t, err, ErrNotObject, raw)
	}
}

func TestRecordSliceDecodesInOrder(t *testing.T) {
	var payload struct {
		Data []Record `json:"data"`
	}
	err := json.Unmarshal([]byte(`{"data":[{"b":1,"a":2},{"c":{"nested":true}}]}`), &payload)
	require.NoError(t, err)
	require.Len(t, payload.Data, 2)

	assert.Equal(t, []string{"b", "a"}, payload.Data[0].Keys())
	v, _ := payload.Data[1].Get("c")
	assert.Equal(t, map[string]any{"nested": true}, v)
}

func TestRecordMarshalRoundTripKeepsOrder(t *testing.T) {
	rec := RecordOf("z", int64(1), "a", "x", "m", nil)

	out, err := json.Marshal(rec)
	require.NoError(t, err)
	assert.Equal(t, `{"z":1,"a":"x","m":null}`, string(out))
}

func TestKeysReturnsCopy(t *testing.T) {
	rec := RecordOf("a", 1)
	keys := rec.Keys()
	keys[0] = "mutated"

	assert.Equal(t, []string{"a"}, rec.Keys())
}
