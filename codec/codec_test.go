package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type frame struct {
	Iteration int          `json:"iteration"`
	State     string       `json:"state"`
	Centroids [][2]float64 `json:"centroids"`
	Sizes     []int        `json:"sizes"`
}

func TestByName(t *testing.T) {
	tests := []struct {
		name string
		ok   bool
	}{
		{"json", true},
		{"go-json", true},
		{"msgpack", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, ok := ByName(tt.name)
			assert.Equal(t, tt.ok, ok)
			if ok {
				assert.Equal(t, tt.name, c.Name())
			}
		})
	}
}

func TestCodecsAgree(t *testing.T) {
	in := frame{
		Iteration: 3,
		State:     "running",
		Centroids: [][2]float64{{1.5, -2}, {0, 0.25}},
		Sizes:     []int{4, 5},
	}

	std, err := JSON{}.Marshal(in)
	require.NoError(t, err)
	fast, err := GoJSON{}.Marshal(in)
	require.NoError(t, err)
	assert.JSONEq(t, string(std), string(fast))

	for _, c := range []Codec{JSON{}, GoJSON{}} {
		t.Run(c.Name(), func(t *testing.T) {
			var out frame
			require.NoError(t, c.Unmarshal(fast, &out))
			assert.Equal(t, in, out)
		})
	}
}

func TestMustMarshal(t *testing.T) {
	assert.Equal(t, `{"a":1}`, string(MustMarshal(nil, map[string]int{"a": 1})))
	assert.Panics(t, func() { MustMarshal(JSON{}, make(chan int)) })
}

func TestGoJSONMarshalIndent(t *testing.T) {
	b, err := GoJSON{}.MarshalIndent(map[string]int{"k": 3})
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"k\": 3\n}", string(b))
}
