package encoding

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type sample struct {
	Name  string    `json:"name" msgpack:"name"`
	Point []float64 `json:"point" msgpack:"point"`
	Ptr   *float64  `json:"ptr,omitempty" msgpack:"ptr,omitempty"`
}

func TestCodecs(t *testing.T) {
	v := 2.5
	in := sample{Name: "u1", Point: []float64{1, -2, 3.25}, Ptr: &v}

	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			c, err := ByName(name)
			require.NoError(t, err)
			require.Equal(t, name, c.Name())

			raw, err := c.Marshal(in)
			require.NoError(t, err)

			var out sample
			require.NoError(t, c.Unmarshal(raw, &out))
			require.Equal(t, in, out)

			var missing sample
			raw, err = c.Marshal(sample{Name: "bare"})
			require.NoError(t, err)
			require.NoError(t, c.Unmarshal(raw, &missing))
			require.Nil(t, missing.Ptr)
		})
	}
}

func TestByName(t *testing.T) {
	c, err := ByName("")
	require.NoError(t, err)
	require.Equal(t, JSON, c)

	_, err = ByName("xml")
	require.ErrorIs(t, err, ErrUnknownCodec)
	require.Equal(t, []string{"json", "msgpack"}, Names())
}
