package encoding

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/zeusync/gridspace/pkg/generic"
)

// Serializable provides a clean, simple interface for serializing and deserializing values.
type Serializable[T any] interface {
	Serialize() ([]byte, error)
	Deserialize([]byte) error
}

// Codec turns values into bytes and back. Implementations are stateless.
type Codec interface {
	Name() string
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
}

var ErrUnknownCodec = errors.New("encoding: unknown codec")

const (
	JSONName    = "json"
	MsgPackName = "msgpack"
)

var (
	JSON    Codec = jsonCodec{}
	MsgPack Codec = msgpackCodec{}
)

var codecs = map[string]Codec{
	JSONName:    JSON,
	MsgPackName: MsgPack,
}

// ByName looks up a codec; an empty name selects JSON.
func ByName(name string) (Codec, error) {
	if name == "" {
		return JSON, nil
	}
	c, ok := codecs[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCodec, name)
	}
	return c, nil
}

// Names lists the registered codec names.
func Names() []string {
	names := make([]string, 0, len(codecs))
	for name := range codecs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Snapshots are marshalled on every save; the scratch buffers are reused and
// the result copied out.
var buffers = generic.NewPool(func() *bytes.Buffer { return new(bytes.Buffer) }, (*bytes.Buffer).Reset)

type jsonCodec struct{}

func (jsonCodec) Name() string { return JSONName }

func (jsonCodec) Marshal(v any) ([]byte, error) {
	var out []byte
	err := buffers.With(func(buf *bytes.Buffer) error {
		if err := json.NewEncoder(buf).Encode(v); err != nil {
			return err
		}
		out = bytes.Clone(bytes.TrimSuffix(buf.Bytes(), []byte("\n")))
		return nil
	})
	return out, err
}

func (jsonCodec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

type msgpackCodec struct{}

func (msgpackCodec) Name() string { return MsgPackName }

func (msgpackCodec) Marshal(v any) ([]byte, error) {
	var out []byte
	err := buffers.With(func(buf *bytes.Buffer) error {
		if err := msgpack.NewEncoder(buf).Encode(v); err != nil {
			return err
		}
		out = bytes.Clone(buf.Bytes())
		return nil
	})
	return out, err
}

func (msgpackCodec) Unmarshal(data []byte, v any) error { return msgpack.Unmarshal(data, v) }
