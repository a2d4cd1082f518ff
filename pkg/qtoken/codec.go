package qtoken

import (
	"encoding/json"
	"fmt"

	"github.com/quatton/qtoken/pkg/config"
	"github.com/vmihailenco/msgpack/v5"
)

// Codec turns tokens into the bytes kept in the store and back.
type Codec interface {
	Name() string
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
}

// MsgpackCodec is the default codec: compact and it keeps nanosecond
// precision on the expiry instants.
type MsgpackCodec struct{}

func (MsgpackCodec) Name() string                       { return config.CodecMsgpack }
func (MsgpackCodec) Marshal(v any) ([]byte, error)      { return msgpack.Marshal(v) }
func (MsgpackCodec) Unmarshal(data []byte, v any) error { return msgpack.Unmarshal(data, v) }

// JSONCodec stores human-readable values, handy when operators inspect the
// store with redis-cli.
type JSONCodec struct{}

func (JSONCodec) Name() string                       { return config.CodecJSON }
func (JSONCodec) Marshal(v any) ([]byte, error)      { return json.Marshal(v) }
func (JSONCodec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

// CodecByName resolves a configured codec name. An empty name selects
// msgpack.
func CodecByName(name string) (Codec, error) {
	switch name {
	case "", config.CodecMsgpack:
		return MsgpackCodec{}, nil
	case config.CodecJSON:
		return JSONCodec{}, nil
	default:
		return nil, fmt.Errorf("qtoken: unknown codec %q", name)
	}
}
