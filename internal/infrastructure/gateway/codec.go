package gateway

import (
	"encoding/json"

	"google.golang.org/grpc/encoding"
)

// jsonCodec lets the gateway clients invoke the downstream domain services'
// gRPC methods with plain Go request/response structs instead of vendoring
// the services' generated protobuf stubs (not available to this module —
// see DESIGN.md). grpc-go's encoding.Codec interface is a first-class
// extension point precisely for this; the wire format negotiated via
// grpc.CallContentSubtype("json") below.
type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error) { return json.Marshal(v) }

func (jsonCodec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

func (jsonCodec) Name() string { return "json" }

func init() {
	encoding.RegisterCodec(jsonCodec{})
}
