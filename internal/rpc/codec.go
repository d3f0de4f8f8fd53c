package rpc

import (
	"encoding/json"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// Decode copies the request fields into dst, matching json tags.
func Decode(req *structpb.Struct, dst any) error {
	if req == nil {
		return nil
	}
	data, err := protojson.Marshal(req)
	if err != nil {
		return status.Error(codes.InvalidArgument, err.Error())
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return status.Error(codes.InvalidArgument, fmt.Sprintf("malformed request: %v", err))
	}
	return nil
}

// Encode converts any JSON-serializable value into a Struct response.
func Encode(v any) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	out := &structpb.Struct{}
	if err := protojson.Unmarshal(data, out); err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return out, nil
}

// EncodeList wraps a slice as {"items": [...]}.
func EncodeList[T any](items []T) (*structpb.Struct, error) {
	if items == nil {
		items = []T{}
	}
	return Encode(map[string]any{"items": items})
}
