package grpc

import (
	"encoding/json"
	"fmt"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/dmitrijs2005/sketchboard/internal/board/protocol"
)

// EncodeFrame turns an envelope into the Struct sent on the Connect stream.
func EncodeFrame(env protocol.Envelope) (*structpb.Struct, error) {
	return toStruct(env)
}

// DecodeFrame is the inverse of EncodeFrame.
func DecodeFrame(s *structpb.Struct) (protocol.Envelope, error) {
	b, err := json.Marshal(s.AsMap())
	if err != nil {
		return protocol.Envelope{}, fmt.Errorf("frame to json: %w", err)
	}
	return protocol.Decode(b)
}

// toStruct goes through encoding/json so field names follow the json tags.
func toStruct(v any) (*structpb.Struct, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	return structpb.NewStruct(m)
}
