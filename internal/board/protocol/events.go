// Package protocol defines the messages exchanged over a connection's event
// channel. Every message is an Envelope whose Type names the event and whose
// Payload carries the event body as raw JSON.
package protocol

// Type names an event.
type Type string

const (
	// Server to the new connection only.
	TypeIdentity Type = "identity-assigned"
	TypeSnapshot Type = "snapshot"

	// Server to everyone else.
	TypeUserJoined Type = "user-joined"
	TypeUserLeft   Type = "user-left"

	// Client to server, relayed to everyone else.
	TypeStrokeStart  Type = "stroke-start"
	TypeStrokePoints Type = "stroke-points"
	TypeStrokeEnd    Type = "stroke-end"
	TypeErase        Type = "erase"
	TypeCursorUpdate Type = "cursor-update"

	// Client to server, answered to the requester only.
	TypeUserLookup Type = "user-lookup"

	// Client to server, broadcast to everyone including the sender.
	TypeUndo Type = "undo"
	TypeRedo Type = "redo"
)

// Audience is who receives an outbound event.
type Audience int

const (
	AudienceOthers Audience = iota
	AudienceEveryone
	AudienceSender
)

func (a Audience) String() string {
	switch a {
	case AudienceOthers:
		return "others"
	case AudienceEveryone:
		return "everyone"
	case AudienceSender:
		return "sender"
	default:
		return "unknown"
	}
}

var audiences = map[Type]Audience{
	TypeIdentity:     AudienceSender,
	TypeSnapshot:     AudienceSender,
	TypeUserLookup:   AudienceSender,
	TypeUserJoined:   AudienceOthers,
	TypeUserLeft:     AudienceOthers,
	TypeStrokeStart:  AudienceOthers,
	TypeStrokePoints: AudienceOthers,
	TypeStrokeEnd:    AudienceOthers,
	TypeErase:        AudienceOthers,
	TypeCursorUpdate: AudienceOthers,
	TypeUndo:         AudienceEveryone,
	TypeRedo:         AudienceEveryone,
}

// AudienceOf returns the delivery policy for an event type. Unknown types
// are never broadcast: they go back to the sender at most.
func AudienceOf(t Type) Audience {
	if a, ok := audiences[t]; ok {
		return a
	}
	return AudienceSender
}

// Known reports whether t is part of the protocol.
func Known(t Type) bool {
	_, ok := audiences[t]
	return ok
}
