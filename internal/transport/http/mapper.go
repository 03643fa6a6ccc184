package http

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/vovakirdan/chatrelay/internal/core"
	"github.com/vovakirdan/chatrelay/internal/proto"
	"github.com/vovakirdan/chatrelay/internal/sanitize"
)

// timestampLayout matches JavaScript's Date.toISOString.
const timestampLayout = "2006-01-02T15:04:05.000Z"

func inboundToCommand(inbound proto.Inbound) (*core.Command, *proto.Error) {
	switch inbound.Type {
	case proto.InboundTypeJoin:
		var join proto.JoinData
		if err := decodeData(inbound.Data, &join); err != nil {
			return nil, badRequest(err)
		}
		if name, ok := join.Username.(string); ok && sanitize.Length(strings.TrimSpace(name)) > proto.MaxUsernameLength {
			return nil, &proto.Error{
				Code:    core.ErrCodeValidation,
				Message: fmt.Sprintf("Username must be at most %d characters", proto.MaxUsernameLength),
			}
		}
		return &core.Command{Kind: core.CommandJoin, Username: join.Username, Room: join.Room}, nil
	case proto.InboundTypeChatMessage:
		var msg proto.ChatMessageData
		if err := decodeData(inbound.Data, &msg); err != nil {
			return nil, badRequest(err)
		}
		return &core.Command{Kind: core.CommandSendMessage, Text: msg.Message}, nil
	case proto.InboundTypePrivateMessage:
		var msg proto.PrivateMessageData
		if err := decodeData(inbound.Data, &msg); err != nil {
			return nil, badRequest(err)
		}
		return &core.Command{Kind: core.CommandSendPrivate, Text: msg.Message, TargetID: msg.TargetConnectionID}, nil
	case proto.InboundTypeTyping:
		var typing proto.TypingData
		if err := decodeData(inbound.Data, &typing); err != nil {
			return nil, badRequest(err)
		}
		return &core.Command{Kind: core.CommandTyping, IsTyping: typing.IsTyping}, nil
	case proto.InboundTypeChangeRoom:
		var change proto.ChangeRoomData
		if err := decodeData(inbound.Data, &change); err != nil {
			return nil, badRequest(err)
		}
		return &core.Command{Kind: core.CommandChangeRoom, Room: change.Room}, nil
	case proto.InboundTypeGetUsers:
		return &core.Command{Kind: core.CommandGetUsers}, nil
	case proto.InboundTypeGetRooms:
		return &core.Command{Kind: core.CommandGetRooms}, nil
	default:
		return nil, &proto.Error{Code: core.ErrCodeBadRequest, Message: "unknown message type"}
	}
}

// decodeData treats a missing or null payload as an empty object.
func decodeData(data json.RawMessage, v any) error {
	if len(data) == 0 || string(data) == "null" {
		return nil
	}
	return json.Unmarshal(data, v)
}

func badRequest(err error) *proto.Error {
	return &proto.Error{Code: core.ErrCodeBadRequest, Message: "invalid payload: " + err.Error()}
}

func outboundFromEvent(event *core.Event) proto.Outbound {
	switch event.Kind {
	case core.EventConnected:
		return proto.Outbound{Event: proto.EventConnected, Data: proto.Connected{ConnectionID: event.ConnectionID}}
	case core.EventHistory:
		return proto.Outbound{
			Event: proto.EventMessageHistory,
			Data: lo.Map(event.Messages, func(m core.Message, _ int) proto.Message {
				return toProtoMessage(&m)
			}),
		}
	case core.EventUserJoined:
		return proto.Outbound{Event: proto.EventUserJoined, Data: toProtoMessage(event.Message)}
	case core.EventUserLeft:
		return proto.Outbound{Event: proto.EventUserLeft, Data: toProtoMessage(event.Message)}
	case core.EventUsersList:
		return proto.Outbound{
			Event: proto.EventUsersList,
			Data: lo.Map(event.Users, func(u core.Member, _ int) proto.User {
				return proto.User{Username: u.Username, ConnectionID: u.ConnectionID}
			}),
		}
	case core.EventJoinSuccess:
		return proto.Outbound{
			Event: proto.EventJoinSuccess,
			Data:  proto.JoinSuccess{Username: event.User, Room: event.Room, UsersCount: event.UsersCount},
		}
	case core.EventRoomMessage:
		return proto.Outbound{Event: proto.EventReceivedMessage, Data: toProtoMessage(event.Message)}
	case core.EventPrivateReceived:
		return proto.Outbound{Event: proto.EventPrivateMessageReceived, Data: toProtoPrivate(event.Private)}
	case core.EventPrivateSent:
		return proto.Outbound{Event: proto.EventPrivateMessageSent, Data: toProtoPrivate(event.Private)}
	case core.EventTyping:
		return proto.Outbound{Event: proto.EventUserTyping, Data: proto.UserTyping{Username: event.User, IsTyping: event.IsTyping}}
	case core.EventRoomChanged:
		return proto.Outbound{Event: proto.EventRoomChanged, Data: proto.RoomChanged{Room: event.Room, UsersCount: event.UsersCount}}
	case core.EventRoomsList:
		return proto.Outbound{
			Event: proto.EventRoomsList,
			Data: lo.Map(event.Rooms, func(r core.RoomCount, _ int) proto.Room {
				return proto.Room{Name: r.Name, UsersCount: r.UsersCount}
			}),
		}
	case core.EventError:
		if event.Error == nil {
			return proto.Outbound{Event: proto.EventError, Data: proto.Error{Code: core.ErrCodeInternal, Message: "unknown error"}}
		}
		return proto.Outbound{Event: proto.EventError, Data: proto.Error{Code: event.Error.Code, Message: event.Error.Message}}
	default:
		return proto.Outbound{Event: proto.EventError, Data: proto.Error{Code: core.ErrCodeInternal, Message: "unknown event"}}
	}
}

func toProtoMessage(m *core.Message) proto.Message {
	if m == nil {
		return proto.Message{}
	}
	return proto.Message{
		Type:         string(m.Type),
		Username:     m.Username,
		Message:      m.Text,
		Timestamp:    formatTime(m.CreatedAt),
		Room:         m.Room,
		ConnectionID: m.ConnectionID,
	}
}

func toProtoPrivate(pm *core.PrivateMessage) proto.PrivateMessage {
	if pm == nil {
		return proto.PrivateMessage{Type: "private"}
	}
	return proto.PrivateMessage{
		Type:             "private",
		FromUsername:     pm.FromUsername,
		ToUsername:       pm.ToUsername,
		Message:          pm.Text,
		Timestamp:        formatTime(pm.CreatedAt),
		FromConnectionID: pm.FromConnectionID,
		ToConnectionID:   pm.ToConnectionID,
	}
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}
