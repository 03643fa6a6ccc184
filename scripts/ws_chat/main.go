package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/gookit/color"

	"github.com/vovakirdan/chatrelay/internal/proto"
)

type frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

func main() {
	if err := run(); err != nil {
		log.Printf("ws_chat: %v", err)
		os.Exit(1)
	}
}

func run() error {
	addr := flag.String("addr", "ws://localhost:3000/ws", "WebSocket address")
	user := flag.String("user", "cli-user", "username")
	room := flag.String("room", "general", "room to join")
	flag.Parse()

	baseCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(baseCtx)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, *addr, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "bye")

	if err := send(ctx, conn, proto.InboundTypeJoin, proto.JoinData{Username: *user, Room: *room}); err != nil {
		return fmt.Errorf("join: %w", err)
	}

	color.Cyan.Printf("Connected to %s as %s in room %s\n", *addr, *user, *room)
	fmt.Println("Type messages and press Enter to send. Commands: /room <name>, /pm <connectionId> <text>, /users, /rooms. Ctrl+C to exit.")

	go func() {
		defer cancel()
		readLoop(ctx, conn)
	}()

	writeLoop(ctx, conn)

	stop()
	cancel()
	_ = conn.Close(websocket.StatusNormalClosure, "bye")
	return nil
}

func send(ctx context.Context, conn *websocket.Conn, typ string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", typ, err)
	}
	return wsjson.Write(ctx, conn, proto.Inbound{Type: typ, Data: payload})
}

func readLoop(ctx context.Context, conn *websocket.Conn) {
	for {
		var f frame
		if err := wsjson.Read(ctx, conn, &f); err != nil {
			// Treat expected shutdowns quietly.
			if errors.Is(err, context.Canceled) {
				return
			}
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				return
			}
			log.Printf("read error: %v", err)
			return
		}
		if err := render(f); err != nil {
			log.Printf("decode %s: %v", f.Event, err)
		}
	}
}

func render(f frame) error {
	switch f.Event {
	case proto.EventConnected:
		var evt proto.Connected
		if err := json.Unmarshal(f.Data, &evt); err != nil {
			return err
		}
		color.Gray.Printf("your connection id is %s\n", evt.ConnectionID)
	case proto.EventMessageHistory:
		var msgs []proto.Message
		if err := json.Unmarshal(f.Data, &msgs); err != nil {
			return err
		}
		for _, m := range msgs {
			fmt.Printf("[%s] %s: %s\n", m.Room, m.Username, m.Message)
		}
	case proto.EventReceivedMessage:
		var m proto.Message
		if err := json.Unmarshal(f.Data, &m); err != nil {
			return err
		}
		fmt.Printf("[%s] %s: %s\n", m.Room, color.Bold.Sprint(m.Username), m.Message)
	case proto.EventUserJoined, proto.EventUserLeft:
		var m proto.Message
		if err := json.Unmarshal(f.Data, &m); err != nil {
			return err
		}
		color.Yellow.Printf("[room %s] %s\n", m.Room, m.Message)
	case proto.EventPrivateMessageReceived:
		var pm proto.PrivateMessage
		if err := json.Unmarshal(f.Data, &pm); err != nil {
			return err
		}
		color.Magenta.Printf("(private) %s [%s]: %s\n", pm.FromUsername, pm.FromConnectionID, pm.Message)
	case proto.EventPrivateMessageSent:
		var pm proto.PrivateMessage
		if err := json.Unmarshal(f.Data, &pm); err != nil {
			return err
		}
		color.Magenta.Printf("(private to %s) %s\n", pm.ToUsername, pm.Message)
	case proto.EventUsersList:
		var users []proto.User
		if err := json.Unmarshal(f.Data, &users); err != nil {
			return err
		}
		names := make([]string, 0, len(users))
		for _, u := range users {
			names = append(names, u.Username+" ("+u.ConnectionID+")")
		}
		color.Gray.Printf("online: %s\n", strings.Join(names, ", "))
	case proto.EventRoomsList:
		var rooms []proto.Room
		if err := json.Unmarshal(f.Data, &rooms); err != nil {
			return err
		}
		for _, r := range rooms {
			color.Gray.Printf("  %s (%d)\n", r.Name, r.UsersCount)
		}
	case proto.EventRoomChanged:
		var evt proto.RoomChanged
		if err := json.Unmarshal(f.Data, &evt); err != nil {
			return err
		}
		color.Cyan.Printf("now in %s with %d users\n", evt.Room, evt.UsersCount)
	case proto.EventError:
		var e proto.Error
		if err := json.Unmarshal(f.Data, &e); err != nil {
			return err
		}
		color.Red.Printf("error (%s): %s\n", e.Code, e.Message)
	case proto.EventUserTyping, proto.EventJoinSuccess:
		// not shown
	default:
		fmt.Printf("event=%s data=%s\n", f.Event, f.Data)
	}
	return nil
}

func writeLoop(ctx context.Context, conn *websocket.Conn) {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			text := strings.TrimSpace(line)
			if text == "" {
				continue
			}

			typ, data := parseLine(text)
			if err := send(ctx, conn, typ, data); err != nil {
				log.Printf("send error: %v", err)
				return
			}
		}
	}
}

func parseLine(text string) (string, any) {
	cmd, rest, _ := strings.Cut(text, " ")
	switch cmd {
	case "/room":
		return proto.InboundTypeChangeRoom, proto.ChangeRoomData{Room: rest}
	case "/pm":
		target, msg, _ := strings.Cut(rest, " ")
		return proto.InboundTypePrivateMessage, proto.PrivateMessageData{Message: msg, TargetConnectionID: target}
	case "/users":
		return proto.InboundTypeGetUsers, nil
	case "/rooms":
		return proto.InboundTypeGetRooms, nil
	default:
		return proto.InboundTypeChatMessage, proto.ChatMessageData{Message: text}
	}
}
