package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vancomm/sweeper/internal/session"
)

type wsCommand string

const (
	wsNoop  wsCommand = "g"
	wsOpen  wsCommand = "o"
	wsFlag  wsCommand = "f"
	wsReset wsCommand = "n"
)

var errUnknownCommand = errors.New("unknown command")

// execute runs one command line, e.g. "o 3 4".
func (g GameHandler) execute(ctx context.Context, s *session.Session, line string) error {
	tokens := strings.Fields(line)
	if len(tokens) == 0 {
		return nil
	}
	cmd, args := wsCommand(tokens[0]), tokens[1:]
	switch cmd {
	case wsNoop:
		return nil
	case wsReset:
		s.Reset()
		return nil
	case wsOpen, wsFlag:
		row, col, err := parseRowCol(args)
		if err != nil {
			return err
		}
		move := MoveDTO{Move: Open, Row: row, Col: col}
		if cmd == wsFlag {
			move.Move = Flag
		}
		return g.apply(ctx, s, move)
	default:
		return fmt.Errorf("%w %q", errUnknownCommand, cmd)
	}
}

func (g GameHandler) write(conn *websocket.Conn, v any) error {
	if err := conn.SetWriteDeadline(time.Now().Add(g.ws.WriteTimeout)); err != nil {
		return err
	}
	return conn.WriteJSON(v)
}

// runGameLoop reads newline separated commands from each text frame and
// answers every frame with the resulting session, or with an error object if
// a command failed. Commands after a failing one in the same frame are
// skipped.
func (g GameHandler) runGameLoop(ctx context.Context, conn *websocket.Conn, s *session.Session) error {
	if err := g.write(conn, newSessionDTO(s)); err != nil {
		return err
	}
	for {
		mt, buf, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		if err := g.extendReadDeadline(conn); err != nil {
			return err
		}
		if mt != websocket.TextMessage {
			continue
		}

		var cmdErr error
		for _, line := range strings.Split(strings.TrimSpace(string(buf)), "\n") {
			if cmdErr = g.execute(ctx, s, line); cmdErr != nil {
				break
			}
		}

		var reply any = newSessionDTO(s)
		if cmdErr != nil {
			reply = wrapError(cmdErr)
		}
		if err := g.write(conn, reply); err != nil {
			return fmt.Errorf("unable to write json: %w", err)
		}
	}
}

func (g GameHandler) extendReadDeadline(conn *websocket.Conn) error {
	return conn.SetReadDeadline(time.Now().Add(g.ws.PongWait))
}

// keepAlive pings the client until done is closed. A client that stops
// answering runs into the read deadline and the game loop ends.
func (g GameHandler) keepAlive(conn *websocket.Conn, done <-chan struct{}) {
	ticker := time.NewTicker(g.ws.PingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			deadline := time.Now().Add(g.ws.WriteTimeout)
			if err := conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				return
			}
		}
	}
}

func (g GameHandler) ConnectWS(w http.ResponseWriter, r *http.Request) {
	s, ok := g.lookup(w, r)
	if !ok {
		return
	}

	conn, err := g.ws.Upgrader.Upgrade(w, r, nil) // headers sent here
	if err != nil {
		g.logger.Error("unable to upgrade", slog.Any("error", err))
		return
	}
	defer conn.Close()
	conn.SetReadLimit(g.ws.MaxMessageSize)
	if err := g.extendReadDeadline(conn); err != nil {
		g.logger.Error("unable to set read deadline", slog.Any("error", err))
		return
	}
	conn.SetPongHandler(func(string) error {
		return g.extendReadDeadline(conn)
	})

	done := make(chan struct{})
	defer close(done)
	go g.keepAlive(conn, done)

	g.logger.Debug("established ws connection", slog.String("session", s.ID.String()))

	err = g.runGameLoop(r.Context(), conn, s)
	if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
		return
	}
	g.logger.Warn("error in ws loop", slog.Any("error", err))
}

func parseRowCol(args []string) (row int, col int, err error) {
	if len(args) != 2 {
		err = fmt.Errorf("expected row and col")
		return
	}
	if row, err = strconv.Atoi(args[0]); err != nil {
		err = fmt.Errorf("row must be an int")
		return
	}
	if col, err = strconv.Atoi(args[1]); err != nil {
		err = fmt.Errorf("col must be an int")
		return
	}
	return
}
