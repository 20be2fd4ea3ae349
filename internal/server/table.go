package server

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/janpfeifer/GoMemory/internal/game"
	"k8s.io/klog/v2"
)

const writeTimeout = 2 * time.Second

// Table is the server side of one connected player: a game session plus the
// websocket it reports to.
//
// The session is only ever touched by the goroutine executing run: client
// messages, reveal callbacks and clock ticks are all posted to actions.
type Table struct {
	ID        string
	CreatedAt time.Time

	conn         *websocket.Conn
	session      *game.Session
	metrics      *Metrics
	tickInterval time.Duration

	actions chan func()
	done    chan struct{}

	// Pending output, flushed after each action. Only used by run.
	events []game.Event
	errMsgs []string
}

func newTable(id string, conn *websocket.Conn, catalog *game.Catalog, revealDelay, tickInterval time.Duration, metrics *Metrics) *Table {
	t := &Table{
		ID:           id,
		CreatedAt:    time.Now(),
		conn:         conn,
		metrics:      metrics,
		tickInterval: tickInterval,
		actions:      make(chan func(), 16),
		done:         make(chan struct{}),
	}
	t.session = game.NewSession(game.SessionOptions{
		Catalog:     catalog,
		Scheduler:   t,
		RevealDelay: revealDelay,
		Observer:    t,
	})
	return t
}

// AfterFunc implements game.Scheduler: fn is executed by the table loop.
func (t *Table) AfterFunc(delay time.Duration, fn func()) {
	time.AfterFunc(delay, func() {
		select {
		case t.actions <- fn:
		case <-t.done:
		}
	})
}

// HandleEvent implements game.Listener.
func (t *Table) HandleEvent(ev game.Event) {
	t.metrics.observe(ev, t.session.State().Difficulty)
	t.events = append(t.events, ev)
}

func (t *Table) reportError(err error) {
	klog.V(1).Infof("Table %s: %v", t.ID, err)
	t.errMsgs = append(t.errMsgs, err.Error())
}

// run executes actions and clock ticks until ctx is done or the connection fails.
func (t *Table) run(ctx context.Context) error {
	defer close(t.done)
	ticker := time.NewTicker(t.tickInterval)
	defer ticker.Stop()

	if err := t.flush(ctx); err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case action := <-t.actions:
			action()
		case <-ticker.C:
			if !t.session.Playing() {
				continue
			}
			t.session.Tick()
		}
		if err := t.flush(ctx); err != nil {
			return err
		}
	}
}

// readLoop converts client messages into actions. It cancels the table when
// the connection is closed.
func (t *Table) readLoop(ctx context.Context, cancel context.CancelFunc) {
	defer cancel()
	for {
		var msg game.WsMessage
		if err := wsjson.Read(ctx, t.conn, &msg); err != nil {
			if websocket.CloseStatus(err) == -1 && ctx.Err() == nil {
				klog.V(1).Infof("Table %s: read error: %v", t.ID, err)
			}
			return
		}
		action := t.actionFor(msg)
		select {
		case t.actions <- action:
		case <-ctx.Done():
			return
		}
	}
}

// actionFor parses a client message into the action that applies it.
func (t *Table) actionFor(msg game.WsMessage) func() {
	payload, err := msg.Parse()
	if err != nil {
		return func() { t.reportError(err) }
	}
	switch p := payload.(type) {
	case *game.StartMessage:
		return func() {
			difficulty, err := game.ParseDifficulty(p.Difficulty)
			if err == nil {
				err = t.session.StartGame(difficulty)
			}
			if err != nil {
				t.reportError(err)
				return
			}
			t.metrics.gamesStarted.WithLabelValues(string(difficulty)).Inc()
		}
	case *game.FlipMessage:
		return func() {
			if err := t.session.Flip(p.Position); err != nil {
				t.reportError(err)
			}
		}
	case *game.MenuMessage:
		return t.session.ReturnToMenu
	case *game.SoundMessage:
		return func() { t.session.SetSound(p.Enabled) }
	default:
		return func() { t.reportError(errors.New("unexpected message type " + string(msg.Type))) }
	}
}

// flush sends the pending errors and events, followed by the session snapshot.
func (t *Table) flush(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	for _, text := range t.errMsgs {
		msg, err := game.NewWsMessage(game.MsgTypeError, game.ErrorMessage{Message: text})
		if err != nil {
			return err
		}
		if err := wsjson.Write(ctx, t.conn, msg); err != nil {
			return err
		}
	}
	t.errMsgs = t.errMsgs[:0]

	for _, ev := range t.events {
		msg, err := game.NewEventMessage(ev)
		if err != nil {
			return err
		}
		if err := wsjson.Write(ctx, t.conn, msg); err != nil {
			return err
		}
	}
	t.events = t.events[:0]

	msg, err := game.NewWsMessage(game.MsgTypeState, game.StateMessage{Snapshot: t.session.Snapshot()})
	if err != nil {
		return err
	}
	return wsjson.Write(ctx, t.conn, msg)
}

// inspect runs fn on the table loop and waits for it to finish.
func (t *Table) inspect(ctx context.Context, fn func(s *game.Session)) error {
	finished := make(chan struct{})
	select {
	case t.actions <- func() { fn(t.session); close(finished) }:
	case <-t.done:
		return net.ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-finished:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
