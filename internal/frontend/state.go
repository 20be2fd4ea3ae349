package frontend

import (
	"context"
	"fmt"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/janpfeifer/GoMemory/internal/game"
	"github.com/maxence-charriere/go-app/v10/pkg/app"
	"k8s.io/klog/v2"
)

// Sound cues.
const (
	MusicURL = "https://actions.google.com/sounds/v1/ambiences/fairy_forest.ogg"
	HitURL   = "https://actions.google.com/sounds/v1/cartoon/clang_and_wobble.ogg"
	MissURL  = "https://actions.google.com/sounds/v1/cartoon/boing.ogg"
)

// GlobalClientState manages the connection and the last session snapshot received.
type GlobalClientState struct {
	Conn     *websocket.Conn
	Snapshot game.Snapshot
	Error    string

	// Difficulty selected in the menu.
	Difficulty game.Difficulty

	// PhaseMessage is shown when a phase is complete, until dismissed.
	PhaseMessage string

	// Music state
	SoundEnabled bool
	Music        app.Value
	musicStop    chan struct{}

	// Listeners for state updates
	Listeners map[string]func()
}

var State *GlobalClientState

func InitState() {
	if State == nil {
		klog.V(1).Infof("InitState: creating new state (was nil)")
		State = &GlobalClientState{
			Difficulty:   game.Easy,
			SoundEnabled: true,
			Listeners:    make(map[string]func()),
		}
	} else {
		klog.V(1).Infof("InitState: state already exists")
	}
}

func (s *GlobalClientState) ToggleSound() {
	s.SoundEnabled = !s.SoundEnabled
	klog.Infof("ToggleSound: SoundEnabled is now %v", s.SoundEnabled)
	s.send(game.MsgTypeSound, game.SoundMessage{Enabled: s.SoundEnabled})
	s.SyncMusic()
	s.Notify()
}

// PlaySound plays a sound effect, if sound is enabled.
func (s *GlobalClientState) PlaySound(url string) {
	if app.IsServer || !s.SoundEnabled {
		return
	}

	// Create a new Audio element for the sound effect
	audio := app.Window().Get("document").Call("createElement", "audio")
	audio.Set("src", url)

	// Play the sound (fire and forget)
	promise := audio.Call("play")
	if promise.Truthy() {
		promise.Call("catch", app.FuncOf(func(this app.Value, args []app.Value) any {
			klog.Errorf("PlaySound: Failed to play %s: %v", url, args[0])
			return nil
		}))
	}
}

// SyncMusic starts or stops the background music according to SoundEnabled.
func (s *GlobalClientState) SyncMusic() {
	if app.IsServer {
		return
	}

	if !s.SoundEnabled {
		if s.musicStop != nil {
			klog.Infof("SyncMusic: Stopping music loop (SoundEnabled=false)")
			close(s.musicStop)
			s.musicStop = nil
			if s.Music != nil && s.Music.Truthy() {
				s.Music.Call("pause")
				s.Music.Call("remove")
				s.Music = nil
			}
		}
		return
	}

	if s.musicStop == nil {
		s.musicStop = make(chan struct{})
		go s.musicLoop(s.musicStop)
	}
}

// musicLoop keeps the background music playing, retrying when the browser
// blocks autoplay until the user interacts with the page.
func (s *GlobalClientState) musicLoop(stop chan struct{}) {
	klog.Infof("musicLoop: Started")
	for {
		if s.Music == nil || !s.Music.Truthy() {
			s.Music = app.Window().Get("document").Call("createElement", "audio")
			s.Music.Get("style").Set("display", "none")
			s.Music.Set("loop", true)
			app.Window().Get("document").Get("body").Call("appendChild", s.Music)
			s.Music.Set("src", MusicURL)
		}

		started := make(chan bool, 1)
		promise := s.Music.Call("play")
		if promise.Truthy() {
			var onSuccess, onFailure app.Func
			onSuccess = app.FuncOf(func(this app.Value, args []app.Value) any {
				s.Music.Set("volume", 0.1)
				started <- true
				onSuccess.Release()
				onFailure.Release()
				return nil
			})
			onFailure = app.FuncOf(func(this app.Value, args []app.Value) any {
				klog.Errorf("musicLoop: Play failed (likely autoplay block): %v", args[0])
				started <- false
				onSuccess.Release()
				onFailure.Release()
				return nil
			})
			promise.Call("then", onSuccess)
			promise.Call("catch", onFailure)
		} else {
			started <- true
		}

		var ok bool
		select {
		case <-stop:
			return
		case ok = <-started:
		case <-time.After(5 * time.Second):
			klog.Warning("musicLoop: Play promise timed out")
		}
		if ok {
			// The audio element loops by itself.
			<-stop
			return
		}

		klog.Infof("musicLoop: Retrying in 5 seconds...")
		select {
		case <-stop:
			return
		case <-time.After(5 * time.Second):
		}
	}
}

func (s *GlobalClientState) Notify() {
	klog.V(2).Infof("GlobalClientState: Notifying %d listeners", len(s.Listeners))
	for _, l := range s.Listeners {
		if l != nil {
			l()
		}
	}
}

// ConnectWS connects to the server, which immediately sends the session snapshot.
func (s *GlobalClientState) ConnectWS() error {
	if s.Conn != nil {
		return nil
	}

	scheme := "ws"
	if app.Window().URL().Scheme == "https" {
		scheme = "wss"
	}
	wsURL := fmt.Sprintf("%s://%s/ws", scheme, app.Window().URL().Host)
	klog.Infof("ConnectWS: Connecting to %s", wsURL)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		klog.Errorf("ConnectWS: Dial failed: %v", err)
		return fmt.Errorf("dial failed: %w", err)
	}
	s.Conn = conn

	// The server starts with sound enabled.
	if !s.SoundEnabled {
		s.send(game.MsgTypeSound, game.SoundMessage{Enabled: false})
	}
	go s.readLoop(conn)
	return nil
}

func (s *GlobalClientState) readLoop(conn *websocket.Conn) {
	ctx := context.Background()
	for {
		var msg game.WsMessage
		err := wsjson.Read(ctx, conn, &msg)
		if err != nil {
			klog.Errorf("readLoop: WS read error: %v", err)
			break
		}
		s.handleMessage(msg)
	}
	if s.Conn == conn {
		s.Conn = nil
		s.Error = "Connection to the server lost"
		s.Notify()
	}
}

func (s *GlobalClientState) handleMessage(msg game.WsMessage) {
	p, err := msg.Parse()
	if err != nil {
		klog.Errorf("handleMessage: Failed to parse %s message: %v", msg.Type, err)
		return
	}

	switch m := p.(type) {
	case *game.StateMessage:
		s.Snapshot = m.Snapshot
		s.Notify()

	case *game.EventMessage:
		payload, err := m.DecodePayload()
		if err != nil {
			klog.Errorf("handleMessage: %v", err)
			return
		}
		s.handleEvent(m.Kind, payload)

	case *game.ErrorMessage:
		s.Error = m.Message
		s.Notify()

	default:
		klog.Warningf("handleMessage: unexpected message type %s", msg.Type)
	}
}

func (s *GlobalClientState) handleEvent(kind game.EventKind, payload any) {
	switch kind {
	case game.EventMatchFound:
		s.PlaySound(HitURL)
	case game.EventMatchFailed:
		s.PlaySound(MissURL)
	case game.EventPhaseComplete:
		p := payload.(*game.PhaseCompletePayload)
		s.PhaseMessage = fmt.Sprintf("Congratulations! Phase %d complete! Moves: %d. Time: %ds. Score: %d.",
			p.Phase, p.Moves, p.ElapsedSeconds, p.Score)
		s.Notify()
	case game.EventGameStopped:
		s.PhaseMessage = ""
		s.Notify()
	}
}

// send writes a message to the server, if connected.
func (s *GlobalClientState) send(msgType game.MessageType, payload any) {
	if s.Conn == nil {
		return
	}
	msg, err := game.NewWsMessage(msgType, payload)
	if err != nil {
		klog.Errorf("send: Failed to create %s message: %v", msgType, err)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*2)
	defer cancel()
	if err := wsjson.Write(ctx, s.Conn, msg); err != nil {
		klog.Errorf("send: Failed to send %s message: %v", msgType, err)
	}
}

// SendStart starts a new game with the selected difficulty.
func (s *GlobalClientState) SendStart() {
	s.Error = ""
	s.PhaseMessage = ""
	s.send(game.MsgTypeStart, game.StartMessage{Difficulty: string(s.Difficulty)})
}

// SendFlip flips the card at position.
func (s *GlobalClientState) SendFlip(position int) {
	s.send(game.MsgTypeFlip, game.FlipMessage{Position: position})
}

// SendMenu abandons the current game.
func (s *GlobalClientState) SendMenu() {
	s.send(game.MsgTypeMenu, nil)
}
