package server

import (
	"context"
	"encoding/json"
	"net/http"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/janpfeifer/GoMemory/internal/config"
	"github.com/janpfeifer/GoMemory/internal/game"
	"k8s.io/klog/v2"
)

// ServerState holds the tables of all connected players.
type ServerState struct {
	// Address the server is listening to, set by Run once listening.
	Address string

	cfg     *config.Config
	catalog *game.Catalog
	Metrics *Metrics

	mu     sync.RWMutex
	Tables map[string]*Table
}

// NewServerState creates the state of a server configured by cfg.
func NewServerState(cfg *config.Config) (*ServerState, error) {
	catalog, err := cfg.Catalog()
	if err != nil {
		return nil, err
	}
	return &ServerState{
		cfg:     cfg,
		catalog: catalog,
		Metrics: NewMetrics(),
		Tables:  make(map[string]*Table),
	}, nil
}

// HandleWS upgrades the connection and plays one session over it until the
// client disconnects.
func (s *ServerState) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		klog.Errorf("Failed to accept websocket: %v", err)
		return
	}
	defer conn.CloseNow()

	table := newTable(uuid.NewString(), conn, s.catalog, s.cfg.Game.RevealDelay, s.cfg.Game.TickInterval, s.Metrics)
	s.addTable(table)
	defer s.removeTable(table.ID)
	klog.V(1).Infof("Table %s: player connected from %s", table.ID, r.RemoteAddr)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	go table.readLoop(ctx, cancel)
	if err := table.run(ctx); err != nil {
		klog.V(1).Infof("Table %s: closing: %v", table.ID, err)
		return
	}
	conn.Close(websocket.StatusNormalClosure, "")
}

func (s *ServerState) addTable(t *Table) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Tables[t.ID] = t
	s.Metrics.tables.Set(float64(len(s.Tables)))
}

func (s *ServerState) removeTable(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.Tables, id)
	s.Metrics.tables.Set(float64(len(s.Tables)))
	klog.V(1).Infof("Table %s: removed", id)
}

// TableInfo is the summary of a table listed by HandleTables.
type TableInfo struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Playing   bool      `json:"playing"`
	game.SessionState
}

// HandleTables lists the connected tables as JSON, sorted by ID.
func (s *ServerState) HandleTables(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	tables := make([]*Table, 0, len(s.Tables))
	for _, t := range s.Tables {
		tables = append(tables, t)
	}
	s.mu.RUnlock()
	slices.SortFunc(tables, func(a, b *Table) int { return strings.Compare(a.ID, b.ID) })

	ctx, cancel := context.WithTimeout(r.Context(), writeTimeout)
	defer cancel()
	infos := make([]TableInfo, 0, len(tables))
	for _, t := range tables {
		info := TableInfo{ID: t.ID, CreatedAt: t.CreatedAt}
		err := t.inspect(ctx, func(session *game.Session) {
			info.Playing = session.Playing()
			info.SessionState = session.State()
		})
		if err != nil {
			// Table closed meanwhile.
			continue
		}
		infos = append(infos, info)
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(infos); err != nil {
		klog.Errorf("Failed to encode tables: %v", err)
	}
}
