package frontend

import (
	"fmt"

	"github.com/janpfeifer/GoMemory/internal/game"
	"github.com/maxence-charriere/go-app/v10/pkg/app"
	"k8s.io/klog/v2"
)

var difficultyLabels = map[game.Difficulty]string{
	game.Easy:   "Easy",
	game.Medium: "Medium",
	game.Hard:   "Hard",
}

// connect dials the server in the background, if not yet connected.
func connect(ctx app.Context) {
	if app.IsServer || State.Conn != nil {
		return
	}
	ctx.Async(func() {
		err := State.ConnectWS()
		ctx.Dispatch(func(ctx app.Context) {
			if err != nil {
				State.Error = fmt.Sprintf("Failed to connect to the server: %v", err)
			}
		})
	})
}

// Menu is the landing page: difficulty selection and game start.
type Menu struct {
	app.Compo
}

func (m *Menu) OnMount(ctx app.Context) {
	klog.V(1).Infof("Menu: OnMount called")
	State.Listeners["menu"] = func() {
		ctx.Dispatch(func(ctx app.Context) {})
	}
	connect(ctx)
	State.SyncMusic()
}

func (m *Menu) OnDismount() {
	delete(State.Listeners, "menu")
}

func (m *Menu) OnAppUpdate(ctx app.Context) {
	klog.Infof("Menu component: App update available, reloading...")
	ctx.Reload()
}

func (m *Menu) onDifficultyChange(ctx app.Context, e app.Event) {
	difficulty, err := game.ParseDifficulty(ctx.JSSrc().Get("value").String())
	if err != nil {
		klog.Errorf("Menu: %v", err)
		return
	}
	State.Difficulty = difficulty
}

func (m *Menu) onStart(ctx app.Context, e app.Event) {
	e.PreventDefault()
	State.SendStart()
	ctx.Navigate("/game")
}

func (m *Menu) Render() app.UI {
	options := make([]app.UI, 0, len(game.Difficulties))
	for _, difficulty := range game.Difficulties {
		options = append(options, app.Option().
			Value(string(difficulty)).
			Selected(difficulty == State.Difficulty).
			Text(difficultyLabels[difficulty]))
	}

	body := []app.UI{
		app.Header().Body(
			app.H2().Text("Memory Game"),
		),
		app.P().Text("Find all the pairs. Each match is worth 10 points, each miss costs 2."),
		app.Form().OnSubmit(m.onStart).Body(
			app.Label().For("difficulty").Text("Difficulty"),
			app.Select().
				ID("difficulty").
				Name("difficulty").
				OnChange(m.onDifficultyChange).
				Body(options...),
			app.Button().Type("submit").Disabled(State.Conn == nil).Text("Start Game"),
		),
	}
	if snap := State.Snapshot; snap.Phase > 0 && !snap.Playing {
		body = append(body, app.P().Text(fmt.Sprintf("Last game: phase %d, score %d.", snap.Phase, snap.Score)))
	}
	if State.Error != "" {
		body = append(body, app.P().Class("error").Style("color", "var(--pico-del-color)").Text(State.Error))
	}

	return app.Main().Class("container").Body(
		&TopBar{},
		app.Article().Body(body...),
	)
}
