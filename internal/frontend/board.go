package frontend

import (
	"fmt"

	"github.com/janpfeifer/GoMemory/internal/game"
	"github.com/maxence-charriere/go-app/v10/pkg/app"
	"k8s.io/klog/v2"
)

// Board is the game page: the cards of the current phase and its counters.
type Board struct {
	app.Compo
}

func (b *Board) OnMount(ctx app.Context) {
	klog.V(1).Infof("Board: OnMount called")
	State.Listeners["board"] = func() {
		ctx.Dispatch(func(ctx app.Context) {})
	}
	connect(ctx)
	State.SyncMusic()
}

func (b *Board) OnDismount() {
	delete(State.Listeners, "board")
}

func (b *Board) OnAppUpdate(ctx app.Context) {
	klog.Infof("Board component: App update available, not reloading not to interrupt the game...")
}

func (b *Board) onMenu(ctx app.Context, e app.Event) {
	e.PreventDefault()
	State.SendMenu()
	ctx.Navigate("/")
}

func (b *Board) onDismissMessage(ctx app.Context, e app.Event) {
	e.PreventDefault()
	State.PhaseMessage = ""
}

func (b *Board) renderCard(position int, view game.CardView) app.UI {
	card := app.Div().
		Class("memory-card").
		Style("aspect-ratio", "3 / 4").
		Style("display", "flex").
		Style("align-items", "center").
		Style("justify-content", "center").
		Style("border-radius", "8px").
		Style("font-size", "2.5rem")

	switch {
	case view.Card == nil:
		return card.
			Style("cursor", "pointer").
			Style("background", "var(--pico-primary-background)").
			Style("color", "var(--pico-primary-inverse)").
			OnClick(func(ctx app.Context, e app.Event) {
				State.SendFlip(position)
			}).
			Text("?")
	case view.Matched:
		card = card.Style("opacity", "0.6")
	}
	return card.
		Style("background", "var(--pico-card-background-color)").
		Body(
			app.Img().
				Src(view.Card.Image).
				Alt(view.Card.Name).
				Title(view.Card.Name).
				Style("max-width", "90%").
				Style("max-height", "90%"),
		)
}

func (b *Board) Render() app.UI {
	snap := State.Snapshot
	if !snap.Playing {
		return app.Main().Class("container").Body(
			&TopBar{},
			app.Article().Body(
				app.P().Text("No game in progress."),
				app.A().Href("/").Text("Back to the menu"),
			),
		)
	}

	cards := make([]app.UI, 0, len(snap.Cards))
	for position, view := range snap.Cards {
		cards = append(cards, b.renderCard(position, view))
	}

	body := []app.UI{
		app.Header().Body(
			app.H3().Text(fmt.Sprintf("Phase %d - Difficulty: %s", snap.Phase, difficultyLabels[snap.Difficulty])),
			app.P().Text(fmt.Sprintf("Score: %d | Moves: %d | Time: %ds", snap.Score, snap.Moves, snap.ElapsedSeconds)),
		),
	}
	if State.PhaseMessage != "" {
		body = append(body, app.Div().Class("phase-complete").Body(
			app.P().Text(State.PhaseMessage),
			app.Button().Class("secondary").OnClick(b.onDismissMessage).Text("Continue"),
		))
	}
	if State.Error != "" {
		body = append(body, app.P().Style("color", "var(--pico-del-color)").Text(State.Error))
	}
	body = append(body,
		app.Div().
			Class("board").
			Style("display", "grid").
			Style("grid-template-columns", "repeat(auto-fill, minmax(100px, 1fr))").
			Style("gap", "0.75rem").
			Body(cards...),
		app.Footer().Body(
			app.Button().Class("outline").OnClick(b.onMenu).Text("Back to Menu"),
		),
	)

	return app.Main().Class("container").Body(
		&TopBar{},
		app.Article().Body(body...),
	)
}
