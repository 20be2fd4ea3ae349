package frontend

import (
	"github.com/maxence-charriere/go-app/v10/pkg/app"
)

type TopBar struct {
	app.Compo
}

func (t *TopBar) onToggleSound(ctx app.Context, e app.Event) {
	e.PreventDefault()
	State.ToggleSound()
}

func (t *TopBar) onBannerClick(ctx app.Context, e app.Event) {
	e.PreventDefault()
	if State.Snapshot.Playing {
		State.SendMenu()
	}
	ctx.Navigate("/")
}

func (t *TopBar) Render() app.UI {
	soundIcon := "🔊"
	if !State.SoundEnabled {
		soundIcon = "🔇"
	}

	return app.Nav().Body(
		app.Ul().Body(
			app.Li().Body(
				app.A().
					Href("/").
					OnClick(t.onBannerClick).
					Style("text-decoration", "none").
					Body(app.Strong().Text("GoMemory")),
			),
		),
		app.Ul().Body(
			app.Li().Body(
				app.A().
					Href("#").
					OnClick(t.onToggleSound).
					Style("text-decoration", "none").
					Body(
						app.Span().
							Class("sound-icon").
							Style("font-family", "system-ui").
							Text(soundIcon),
					),
			),
		),
	)
}
