package main

import (
	"flag"
	"os"

	"github.com/janpfeifer/GoMemory/internal/frontend"
	"github.com/maxence-charriere/go-app/v10/pkg/app"
	"k8s.io/klog/v2"
)

func main() {
	// Initialize klog for WASM, forcing logs to stderr (console)
	fs := flag.NewFlagSet("klog", flag.ContinueOnError)
	klog.InitFlags(fs)
	fs.Set("logtostderr", "true")
	klog.SetOutput(os.Stderr)
	klog.Infof("WASM started!")

	// Menu: difficulty selection and game start
	app.Route("/", func() app.Composer { return &frontend.Menu{} })

	// The board of the game in progress
	app.Route("/game", func() app.Composer { return &frontend.Board{} })

	// Initialize the global app state manager
	frontend.InitState()

	// When building for WEB (GOOS=js GOARCH=wasm), app.Run() executes the frontend logic
	app.RunWhenOnBrowser()
}
