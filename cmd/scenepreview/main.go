// Scene preview tool - interactive simulation view with sliders.
//
// Usage: go run ./cmd/scenepreview
package main

import (
	"fmt"
	"log/slog"
	"os"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/pivot/sim"
	"github.com/pthm-cable/pivot/view"
)

const (
	windowWidth  = 1000
	windowHeight = 720
	previewSize  = 600
	panelWidth   = windowWidth - previewSize - 30
)

var scenes = []sim.Scene{sim.SceneBox, sim.SceneDroplet, sim.SceneFalling, sim.SceneSlope, sim.SceneBigBall}

// PreviewParams holds the slider-controlled build parameters
type PreviewParams struct {
	Scene          int
	Resolution     int
	Gravity        float32
	SurfaceTension bool
	VolumeControl  bool
}

func (p PreviewParams) options() sim.BuildOptions {
	opts := sim.DefaultOptions()
	opts.Scene = scenes[p.Scene]
	opts.Resolution = p.Resolution
	opts.Physics.Gravity = float64(p.Gravity)
	opts.Physics.GravityEnabled = p.Gravity > 0
	opts.Physics.SurfaceTensionEnabled = p.SurfaceTension
	opts.Volume.Enabled = p.VolumeControl
	return opts
}

type preview struct {
	sim    *sim.Simulation
	driver *sim.Driver
	canvas *view.Canvas
	err    error
}

func (pv *preview) rebuild(p PreviewParams) {
	if pv.canvas != nil {
		pv.canvas.Unload()
		pv.canvas = nil
	}
	pv.sim, pv.err = sim.Build(p.options())
	if pv.err != nil {
		slog.Error("build failed", "error", pv.err)
		return
	}
	pv.canvas = view.NewCanvas(pv.sim, max(1, 256/p.Resolution))
	pv.canvas.Update(pv.sim)
}

func (pv *preview) step() {
	if pv.sim == nil || pv.err != nil {
		return
	}
	if _, err := pv.driver.AdvanceFrame(pv.sim); err != nil {
		slog.Error("frame failed", "error", err)
		pv.err = err
		return
	}
	pv.canvas.Update(pv.sim)
}

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})))

	rl.InitWindow(windowWidth, windowHeight, "Scene Preview")
	defer rl.CloseWindow()
	rl.SetTargetFPS(30)

	params := PreviewParams{
		Scene:          0,
		Resolution:     64,
		Gravity:        9.8,
		SurfaceTension: true,
		VolumeControl:  true,
	}

	driver, err := sim.NewDriver(30, 1, nil)
	if err != nil {
		slog.Error("driver", "error", err)
		os.Exit(1)
	}
	pv := &preview{driver: driver}
	pv.rebuild(params)
	defer func() {
		if pv.canvas != nil {
			pv.canvas.Unload()
		}
	}()

	running := false
	needsRebuild := false

	for !rl.WindowShouldClose() {
		if needsRebuild {
			pv.rebuild(params)
			needsRebuild = false
		}
		if running {
			pv.step()
		}

		rl.BeginDrawing()
		rl.ClearBackground(rl.RayWhite)

		dst := rl.Rectangle{X: 10, Y: 10, Width: previewSize, Height: previewSize}
		if pv.canvas != nil {
			pv.canvas.Draw(pv.sim, dst)
		} else {
			rl.DrawRectangleLinesEx(dst, 1, rl.DarkGray)
		}

		// Draw stats
		statsY := int32(previewSize + 25)
		if pv.err != nil {
			rl.DrawText(pv.err.Error(), 15, statsY, 16, rl.Maroon)
		} else if pv.sim != nil {
			cur, init := pv.sim.Volume()
			rl.DrawText(fmt.Sprintf("Frame: %d  Time: %.3fs", pv.sim.Frame(), pv.sim.Time()), 15, statsY, 16, rl.DarkGray)
			rl.DrawText(fmt.Sprintf("Volume: %.4g m^2  Drift: %+.3f%%", cur, 100*(cur-init)/init), 15, statsY+20, 16, rl.DarkGray)
			rl.DrawText(fmt.Sprintf("Segments: %d  PCG: %d its", pv.sim.Mesh().NumSegments(), pv.sim.LastSolve().Iterations), 15, statsY+40, 16, rl.DarkGray)
		}

		// Control panel
		panelX := float32(previewSize + 20)
		panelY := float32(10)

		rl.DrawText("Scene Parameters", int32(panelX), int32(panelY), 20, rl.DarkGray)
		panelY += 35

		// Scene slider
		rl.DrawText("Scene", int32(panelX), int32(panelY), 14, rl.Gray)
		panelY += 18
		newScene := gui.SliderBar(
			rl.Rectangle{X: panelX, Y: panelY, Width: float32(panelWidth - 80), Height: 20},
			"", "",
			float32(params.Scene), 0, float32(len(scenes)-1),
		)
		rl.DrawText(scenes[params.Scene].String(), int32(panelX+float32(panelWidth-70)), int32(panelY+2), 16, rl.DarkGray)
		if int(newScene+.5) != params.Scene {
			params.Scene = int(newScene + .5)
			needsRebuild = true
		}
		panelY += 35

		// Resolution slider
		rl.DrawText("Resolution (cells per axis)", int32(panelX), int32(panelY), 14, rl.Gray)
		panelY += 18
		newRes := gui.SliderBar(
			rl.Rectangle{X: panelX, Y: panelY, Width: float32(panelWidth - 80), Height: 20},
			"16", "128",
			float32(params.Resolution), 16, 128,
		)
		rl.DrawText(fmt.Sprintf("%d", params.Resolution), int32(panelX+float32(panelWidth-70)), int32(panelY+2), 16, rl.DarkGray)
		if res := int(newRes) &^ 7; res != params.Resolution && res >= 16 {
			params.Resolution = res
			needsRebuild = true
		}
		panelY += 35

		// Gravity slider
		rl.DrawText("Gravity (m/s^2)", int32(panelX), int32(panelY), 14, rl.Gray)
		panelY += 18
		newGravity := gui.SliderBar(
			rl.Rectangle{X: panelX, Y: panelY, Width: float32(panelWidth - 80), Height: 20},
			"0", "20",
			params.Gravity, 0, 20,
		)
		rl.DrawText(fmt.Sprintf("%.1f", params.Gravity), int32(panelX+float32(panelWidth-70)), int32(panelY+2), 16, rl.DarkGray)
		if newGravity != params.Gravity {
			params.Gravity = newGravity
			needsRebuild = true
		}
		panelY += 35

		// Toggles
		newTension := gui.CheckBox(rl.Rectangle{X: panelX, Y: panelY, Width: 20, Height: 20}, "Surface tension", params.SurfaceTension)
		if newTension != params.SurfaceTension {
			params.SurfaceTension = newTension
			needsRebuild = true
		}
		panelY += 30
		newVolume := gui.CheckBox(rl.Rectangle{X: panelX, Y: panelY, Width: 20, Height: 20}, "Volume control", params.VolumeControl)
		if newVolume != params.VolumeControl {
			params.VolumeControl = newVolume
			needsRebuild = true
		}
		panelY += 45

		// Buttons
		if gui.Button(rl.Rectangle{X: panelX, Y: panelY, Width: 120, Height: 30}, toggleText(running, "Stop", "Run")) {
			running = !running
		}
		if gui.Button(rl.Rectangle{X: panelX + 130, Y: panelY, Width: 120, Height: 30}, "Step") && !running {
			pv.step()
		}
		panelY += 45

		if gui.Button(rl.Rectangle{X: panelX, Y: panelY, Width: 120, Height: 30}, "Reset") {
			needsRebuild = true
		}
		panelY += 55

		// Output YAML
		rl.DrawText("YAML Config:", int32(panelX), int32(panelY), 16, rl.DarkGray)
		panelY += 25
		yaml := configYAML(params)
		for _, line := range yaml {
			rl.DrawText(line, int32(panelX), int32(panelY), 14, rl.Gray)
			panelY += 16
		}

		rl.DrawText("Press C to copy YAML to clipboard", int32(panelX), int32(windowHeight-30), 12, rl.LightGray)
		if rl.IsKeyPressed(rl.KeyC) {
			var text string
			for _, line := range yaml {
				text += line + "\n"
			}
			rl.SetClipboardText(text)
		}

		rl.EndDrawing()
	}
}

func configYAML(p PreviewParams) []string {
	return []string{
		"grid:",
		fmt.Sprintf("  resolution: %d", p.Resolution),
		"scene:",
		fmt.Sprintf("  name: %s", scenes[p.Scene]),
		"physics:",
		fmt.Sprintf("  gravity: %.1f", p.Gravity),
		fmt.Sprintf("  gravity_enabled: %t", p.Gravity > 0),
		fmt.Sprintf("  surface_tension_enabled: %t", p.SurfaceTension),
		"volume:",
		fmt.Sprintf("  enabled: %t", p.VolumeControl),
	}
}

func toggleText(cond bool, ifTrue, ifFalse string) string {
	if cond {
		return ifTrue
	}
	return ifFalse
}
