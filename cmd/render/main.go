// Command render exports a render manifest from a plan document without
// the API or worker: feed it a plan JSON file and it prints the manifest
// (or an NDJSON frame stream) for a headless rasterizer.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/launchreel/launchreel/internal/compose"
	"github.com/launchreel/launchreel/internal/plan"
	"github.com/launchreel/launchreel/internal/render"
	"github.com/launchreel/launchreel/internal/templates"
)

func main() {
	var (
		planPath    = flag.String("plan", "", "path to plan JSON (- for stdin)")
		outPath     = flag.String("out", "-", "output path (- for stdout)")
		fps         = flag.Int("fps", 30, "frames per second")
		width       = flag.Int("width", compose.DefaultWidth, "frame width in pixels")
		height      = flag.Int("height", compose.DefaultHeight, "frame height in pixels")
		totalFrames = flag.Int("total-frames", 0, "pin runtime to a fixed frame count (0 = from scene durations)")
		templateDir = flag.String("templates", "", "template directory; resolves a template plan's pinned runtime")
		stream      = flag.Bool("stream", false, "emit one frame state per line instead of the full manifest")
	)
	flag.Parse()

	if *planPath == "" {
		fmt.Fprintln(os.Stderr, "usage: render -plan plan.json [-out manifest.json] [-fps 30] [-stream]")
		os.Exit(2)
	}

	p, err := readPlan(*planPath)
	if err != nil {
		log.Fatalf("read plan: %v", err)
	}

	out, err := openOut(*outPath)
	if err != nil {
		log.Fatalf("open output: %v", err)
	}
	defer out.Close()

	opts := compose.Options{
		FPS:         *fps,
		Width:       *width,
		Height:      *height,
		TotalFrames: *totalFrames,
	}

	// A template plan carries a pinned runtime; resolve it from the
	// template library unless -total-frames pinned it explicitly.
	if opts.TotalFrames == 0 && p.TemplateID != "" && *templateDir != "" {
		lib, err := templates.Load(*templateDir)
		if err != nil {
			log.Fatalf("load templates: %v", err)
		}
		tmpl, ok := lib.Get(p.TemplateID)
		if !ok {
			log.Fatalf("plan references unknown template %q", p.TemplateID)
		}
		opts.TotalFrames = tmpl.TotalFrames(opts.FPS)
	}

	if *stream {
		if err := render.StreamFrames(out, p, opts); err != nil {
			log.Fatalf("stream frames: %v", err)
		}
		return
	}

	manifest, err := render.Export(p, opts)
	if err != nil {
		log.Fatalf("export: %v", err)
	}
	if err := manifest.Write(out); err != nil {
		log.Fatalf("write manifest: %v", err)
	}
}

func readPlan(path string) (*plan.VideoPlan, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, err
	}

	var p plan.VideoPlan
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decode plan: %w", err)
	}
	return &p, nil
}

func openOut(path string) (io.WriteCloser, error) {
	if path == "-" {
		return os.Stdout, nil
	}
	return os.Create(path)
}
