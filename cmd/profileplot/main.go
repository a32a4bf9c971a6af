// Package main is a diagnostics tool for inspecting trapezoidal motion
// profiles: it prints the resolved phase decomposition for a maneuver
// and can render the sampled position and velocity curves to a PNG.
package main

import (
	"fmt"
	"image/color"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/urfave/cli/v2"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/robotools/motionprofile/profile"
)

const (
	flagStartPos = "start-pos"
	flagStartVel = "start-vel"
	flagGoalPos  = "goal-pos"
	flagGoalVel  = "goal-vel"
	flagMaxVel   = "max-vel"
	flagMaxAcc   = "max-acc"
	flagMaxDec   = "max-dec"
	flagPNG      = "png"
	flagSampleHz = "sample-hz"
)

var app = &cli.App{
	Name:            "profileplot",
	Usage:           "inspect trapezoidal motion profiles",
	HideHelpCommand: true,
	Flags: []cli.Flag{
		&cli.Float64Flag{Name: flagStartPos, Usage: "start position"},
		&cli.Float64Flag{Name: flagStartVel, Usage: "start velocity"},
		&cli.Float64Flag{Name: flagGoalPos, Usage: "goal position", Required: true},
		&cli.Float64Flag{Name: flagGoalVel, Usage: "goal velocity"},
		&cli.Float64Flag{Name: flagMaxVel, Usage: "velocity limit", Required: true},
		&cli.Float64Flag{Name: flagMaxAcc, Usage: "acceleration limit", Required: true},
		&cli.Float64Flag{Name: flagMaxDec, Usage: "deceleration limit (negative); defaults to -max-acc"},
		&cli.StringFlag{Name: flagPNG, Usage: "write sampled curves to `FILE`"},
		&cli.Float64Flag{Name: flagSampleHz, Value: 100, Usage: "sampling rate for the plot"},
	},
	Action: runAction,
}

func main() {
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runAction(c *cli.Context) error {
	var constraints profile.Constraints
	var err error
	if c.IsSet(flagMaxDec) {
		constraints, err = profile.NewAsymmetricConstraints(
			c.Float64(flagMaxVel), c.Float64(flagMaxAcc), c.Float64(flagMaxDec))
	} else {
		constraints, err = profile.NewConstraints(c.Float64(flagMaxVel), c.Float64(flagMaxAcc))
	}
	if err != nil {
		return err
	}
	start := profile.State{Position: c.Float64(flagStartPos), Velocity: c.Float64(flagStartVel)}
	goal := profile.State{Position: c.Float64(flagGoalPos), Velocity: c.Float64(flagGoalVel)}
	prof, err := profile.NewAsymmetricTrapezoidProfile(start, goal, constraints)
	if err != nil {
		return err
	}

	tw := table.NewWriter()
	tw.SetOutputMirror(c.App.Writer)
	tw.AppendHeader(table.Row{"#", "start (s)", "duration (s)", "acceleration", "start velocity"})
	for i, ph := range prof.Phases() {
		tw.AppendRow(table.Row{
			i + 1,
			fmt.Sprintf("%.4f", ph.StartReference),
			fmt.Sprintf("%.4f", ph.Duration),
			fmt.Sprintf("%.4f", ph.Acceleration),
			fmt.Sprintf("%.4f", ph.StartVelocity),
		})
	}
	tw.AppendFooter(table.Row{"", "total", fmt.Sprintf("%.4f", prof.TotalTime()), "", ""})
	tw.Render()

	if path := c.String(flagPNG); path != "" {
		return writePlot(prof, c.Float64(flagSampleHz), path)
	}
	return nil
}

func writePlot(prof *profile.AsymmetricTrapezoidProfile, sampleHz float64, path string) error {
	p := plot.New()
	p.Title.Text = "motion profile"
	p.X.Label.Text = "time (s)"
	p.Legend.Top = true

	var posXYs, velXYs plotter.XYs
	dt := 1 / sampleHz
	for t := 0.0; t <= prof.TotalTime()+dt/2; t += dt {
		s := prof.Sample(t)
		posXYs = append(posXYs, plotter.XY{X: t, Y: s.Position})
		velXYs = append(velXYs, plotter.XY{X: t, Y: s.Velocity})
	}
	posLine, err := plotter.NewLine(posXYs)
	if err != nil {
		return err
	}
	velLine, err := plotter.NewLine(velXYs)
	if err != nil {
		return err
	}
	velLine.Color = color.RGBA{R: 196, A: 255}
	p.Add(posLine, velLine)
	p.Legend.Add("position", posLine)
	p.Legend.Add("velocity", velLine)
	return p.Save(6*vg.Inch, 4*vg.Inch, path)
}
