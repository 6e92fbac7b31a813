package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"
)

var CLI struct {
	Config   string `help:"Directory holding config.yaml." type:"path" default:"."`
	LogLevel string `help:"Log level." default:"info" enum:"trace,debug,info,warn,error"`

	SeedTemplates SeedTemplatesCmd `cmd:"" help:"Insert the predefined templates that are missing."`
	CreateCoach   CreateCoachCmd   `cmd:"" help:"Create an active coach account."`
	HashPassword  HashPasswordCmd  `cmd:"" help:"Print the bcrypt hash of a password."`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("coachctl"),
		kong.Description("Administration tasks for the coaching API"),
		kong.UsageOnError(),
	)

	env := &Env{ConfigDir: CLI.Config, LogLevel: CLI.LogLevel, Out: os.Stdout}
	if err := ctx.Run(env); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
