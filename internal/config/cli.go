// Package config holds the root command line of luaexpose.
package config

import (
	"github.com/alecthomas/kong"

	"github.com/Alia5/luaexpose/internal/cmd"
)

// Log configures logging for every command.
type Log struct {
	Level    string `help:"Log level" enum:"trace,debug,info,warn,error" default:"info" env:"LUAEXPOSE_LOG_LEVEL"`
	File     string `help:"Also write logs to this file" type:"path" env:"LUAEXPOSE_LOG_FILE"`
	Format   string `help:"Console log format; auto picks text on a terminal" enum:"auto,text,json" default:"auto" env:"LUAEXPOSE_LOG_FORMAT"`
	DumpFile string `help:"Write the preprocessed text of every scanned header to this file" type:"path" env:"LUAEXPOSE_LOG_DUMP_FILE"`
}

// CLI is the kong root.
type CLI struct {
	ConfigFile string           `name:"config" help:"Configuration file (json, yaml or toml)" type:"path" env:"LUAEXPOSE_CONFIG"`
	Version    kong.VersionFlag `help:"Print the version and exit"`
	Log        Log              `embed:"" prefix:"log."`

	Generate cmd.Generate      `cmd:"" help:"Generate bindings and declarations from annotated headers"`
	Dump     cmd.Dump          `cmd:"" help:"Print the scanned and linked headers"`
	Config   cmd.ConfigCommand `cmd:"" help:"Configuration helpers"`
}
