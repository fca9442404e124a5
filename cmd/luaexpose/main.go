package main

import (
	"context"
	"os"
	"os/signal"
	"strings"

	"github.com/alecthomas/kong"
	kongtoml "github.com/alecthomas/kong-toml"
	kongyaml "github.com/alecthomas/kong-yaml"
	"github.com/google/uuid"

	"github.com/Alia5/luaexpose/internal/codegen/common"
	"github.com/Alia5/luaexpose/internal/config"
	"github.com/Alia5/luaexpose/internal/configpaths"
	"github.com/Alia5/luaexpose/internal/log"
)

func main() {
	userCfg := findUserConfig(os.Args[1:])
	jsonPaths, yamlPaths, tomlPaths := configpaths.ConfigCandidatePaths(userCfg)

	version, err := common.GetVersion()
	if err != nil {
		version = common.Version
	}

	var cli config.CLI
	ctx := kong.Parse(&cli,
		kong.Name("luaexpose"),
		kong.Description("Generate sol2 registration code, TypeScript and Teal declarations from annotated C++ headers"),
		kong.UsageOnError(),
		kong.Vars{"version": version},
		// Flags and env override config values; earlier files win.
		kong.Configuration(kong.JSON, jsonPaths...),
		kong.Configuration(kongyaml.Loader, yamlPaths...),
		kong.Configuration(kongtoml.Loader, tomlPaths...),
	)

	logger, closeFiles, err := log.SetupLogger(cli.Log.Level, cli.Log.File, cli.Log.Format)
	if err != nil {
		_, _ = os.Stderr.WriteString("failed to setup logger: " + err.Error() + "\n")
		os.Exit(2)
	}
	defer func() {
		for _, c := range closeFiles {
			_ = c.Close()
		}
	}()
	logger = logger.With("run", uuid.NewString())

	dumper := log.NewDumper(nil)
	if cli.Log.DumpFile != "" {
		f, err := os.OpenFile(cli.Log.DumpFile, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
		if err != nil {
			logger.Error("failed to open source dump file", "file", cli.Log.DumpFile, "error", err)
		} else {
			dumper = log.NewDumper(f)
			closeFiles = append(closeFiles, f)
		}
	}

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	ctx.Bind(logger)
	ctx.BindTo(dumper, (*log.SourceDumper)(nil))
	ctx.BindTo(runCtx, (*context.Context)(nil))

	err = ctx.Run()
	ctx.FatalIfErrorf(err)
}

// findUserConfig picks --config out of the raw arguments before kong runs,
// since the config file feeds the parser itself.
func findUserConfig(args []string) string {
	for i, a := range args {
		if v, ok := strings.CutPrefix(a, "--config="); ok {
			return v
		}
		if a == "--config" && i+1 < len(args) {
			return args[i+1]
		}
	}
	return os.Getenv("LUAEXPOSE_CONFIG")
}
