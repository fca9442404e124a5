package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	yaml "gopkg.in/yaml.v3"

	"github.com/Alia5/luaexpose/internal/codegen/generator"
	"github.com/Alia5/luaexpose/internal/codegen/ir"
	"github.com/Alia5/luaexpose/internal/codegen/meta"
	"github.com/Alia5/luaexpose/internal/log"
)

// Dump prints the linked program and its output groupings.
type Dump struct {
	Source `embed:""`

	Format string `help:"Output format" enum:"yaml,json" default:"yaml" env:"LUAEXPOSE_DUMP_FORMAT"`
	Output string `help:"Destination file; stdout when empty" type:"path"`

	w io.Writer
}

type dumpUnit struct {
	Path       string   `json:"path" yaml:"path"`
	Group      string   `json:"group" yaml:"group"`
	Classes    []string `json:"classes,omitempty" yaml:"classes,omitempty"`
	Namespaces []string `json:"namespaces,omitempty" yaml:"namespaces,omitempty"`
	Enums      []string `json:"enums,omitempty" yaml:"enums,omitempty"`
	Functions  []string `json:"functions,omitempty" yaml:"functions,omitempty"`
}

type dumpView struct {
	Files           []*ir.File      `json:"files" yaml:"files"`
	Specializations []string        `json:"specializations,omitempty" yaml:"specializations,omitempty"`
	Units           []dumpUnit      `json:"units" yaml:"units"`
	Diagnostics     []ir.Diagnostic `json:"diagnostics,omitempty" yaml:"diagnostics,omitempty"`
}

func viewOf(md *meta.Metadata) dumpView {
	v := dumpView{Files: md.Program.Files}
	for _, c := range md.Program.Specializations {
		v.Specializations = append(v.Specializations, c.QualifiedName())
	}
	for _, u := range md.Units {
		du := dumpUnit{Path: u.Path, Group: u.Group}
		for _, c := range u.Classes {
			du.Classes = append(du.Classes, c.QualifiedName())
		}
		for _, ns := range u.Namespaces {
			du.Namespaces = append(du.Namespaces, ns.QualifiedName())
		}
		for _, e := range u.Enums {
			du.Enums = append(du.Enums, e.QualifiedName())
		}
		if u.Globals != nil {
			for _, f := range u.Globals.Functions {
				du.Functions = append(du.Functions, f.Name)
			}
		}
		v.Units = append(v.Units, du)
	}
	v.Diagnostics = append(v.Diagnostics, md.Program.Diagnostics...)
	v.Diagnostics = append(v.Diagnostics, md.Diagnostics...)
	return v
}

// Run is called by Kong when the dump command is executed.
func (c *Dump) Run(logger *slog.Logger, dumper log.SourceDumper) error {
	_, md, err := c.load(logger, dumper, generator.Options{})
	if err != nil {
		return err
	}

	var data []byte
	switch c.Format {
	case "json":
		data, err = json.MarshalIndent(viewOf(md), "", "  ")
		data = append(data, '\n')
	default:
		data, err = yaml.Marshal(viewOf(md))
	}
	if err != nil {
		return fmt.Errorf("encode dump: %w", err)
	}

	w := c.w
	if w == nil {
		w = os.Stdout
	}
	if c.Output != "" {
		f, err := os.Create(c.Output)
		if err != nil {
			return fmt.Errorf("create dump file: %w", err)
		}
		defer f.Close()
		w = f
	}
	_, err = w.Write(data)
	return err
}
