package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"

	"github.com/Alia5/viashift/internal/configpaths"

	"github.com/alecthomas/kong"
	toml "github.com/pelletier/go-toml"
	yaml "gopkg.in/yaml.v3"
)

// ConfigCommand groups config-related subcommands.
type ConfigCommand struct {
	Init ConfigInit `cmd:"" help:"Generate a configuration template"`
}

// ConfigInit writes a template holding every flag of a command at its
// default value.
type ConfigInit struct {
	Command string `arg:"" name:"command" help:"Command to generate config for" enum:"serve,probe"`
	Format  string `help:"Output format" enum:"json,yaml,toml" default:"json"`
	Output  string `help:"Destination file path (defaults to <command>.<format> in the current directory)"`
	Force   bool   `help:"Overwrite if the file already exists"`
}

// setting is one flag of a command as it appears in a template.
type setting struct {
	name  string // kong flag name, e.g. "lines.ready" or "probe-window"
	group string
	help  string
	value any
}

// Run builds the command's flags through kong so the template keys are the
// ones the configuration loaders resolve.
func (c *ConfigInit) Run() error {
	format := normalizeFormat(c.Format)
	if format == "" {
		return fmt.Errorf("unsupported format: %s", c.Format)
	}

	var grammar any
	switch c.Command {
	case "serve":
		grammar = &Serve{}
	case "probe":
		grammar = &Probe{}
	default:
		return errors.New("unknown command; expected 'serve' or 'probe'")
	}
	settings, err := commandSettings(grammar)
	if err != nil {
		return err
	}

	var data []byte
	switch format {
	case "json":
		data, err = jsonTemplate(settings)
	case "yaml":
		data, err = yamlTemplate(c.Command, settings)
	case "toml":
		data, err = tomlTemplate(settings)
	}
	if err != nil {
		return err
	}

	dest := c.Output
	if dest == "" {
		dest = c.Command + "." + format
	}
	if !c.Force {
		if _, err := os.Stat(dest); err == nil {
			return errors.New("destination exists; use --force to overwrite")
		}
	}
	if err := configpaths.EnsureDir(dest); err != nil {
		return err
	}
	return os.WriteFile(dest, data, 0o644)
}

func normalizeFormat(f string) string {
	switch strings.ToLower(f) {
	case "json":
		return "json"
	case "yaml", "yml":
		return "yaml"
	case "toml":
		return "toml"
	default:
		return ""
	}
}

func commandSettings(grammar any) ([]setting, error) {
	k, err := kong.New(grammar, kong.NoDefaultHelp(), kong.Exit(func(int) {}))
	if err != nil {
		return nil, err
	}
	var out []setting
	for _, f := range k.Model.Flags {
		if f.Hidden {
			continue
		}
		v := defaultValue(f.Target.Type(), f.Default)
		if v == nil {
			continue
		}
		s := setting{name: f.Name, help: f.Help, value: v}
		if f.Group != nil {
			s.group = f.Group.Title
		}
		out = append(out, s)
	}
	return out, nil
}

// jsonTemplate nests on the flag name's dots. kong's JSON resolver reads
// dashes as underscores.
func jsonTemplate(settings []setting) ([]byte, error) {
	root := map[string]any{}
	for _, s := range settings {
		parts := strings.Split(strings.ReplaceAll(s.name, "-", "_"), ".")
		m := root
		for _, p := range parts[:len(parts)-1] {
			sub, ok := m[p].(map[string]any)
			if !ok {
				sub = map[string]any{}
				m[p] = sub
			}
			m = sub
		}
		m[parts[len(parts)-1]] = s.value
	}
	return json.MarshalIndent(root, "", "  ")
}

// yamlTemplate keeps flag names whole under a section named after the
// command, which is where kong-yaml looks for them. Help text is written as
// comments, with a heading above the first flag of each group.
func yamlTemplate(command string, settings []setting) ([]byte, error) {
	section := &yaml.Node{Kind: yaml.MappingNode}
	group := ""
	for _, s := range settings {
		key := &yaml.Node{Kind: yaml.ScalarNode, Value: s.name}
		if s.group != group && s.group != "" {
			key.HeadComment = "# " + s.group
		}
		group = s.group
		val := &yaml.Node{}
		if err := val.Encode(s.value); err != nil {
			return nil, fmt.Errorf("encode %s: %w", s.name, err)
		}
		val.LineComment = "# " + s.help
		section.Content = append(section.Content, key, val)
	}
	doc := &yaml.Node{Kind: yaml.MappingNode, Content: []*yaml.Node{
		{Kind: yaml.ScalarNode, Value: command}, section,
	}}
	return yaml.Marshal(doc)
}

// tomlTemplate writes every flag as one quoted top-level key. kong-toml
// rejects keys that do not spell a flag name, so dotted names must not
// become tables.
func tomlTemplate(settings []setting) ([]byte, error) {
	tree, err := toml.TreeFromMap(map[string]any{})
	if err != nil {
		return nil, err
	}
	for _, s := range settings {
		tree.SetPathWithComment([]string{s.name}, s.help, false, s.value)
	}
	return tree.Marshal()
}

// defaultValue converts a kong default tag to a value every template
// encoder accepts. Flags without a representable default return nil.
func defaultValue(t reflect.Type, def string) any {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.PkgPath() == "time" && t.Name() == "Duration" {
		if def == "" {
			return "0s"
		}
		return def
	}
	switch t.Kind() {
	case reflect.String:
		return def
	case reflect.Bool:
		b, _ := strconv.ParseBool(def)
		return b
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, _ := strconv.ParseInt(def, 10, 64)
		return n
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, _ := strconv.ParseUint(def, 10, 64)
		return n
	case reflect.Float32, reflect.Float64:
		f, _ := strconv.ParseFloat(def, 64)
		return f
	default:
		return nil
	}
}
