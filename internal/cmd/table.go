package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/Alia5/viashift/codetable"
	"github.com/Alia5/viashift/encoder"
	"github.com/Alia5/viashift/internal/server/api/handler"
	"github.com/Alia5/viashift/keys"

	toml "github.com/pelletier/go-toml"
	yaml "gopkg.in/yaml.v3"
)

// Table prints the code table.
type Table struct {
	Format string `help:"Output format" enum:"text,json,yaml,toml" default:"text"`

	out io.Writer
}

// Run is called by Kong when the table command is executed.
func (t *Table) Run(logger *slog.Logger) error {
	w := t.out
	if w == nil {
		w = os.Stdout
	}
	return writeTable(w, t.Format, codetable.Build(keys.Default, logger))
}

func writeTable(w io.Writer, format string, tbl *codetable.Table) error {
	doc := handler.TableResponse(tbl)
	var data []byte
	var err error
	switch format {
	case "json":
		data, err = json.MarshalIndent(doc, "", "  ")
		data = append(data, '\n')
	case "yaml":
		data, err = yaml.Marshal(doc)
	case "toml":
		data, err = toml.Marshal(doc)
	case "text", "":
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "CODE\tNAME\tUNSHIFTED\tSHIFTED")
		for _, e := range doc.Entries {
			fmt.Fprintf(tw, "0x%02X\t%s\t0x%02X %s\t0x%02X %s\n",
				e.Code, e.Name, e.Unshifted, encoder.Printable(e.Unshifted), e.Shifted, encoder.Printable(e.Shifted))
		}
		return tw.Flush()
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}
