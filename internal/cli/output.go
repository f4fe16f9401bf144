// Copyright (c) 2017-present Mattermost, Inc. All Rights Reserved.
// See License.txt for license information.

package cli

import (
	"encoding/json"
	"io"
	"text/tabwriter"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

// render writes v in the requested format. text is used for the text format.
func render(w io.Writer, format string, v interface{}, text func(w io.Writer) error) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return errors.Wrap(enc.Encode(v), "unable to write json")
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return errors.Wrap(err, "unable to write yaml")
		}
		return errors.Wrap(enc.Close(), "unable to write yaml")
	case formatText, "":
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		if err := text(tw); err != nil {
			return err
		}
		return errors.Wrap(tw.Flush(), "unable to write output")
	default:
		return errors.Errorf("unknown output format %q", format)
	}
}
