package main

import (
	"bytes"
	"encoding/json"
	"io"
	"os"

	"golang.org/x/term"
)

// writeJSON writes raw JSON indented for terminals and compact otherwise.
func writeJSON(w io.Writer, raw json.RawMessage) error {
	var buf bytes.Buffer
	if isTerminal(w) {
		if err := json.Indent(&buf, raw, "", "  "); err != nil {
			return err
		}
	} else if err := json.Compact(&buf, raw); err != nil {
		return err
	}
	buf.WriteByte('\n')
	_, err := w.Write(buf.Bytes())
	return err
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
