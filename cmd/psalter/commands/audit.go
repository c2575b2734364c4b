package commands

import (
	"context"
	"encoding/json"
	"fmt"

	"git.home.luguber.info/inful/psalter/internal/foundation/errors"
	"git.home.luguber.info/inful/psalter/internal/store"
)

// AuditCmd implements the 'audit' command.
type AuditCmd struct {
	JSON bool `help:"Print the full report as JSON"`
}

func (a *AuditCmd) Run(g *Global, root *CLI) error {
	ctx := context.Background()
	cfg := root.Loaded()

	st, err := store.Open(ctx, cfg.Storage.Path)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	report, err := st.Audit(ctx, cfg.Ingest.Documents)
	if err != nil {
		return err
	}

	if a.JSON {
		out, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return errors.WrapError(err, errors.CategoryInternal, "failed to encode audit report").Build()
		}
		fmt.Println(string(out))
	} else {
		fmt.Printf("psalms: %d\nstanzas: %d\n", report.Psalms, report.Stanzas)
		for _, v := range report.Violations {
			fmt.Printf("psalm %d: %s (declared %d, stored %d)\n", v.Psalm, v.Reason, v.Declared, v.Actual)
		}
		if len(report.Missing) > 0 {
			fmt.Printf("missing psalms: %v\n", report.Missing)
		}
	}

	if !report.OK() {
		return errors.IngestionError("corpus audit failed").
			WithContext("violations", len(report.Violations)).
			WithContext("missing", len(report.Missing)).
			Build()
	}
	g.Logger.Info("Corpus audit passed")
	return nil
}
