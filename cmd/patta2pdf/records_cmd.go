package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/fra-portal/patta2pdf"
)

// runList prints the stored records as a table or JSON array.
func runList(ctx context.Context, args []string, env *Environment) error {
	f, rest, err := parseViewFlags("list", printListUsage, args, env.Stderr)
	if err != nil {
		return err
	}
	if len(rest) > 0 {
		return fmt.Errorf("%w: list takes no arguments", ErrUsage)
	}

	s, err := openSession(ctx, f.common, env)
	if err != nil {
		return err
	}
	defer s.Close()

	recs, err := s.repo.List(ctx)
	if err != nil {
		return err
	}
	if f.json {
		if recs == nil {
			recs = []patta2pdf.Record{}
		}
		return writeJSON(env.Stdout, recs)
	}

	tw := tabwriter.NewWriter(env.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tHOLDER\tVILLAGE\tDISTRICT\tAREA (SQFT)\tSTATUS")
	for _, r := range recs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			r.ID, dash(r.HolderName), dash(r.Village), dash(r.District), dash(r.TotalAreaSqft), dash(r.Status))
	}
	return tw.Flush()
}

// runShow prints one record, or its verification payload with --payload.
func runShow(ctx context.Context, args []string, env *Environment) error {
	f, rest, err := parseViewFlags("show", printShowUsage, args, env.Stderr)
	if err != nil {
		return err
	}
	if len(rest) != 1 {
		return fmt.Errorf("%w: show needs exactly one record id", ErrUsage)
	}

	s, err := openSession(ctx, f.common, env)
	if err != nil {
		return err
	}
	defer s.Close()

	rec, err := s.repo.Get(ctx, rest[0])
	if err != nil {
		return err
	}

	if f.payload {
		p := patta2pdf.BuildPayload(rec, env.Now(), patta2pdf.PayloadOptions{
			BaseURL:   s.cfg.Verification.BaseURL,
			Authority: s.cfg.Verification.Authority,
		})
		data, err := p.IndentedJSON()
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(env.Stdout, string(data))
		return err
	}
	if f.json {
		return writeJSON(env.Stdout, rec)
	}
	printRecord(env.Stdout, rec)
	return nil
}

func printRecord(w io.Writer, r patta2pdf.Record) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	rows := []struct{ label, value string }{
		{"ID", r.ID},
		{"Serial no.", r.SerialNo},
		{"Issue date", r.Date},
		{"Holder", r.HolderName},
		{"Father/Husband", r.FatherName},
		{"Caste", r.Caste},
		{"Age", r.Age},
		{"State", r.State},
		{"District", r.District},
		{"Tehsil", r.Tehsil},
		{"Gram panchayat", r.GramPanchayat},
		{"Village", r.Village},
		{"Khasra no.", r.KhasraNo},
		{"Area (sqft)", r.TotalAreaSqft},
		{"East", r.East},
		{"West", r.West},
		{"North", r.North},
		{"South", r.South},
		{"Status", r.Status},
	}
	for _, row := range rows {
		fmt.Fprintf(tw, "%s:\t%s\n", row.label, dash(row.value))
	}
	_ = tw.Flush()
	if r.Notes != "" {
		fmt.Fprintf(w, "\nNotes:\n%s\n", r.Notes)
	}
}

// runImport adds records from a JSON file ("-" reads stdin). Existing ids
// are skipped, never overwritten.
func runImport(ctx context.Context, args []string, env *Environment) error {
	f, rest, err := parseViewFlags("import", printImportUsage, args, env.Stderr)
	if err != nil {
		return err
	}
	if len(rest) != 1 {
		return fmt.Errorf("%w: import needs exactly one file (or - for stdin)", ErrUsage)
	}

	data, err := readInput(rest[0], env.Stdin)
	if err != nil {
		return err
	}
	recs, err := patta2pdf.DecodeRecords(data)
	if err != nil {
		return err
	}

	s, err := openSession(ctx, f.common, env)
	if err != nil {
		return err
	}
	defer s.Close()

	report, err := s.repo.Import(ctx, recs)
	if err != nil {
		return err
	}

	if f.json {
		return writeJSON(env.Stdout, struct {
			Added    []string `json:"added"`
			Existing []string `json:"existing"`
		}{orEmpty(report.Added), orEmpty(report.Existing)})
	}
	if f.common.quiet {
		return nil
	}
	for _, id := range report.Added {
		fmt.Fprintf(env.Stdout, "Added %s\n", id)
	}
	for _, id := range report.Existing {
		fmt.Fprintf(env.Stdout, "Skipped %s (already exists)\n", id)
	}
	fmt.Fprintf(env.Stdout, "\n%d added, %d skipped\n", len(report.Added), len(report.Existing))
	return nil
}

func readInput(name string, stdin io.Reader) ([]byte, error) {
	if name == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("%w: stdin: %v", ErrReadInput, err)
		}
		return data, nil
	}
	data, err := os.ReadFile(name) // #nosec G304 -- user-provided path
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReadInput, err)
	}
	return data, nil
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
