package main

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sarchlab/procsim/datarecording"
	"github.com/sarchlab/procsim/tracing"
)

func newRecordsCmd() *cobra.Command {
	recordsCmd := &cobra.Command{
		Use:   "records <file>",
		Short: "Print the records exported to a SQLite file.",
		Long: "`records <file>` reads a file written with `run --output` " +
			"and prints one page of its records.",
		Args: cobra.ExactArgs(1),
		RunE: printRecords,
	}

	flags := recordsCmd.Flags()
	flags.String("run", "", "Only show the records of this run")
	flags.String("label", "", "Only show the records of this component")
	flags.Int("limit", 50, "Number of records per page (0 shows all)")
	flags.Int("offset", 0, "Number of records to skip")

	return recordsCmd
}

func printRecords(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()

	var filter tracing.RowFilter
	filter.Run, _ = flags.GetString("run")
	filter.Label, _ = flags.GetString("label")
	filter.Limit, _ = flags.GetInt("limit")
	filter.Offset, _ = flags.GetInt("offset")

	if filter.Limit < 0 || filter.Offset < 0 {
		return errors.New("limit and offset cannot be negative")
	}

	reader, err := datarecording.NewReader(args[0])
	if err != nil {
		return err
	}
	defer reader.Close()

	rows, total, err := tracing.ReadRows(cmd.Context(), reader, filter)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "run\tseq\ttime\tcomponent\tvalue\tdescription")

	for _, row := range rows {
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\t%s\n",
			row.Run, row.Seq, row.TimeText, row.Label, row.Value,
			row.Description)
	}

	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "\n%d of %d records\n", len(rows), total)

	return nil
}
