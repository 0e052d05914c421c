package tracing

import (
	"context"
	"strings"

	"github.com/sarchlab/procsim/datarecording"
)

// A RowFilter selects exported rows. Empty fields match everything.
type RowFilter struct {
	Run   string
	Label string

	Limit  int
	Offset int
}

func (f RowFilter) params() datarecording.QueryParams {
	var (
		conds []string
		args  []any
	)

	if f.Run != "" {
		conds = append(conds, "Run = ?")
		args = append(args, f.Run)
	}

	if f.Label != "" {
		conds = append(conds, "Label = ?")
		args = append(args, f.Label)
	}

	return datarecording.QueryParams{
		Where:   strings.Join(conds, " AND "),
		Args:    args,
		OrderBy: "Run, Seq",
		Limit:   f.Limit,
		Offset:  f.Offset,
	}
}

// ReadRows reads exported records back, ordered by run and position in the
// run. It also returns how many rows match the filter regardless of paging.
func ReadRows(
	ctx context.Context,
	reader datarecording.DataReader,
	filter RowFilter,
) ([]Row, int, error) {
	reader.MapTable(TableName, Row{})

	entries, total, err := reader.Query(ctx, TableName, filter.params())
	if err != nil {
		return nil, 0, err
	}

	rows := make([]Row, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, *e.(*Row))
	}

	return rows, total, nil
}
