package projections

import (
	"log/slog"

	"hackathon/internal/application/listutil"
	"hackathon/internal/domain/export"
)

// ExportQuery selects what to export and how.
type ExportQuery struct {
	List    listutil.ListParams // All exports the whole board
	Options export.Options
}

// QueryExport renders the records a list request covers as a document.
// PRE: schema has columns
// POST: the whole document is built in memory
func QueryExport[T any](src ItemSource[T], view listutil.View[T], schema export.Schema[T], q ExportQuery) (export.Document, error) {
	items := Select(src.Items(), view, q.List)
	doc, err := schema.Export(items, q.Options)
	if err != nil {
		return export.Document{}, err
	}
	slog.Info("export_event", "event", "rendered", "schema", schema.Name, "format", q.Options.Format, "records", doc.Records, "all", q.List.All, "degraded", src.Degraded())
	return doc, nil
}
