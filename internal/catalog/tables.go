package catalog

// table describes one catalog table as stored in files and databases.
type table struct {
	name     string   // table name in databases
	file     string   // file name in the data directory
	columns  []string // columns read, in order
	required []string // columns a CSV header must contain
}

var (
	datasetsTable = table{
		name:     "datasets",
		file:     "datasets.csv",
		columns:  []string{"name", "system", "owner", "domain", "has_pii", "encryption", "retention_days", "last_audit_date"},
		required: []string{"name", "has_pii", "retention_days"},
	}
	columnsTable = table{
		name:     "columns",
		file:     "columns.csv",
		columns:  []string{"dataset", "column", "pii_type"},
		required: []string{"dataset", "column"},
	}
	lineageTable = table{
		name:     "lineage",
		file:     "lineage.csv",
		columns:  []string{"source", "target", "transformation"},
		required: []string{"source", "target"},
	}
	auditsTable = table{
		name:     "audits",
		file:     "audits.csv",
		columns:  []string{"dataset", "gdpr_ok", "remarks"},
		required: []string{"dataset", "gdpr_ok"},
	}
)

// catalogTables lists the tables in Tables field order.
var catalogTables = []table{datasetsTable, columnsTable, lineageTable, auditsTable}

// slot returns the Tables field that holds rows for t.
func (ts *Tables) slot(t table) *[]Row {
	switch t.name {
	case datasetsTable.name:
		return &ts.Datasets
	case columnsTable.name:
		return &ts.Columns
	case lineageTable.name:
		return &ts.Lineage
	default:
		return &ts.Audits
	}
}
