package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// Sample catalog files. Three datasets chained by lineage:
// raw_events -> customer_profiles -> marketing_segments.
const (
	DatasetsCSV = `name,system,owner,domain,has_pii,encryption,retention_days,last_audit_date
raw_events,kafka,platform,analytics,False,none,30,2024-01-15
customer_profiles,postgres,crm-team,crm,True,AES256,400,2024-02-01
marketing_segments,snowflake,growth,marketing,True,none,120,
`
	ColumnsCSV = `dataset,column,pii_type
raw_events,event_id,none
raw_events,ip_address,ip
customer_profiles,customer_id,none
customer_profiles,email,email
customer_profiles,phone,phone
marketing_segments,email,email
marketing_segments,segment,
`
	LineageCSV = `source,target,transformation
raw_events,customer_profiles,dedupe
customer_profiles,marketing_segments,segment
`
	AuditsCSV = `dataset,gdpr_ok,remarks
raw_events,True,clean
customer_profiles,False,retention too long
`
)

// WriteCatalog writes the sample catalog files into dir, with overrides
// replacing individual files by name (e.g. "audits.csv"). An empty override
// removes the file.
func WriteCatalog(t testing.TB, dir string, overrides map[string]string) {
	t.Helper()

	files := map[string]string{
		"datasets.csv": DatasetsCSV,
		"columns.csv":  ColumnsCSV,
		"lineage.csv":  LineageCSV,
		"audits.csv":   AuditsCSV,
	}
	for name, content := range overrides {
		files[name] = content
	}

	for name, content := range files {
		path := filepath.Join(dir, name)
		if content == "" {
			_ = os.Remove(path)
			continue
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("failed to write %s: %v", name, err)
		}
	}
}

// CatalogDir creates a temporary directory holding the sample catalog.
func CatalogDir(t testing.TB) string {
	t.Helper()
	dir := t.TempDir()
	WriteCatalog(t, dir, nil)
	return dir
}
