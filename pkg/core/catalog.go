package core

// =============================================================================
// Catalog records
// =============================================================================

// Dataset is a governed dataset. Name is the unique key across a catalog.
type Dataset struct {
	Name          string `json:"name" mapstructure:"name" validate:"required"`
	System        string `json:"system" mapstructure:"system"`
	Owner         string `json:"owner" mapstructure:"owner"`
	Domain        string `json:"domain" mapstructure:"domain"`
	HasPII        bool   `json:"has_pii" mapstructure:"has_pii"`
	Encryption    string `json:"encryption" mapstructure:"encryption"`
	RetentionDays int    `json:"retention_days" mapstructure:"retention_days" validate:"gte=0"`
	LastAuditDate Date   `json:"last_audit_date" mapstructure:"last_audit_date"`
}

// Validate checks the dataset's required fields and ranges.
func (d Dataset) Validate() error {
	return validateRecord("dataset", d.Name, d)
}

// PIITypeNone marks a column that carries no personal data.
const PIITypeNone = "none"

// Column describes one column of a dataset and its PII classification.
type Column struct {
	Dataset string `json:"dataset" mapstructure:"dataset" validate:"required"`
	Name    string `json:"column" mapstructure:"column"`
	PIIType string `json:"pii_type" mapstructure:"pii_type"`
}

// IsPII reports whether the column is classified as personal data.
// An empty classification is treated the same as "none".
func (c Column) IsPII() bool {
	return c.PIIType != "" && c.PIIType != PIITypeNone
}

// Validate checks the column's required fields.
func (c Column) Validate() error {
	return validateRecord("column", joinKey(".", c.Dataset, c.Name), c)
}

// LineageEdge records that Target was derived from Source.
// Transformation is informational only.
type LineageEdge struct {
	Source         string `json:"source" mapstructure:"source" validate:"required"`
	Target         string `json:"target" mapstructure:"target" validate:"required"`
	Transformation string `json:"transformation,omitempty" mapstructure:"transformation"`
}

// Validate checks that both endpoints are named.
func (e LineageEdge) Validate() error {
	return validateRecord("lineage edge", joinKey(" -> ", e.Source, e.Target), e)
}

// AuditRecord is the result of a governance audit of one dataset.
type AuditRecord struct {
	Dataset string `json:"dataset" mapstructure:"dataset" validate:"required"`
	GDPROK  bool   `json:"gdpr_ok" mapstructure:"gdpr_ok"`
	Remarks string `json:"remarks" mapstructure:"remarks"`
}

// Validate checks the audit's required fields.
func (a AuditRecord) Validate() error {
	return validateRecord("audit", a.Dataset, a)
}

// Catalog is an immutable snapshot of the four governance record sets.
// Loaders build it once; consumers treat it as read-only.
type Catalog struct {
	Datasets []Dataset
	Columns  []Column
	Lineage  []LineageEdge
	Audits   []AuditRecord
}

// Dataset returns the dataset with the given name.
func (c *Catalog) Dataset(name string) (Dataset, bool) {
	for _, d := range c.Datasets {
		if d.Name == name {
			return d, true
		}
	}
	return Dataset{}, false
}

// Validate checks every record and that dataset names are unique.
// All failures are reported together as a *BatchError.
func (c *Catalog) Validate() error {
	var errs []error
	seen := make(map[string]bool, len(c.Datasets))
	for i, d := range c.Datasets {
		if err := d.Validate(); err != nil {
			errs = append(errs, WithRow(err, i+1))
			continue
		}
		if seen[d.Name] {
			errs = append(errs, &ValidationError{
				Kind:   "dataset",
				Key:    d.Name,
				Row:    i + 1,
				Fields: []string{"name must be unique"},
			})
		}
		seen[d.Name] = true
	}
	for i, col := range c.Columns {
		if err := col.Validate(); err != nil {
			errs = append(errs, WithRow(err, i+1))
		}
	}
	for i, e := range c.Lineage {
		if err := e.Validate(); err != nil {
			errs = append(errs, WithRow(err, i+1))
		}
	}
	for i, a := range c.Audits {
		if err := a.Validate(); err != nil {
			errs = append(errs, WithRow(err, i+1))
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return &BatchError{Errors: errs}
}
