package core

import "strconv"

// ComplianceRecord is the derived governance verdict for one dataset.
// It is a pure function of the dataset, its audit and the rule table.
type ComplianceRecord struct {
	Dataset            string   `json:"dataset"`
	Domain             string   `json:"domain"`
	HasPII             bool     `json:"has_pii"`
	EncryptionRequired bool     `json:"encryption_required"`
	Encrypted          bool     `json:"encrypted"`
	RetentionDays      int      `json:"retention_days"`
	RetentionViolation bool     `json:"retention_violation"`
	RetentionReason    string   `json:"retention_reason"`
	GDPROK             TriState `json:"gdpr_ok"`
	AuditRemarks       string   `json:"audit_remarks"`
}

// ComplianceColumns lists the exported report columns in order.
var ComplianceColumns = []string{
	"dataset",
	"domain",
	"has_pii",
	"encryption_required",
	"encrypted",
	"retention_days",
	"retention_violation",
	"retention_reason",
	"gdpr_ok",
	"audit_remarks",
}

// Values returns the record's fields as strings, in ComplianceColumns order.
func (r ComplianceRecord) Values() []string {
	return []string{
		r.Dataset,
		r.Domain,
		strconv.FormatBool(r.HasPII),
		strconv.FormatBool(r.EncryptionRequired),
		strconv.FormatBool(r.Encrypted),
		strconv.Itoa(r.RetentionDays),
		strconv.FormatBool(r.RetentionViolation),
		r.RetentionReason,
		r.GDPROK.String(),
		r.AuditRemarks,
	}
}
