package compliance

import "github.com/leapstack-labs/govpilot/pkg/core"

// IsViolation reports whether a record needs attention: PII without
// encryption, a retention violation, or a GDPR audit that did not pass.
// An unknown GDPR result counts as a violation.
func IsViolation(rec core.ComplianceRecord) bool {
	return (rec.EncryptionRequired && !rec.Encrypted) ||
		rec.RetentionViolation ||
		rec.GDPROK != core.True
}

// Violations returns the records selected by IsViolation, in order.
func Violations(records []core.ComplianceRecord) []core.ComplianceRecord {
	out := make([]core.ComplianceRecord, 0, len(records))
	for _, rec := range records {
		if IsViolation(rec) {
			out = append(out, rec)
		}
	}
	return out
}

// Findings lists why a record is a violation, in check order. It is empty
// for a compliant record.
func Findings(rec core.ComplianceRecord) []string {
	var out []string
	if rec.EncryptionRequired && !rec.Encrypted {
		out = append(out, "PII stored without encryption")
	}
	if rec.RetentionViolation {
		out = append(out, rec.RetentionReason)
	}
	switch rec.GDPROK {
	case core.False:
		out = append(out, "GDPR audit failed")
	case core.Unknown:
		out = append(out, "no GDPR audit on record")
	}
	return out
}

// Summary counts records by failing check. A record may count toward
// several checks.
type Summary struct {
	Datasets           int `json:"datasets"`
	Violations         int `json:"violations"`
	UnencryptedPII     int `json:"unencrypted_pii"`
	RetentionViolation int `json:"retention_violations"`
	GDPRFailed         int `json:"gdpr_failed"`
	GDPRUnknown        int `json:"gdpr_unknown"`
}

// Summarize tallies a compliance report.
func Summarize(records []core.ComplianceRecord) Summary {
	s := Summary{Datasets: len(records)}
	for _, rec := range records {
		if IsViolation(rec) {
			s.Violations++
		}
		if rec.EncryptionRequired && !rec.Encrypted {
			s.UnencryptedPII++
		}
		if rec.RetentionViolation {
			s.RetentionViolation++
		}
		switch rec.GDPROK {
		case core.False:
			s.GDPRFailed++
		case core.Unknown:
			s.GDPRUnknown++
		}
	}
	return s
}
