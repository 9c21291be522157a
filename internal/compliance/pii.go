package compliance

import "github.com/leapstack-labs/govpilot/pkg/core"

// PIIColumns returns the PII-classified columns of a dataset in catalog order.
// The result is never nil.
func PIIColumns(columns []core.Column, dataset string) []core.Column {
	out := []core.Column{}
	for _, c := range columns {
		if c.Dataset == dataset && c.IsPII() {
			out = append(out, c)
		}
	}
	return out
}

// UnencryptedPII returns datasets flagged as holding PII whose encryption
// field denotes no encryption.
func UnencryptedPII(datasets []core.Dataset) []core.Dataset {
	out := []core.Dataset{}
	for _, d := range datasets {
		if d.HasPII && !IsEncrypted(d.Encryption) {
			out = append(out, d)
		}
	}
	return out
}
