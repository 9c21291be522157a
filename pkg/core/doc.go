// Package core defines the shared language of govpilot.
//
// This package contains:
//   - Catalog records (Dataset, Column, LineageEdge, AuditRecord)
//   - Derived records (ComplianceRecord)
//   - Value types with governance semantics (TriState, Date)
//   - Validation errors shared by loaders and the rule engine
//
// The Golden Rule: pkg/core imports ONLY stdlib and the validator.
// All other packages depend on core, not the reverse.
package core
