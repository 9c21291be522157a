// Package compliance derives a per-dataset governance verdict from a catalog
// snapshot: whether PII is encrypted, whether retention exceeds policy, and
// what the latest recorded GDPR audit concluded.
//
// Retention policy is an ordered table of rules. The first rule that matches
// a dataset decides its reason; later rules are not consulted. The built-in
// rules come first and a policy file may append more, either as structural
// matches on domain and dataset name or as Starlark expressions over the
// dataset's fields.
package compliance
