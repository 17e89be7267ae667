package logging

// Field name constants for structured logging.
const (
	// Common fields.
	FieldError      = "error"
	FieldPath       = "path"
	FieldPaths      = "paths"
	FieldFiles      = "files"
	FieldWorkingDir = "working_dir"
	FieldConfig     = "config"

	// Configuration fields.
	FieldFlavor  = "flavor"
	FieldJobs    = "jobs"
	FieldFormat  = "format"
	FieldIgnored = "ignored"

	// Registry and traversal fields.
	FieldPlugin    = "plugin"
	FieldRule      = "rule"
	FieldSelector  = "selector"
	FieldPhase     = "phase"
	FieldNode      = "node"
	FieldNodeType  = "node_type"
	FieldFrontend  = "frontend"
	FieldEntries   = "entries"
	FieldBuckets   = "buckets"
	FieldWildcards = "wildcards"

	// Rule listing fields.
	FieldSeverity    = "severity"
	FieldDescription = "description"
	FieldTags        = "tags"

	// Statistics fields.
	FieldFilesDiscovered  = "files_discovered"
	FieldFilesProcessed   = "files_processed"
	FieldFilesWithIssues  = "files_with_issues"
	FieldDiagnosticsTotal = "diagnostics_total"
	FieldRuleErrors       = "rule_errors"
	FieldMatches          = "matches"

	// Version fields.
	FieldVersion = "version"
	FieldCommit  = "commit"
	FieldBuilt   = "built"
)
