package domain

// Status represents lifecycle states for saved view configurations.
type Status string

const (
	// StatusDraft marks the single editable configuration for a view.
	StatusDraft Status = "CURRENT_DRAFT"
	// StatusPublic identifies the configuration served to visitors.
	StatusPublic Status = "PUBLIC"
	// StatusOldVersion marks a configuration retained for history after being superseded.
	StatusOldVersion Status = "OLD_VERSION"
)
