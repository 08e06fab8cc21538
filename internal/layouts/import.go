package layouts

import (
	"github.com/goliatone/go-xtheme/internal/domain"
	"github.com/goliatone/go-xtheme/internal/validation"
)

// Import validates data against the layout schema before decoding it.
// Schema failures surface as ValidationErrors.
func Import(data []byte) (*Layout, error) {
	if err := validation.ValidateLayoutDocument(data); err != nil {
		return nil, domain.NewValidationError(err, "invalid layout document")
	}
	return Unserialize(data)
}
