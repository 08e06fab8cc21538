package interfaces

import "io"

// TemplateRenderer renders named templates resolved by the theme resolver.
type TemplateRenderer interface {
	Exists(name string) bool
	Render(name string, data any, out ...io.Writer) (string, error)
}
