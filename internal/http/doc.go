// Package http exposes the layout editor and placeholder previews over HTTP.
//
// Routes mount under /xtheme by default:
//   - POST /{view}/{placeholder}/commands applies an editor command (JSON or form body)
//   - GET  /{view}/{placeholder} renders a placeholder preview
//   - GET  /_versions/{view} lists the stored versions of a view
//   - POST /themes/{id}/activate activates a theme for the request tenant
//
// Host applications mount Routes() on their own router.
package http
