package schemas

import "embed"

// SchemasFS содержит JSON-схемы событий: events/<имя-события>/v<N>.json
//
//go:embed events
var SchemasFS embed.FS
