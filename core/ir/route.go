package ir

// Operation is one HTTP operation of an API definition.
type Operation struct {
	// ID names the operation; it becomes the tool name when served over MCP.
	ID          string
	Method      string
	Path        string
	Summary     string
	Description string
	Tags        []string
	Input       InputDefinition
	// Source records where the operation was loaded from, if anywhere.
	Source string
}
