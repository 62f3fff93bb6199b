package ports

import "go.trai.ch/forge/internal/core/domain"

// GraphLoader turns the declarative build file in a working directory into a
// validated action graph.
//
//go:generate go run go.uber.org/mock/mockgen -source=graph_loader.go -destination=mocks/mock_graph_loader.go -package=mocks
type GraphLoader interface {
	// Load reads the build configuration from cwd and returns the resolved
	// rule graph. Unresolved dependency targets and cycles are configuration
	// errors.
	Load(cwd string) (*domain.Graph, error)
}
