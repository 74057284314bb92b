package parser

import (
	"net/url"
	"path/filepath"

	"github.com/pb33f/libopenapi"
	"github.com/pb33f/libopenapi/datamodel"
	yaml "go.yaml.in/yaml/v4"
)

// loadDocument opens spec. With a spec URL set, relative references resolve
// next to it: on disk for plain paths and file URLs, remotely for http(s).
func (p *OpenAPIParser) loadDocument(spec []byte) (libopenapi.Document, error) {
	cfg, ok := referenceConfig(p.specURL)
	if !ok {
		return libopenapi.NewDocument(spec)
	}
	p.logger.Debug("resolving references", "base", p.specURL)
	return libopenapi.NewDocumentWithConfiguration(spec, cfg)
}

func referenceConfig(specURL string) (*datamodel.DocumentConfiguration, bool) {
	if specURL == "" {
		return nil, false
	}
	u, err := url.Parse(specURL)
	if err != nil {
		return nil, false
	}

	cfg := datamodel.NewDocumentConfiguration()
	switch u.Scheme {
	case "", "file":
		path := u.Path
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
		cfg.BasePath = filepath.Dir(path)
		cfg.SpecFilePath = filepath.Base(path)
		cfg.AllowFileReferences = true
	case "http", "https":
		cfg.BaseURL = u
		cfg.AllowRemoteReferences = true
	default:
		return nil, false
	}
	return cfg, true
}

// exampleValue decodes an example node. Undecodable scalars keep their
// literal text.
func exampleValue(node *yaml.Node) interface{} {
	if node == nil {
		return nil
	}
	var value interface{}
	if err := node.Decode(&value); err == nil {
		return value
	}
	if node.Kind == yaml.ScalarNode {
		return node.Value
	}
	return nil
}
