package importer

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// Shape names a recognised capture layout.
type Shape string

const (
	// ShapeCloudSave is {"data": {"records": [...]}}.
	ShapeCloudSave Shape = "cloud_save"
	// ShapeSocial is {"data": {"followees": [{"records": [...]}, ...]}}.
	ShapeSocial Shape = "social"
)

// Schemas only pin the containers. Entries, and the records of followee 0,
// are checked by Parse so a single bad entry does not sink the import.
const cloudSaveSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["data"],
  "properties": {
    "data": {
      "type": "object",
      "required": ["records"],
      "properties": {
        "records": { "type": "array" }
      }
    }
  }
}`

const socialSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["data"],
  "properties": {
    "data": {
      "type": "object",
      "required": ["followees"],
      "properties": {
        "followees": { "type": "array" }
      }
    }
  }
}`

type shapeSchema struct {
	shape  Shape
	schema *jsonschema.Schema
}

// shapes are tried in order; the first schema that validates wins.
var shapes = sync.OnceValues(func() ([]shapeSchema, error) {
	defs := []struct {
		shape Shape
		src   string
	}{
		{ShapeCloudSave, cloudSaveSchema},
		{ShapeSocial, socialSchema},
	}

	c := jsonschema.NewCompiler()
	out := make([]shapeSchema, 0, len(defs))
	for _, d := range defs {
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader([]byte(d.src)))
		if err != nil {
			return nil, fmt.Errorf("parse %s schema: %w", d.shape, err)
		}
		url := fmt.Sprintf("schema://chartrec/%s.json", d.shape)
		if err := c.AddResource(url, doc); err != nil {
			return nil, fmt.Errorf("add %s schema: %w", d.shape, err)
		}
		sch, err := c.Compile(url)
		if err != nil {
			return nil, fmt.Errorf("compile %s schema: %w", d.shape, err)
		}
		out = append(out, shapeSchema{shape: d.shape, schema: sch})
	}
	return out, nil
})

// detectShape returns the first shape whose schema accepts doc.
func detectShape(doc any) (Shape, error) {
	list, err := shapes()
	if err != nil {
		return "", err
	}
	for _, s := range list {
		if s.schema.Validate(doc) == nil {
			return s.shape, nil
		}
	}
	return "", ErrUnrecognizedShape
}
