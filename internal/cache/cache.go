// Package cache loads, validates, and merges the unified lineage cache
// file. The on-disk format accepts two shapes for
// objects (map-by-id or a bare list) and two shapes for dependencies (a
// flat list, or a {table_level, column_level} split); this package decodes
// either shape and remembers which one it saw so a later merge can write
// the same shape back out.
package cache

import (
	"bytes"
	"encoding/json"
	"io"
	"sort"

	"github.com/lineagehub/lineage/internal/lineageerrors"
	"github.com/lineagehub/lineage/internal/model"
)

// objectShape and depShape record which on-disk container shape a Cache
// was decoded from, so Save and Merge can write the same shape back out.
type objectShape int

const (
	shapeObjectMap objectShape = iota
	shapeObjectList
)

type depShape int

const (
	shapeDepFlat depShape = iota
	shapeDepSplit
)

// Metadata is the cache file's free-form metadata block. Known fields have
// typed accessors; anything else (namespaced merge stats, extractor-
// specific keys) is preserved verbatim through Extra.
type Metadata struct {
	Version         string                 `json:"version"`
	GeneratedAt     string                 `json:"generated_at"`
	SourceDatabase  string                 `json:"source_database,omitempty"`
	Source          string                 `json:"source,omitempty"`
	ObjectCount     int                    `json:"object_count"`
	DependencyCount int                    `json:"dependency_count"`
	ColumnCount     int                    `json:"column_count,omitempty"`
	MergedAt        string                 `json:"merged_at,omitempty"`
	Extra           map[string]interface{} `json:"-"`
}

// Cache is the in-memory form of the unified lineage cache.
type Cache struct {
	Metadata   Metadata
	Objects    map[string]*model.Object
	TableDeps  []model.TableDependency
	ColumnDeps []model.ColumnDependency

	objShape objectShape
	depShape depShape
}

type wireDependencies struct {
	TableLevel  []model.TableDependency  `json:"table_level"`
	ColumnLevel []model.ColumnDependency `json:"column_level"`
}

type wireCache struct {
	Metadata     json.RawMessage `json:"metadata"`
	Objects      json.RawMessage `json:"objects"`
	Dependencies json.RawMessage `json:"dependencies"`
}

// Load decodes a cache file, accepting both on-disk container shapes. It
// returns InvalidCache when a required section is missing or the objects
// set is empty.
func Load(r io.Reader) (*Cache, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var w wireCache
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, lineageerrors.ErrInvalidCache.New("malformed JSON: " + err.Error())
	}
	if len(w.Metadata) == 0 || len(w.Objects) == 0 || len(w.Dependencies) == 0 {
		return nil, lineageerrors.ErrInvalidCache.New("missing metadata, objects, or dependencies section")
	}

	c := &Cache{}
	if err := decodeMetadata(w.Metadata, &c.Metadata); err != nil {
		return nil, lineageerrors.ErrInvalidCache.New("metadata: " + err.Error())
	}
	if err := c.decodeObjects(w.Objects); err != nil {
		return nil, lineageerrors.ErrInvalidCache.New("objects: " + err.Error())
	}
	if len(c.Objects) == 0 {
		return nil, lineageerrors.ErrInvalidCache.New("objects set is empty")
	}
	if err := c.decodeDependencies(w.Dependencies); err != nil {
		return nil, lineageerrors.ErrInvalidCache.New("dependencies: " + err.Error())
	}
	return c, nil
}

func decodeMetadata(raw json.RawMessage, m *Metadata) error {
	if err := json.Unmarshal(raw, m); err != nil {
		return err
	}
	var extra map[string]interface{}
	if err := json.Unmarshal(raw, &extra); err != nil {
		return err
	}
	for _, known := range []string{"version", "generated_at", "source_database", "source",
		"object_count", "dependency_count", "column_count", "merged_at"} {
		delete(extra, known)
	}
	m.Extra = extra
	return nil
}

func (c *Cache) decodeObjects(raw json.RawMessage) error {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil
	}
	if trimmed[0] == '[' {
		c.objShape = shapeObjectList
		var list []*model.Object
		if err := json.Unmarshal(raw, &list); err != nil {
			return err
		}
		c.Objects = make(map[string]*model.Object, len(list))
		for _, obj := range list {
			c.Objects[obj.ID] = obj
		}
		return nil
	}
	c.objShape = shapeObjectMap
	return json.Unmarshal(raw, &c.Objects)
}

func (c *Cache) decodeDependencies(raw json.RawMessage) error {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil
	}
	if trimmed[0] == '[' {
		c.depShape = shapeDepFlat
		return json.Unmarshal(raw, &c.TableDeps)
	}
	c.depShape = shapeDepSplit
	var w wireDependencies
	if err := json.Unmarshal(raw, &w); err != nil {
		return err
	}
	c.TableDeps = w.TableLevel
	c.ColumnDeps = w.ColumnLevel
	return nil
}

// Save encodes the cache back to its original container shapes. A
// list-shaped objects section is written sorted by id.
func (c *Cache) Save(w io.Writer) error {
	out := map[string]interface{}{}

	meta := map[string]interface{}{}
	for k, v := range c.Metadata.Extra {
		meta[k] = v
	}
	meta["version"] = c.Metadata.Version
	meta["generated_at"] = c.Metadata.GeneratedAt
	if c.Metadata.SourceDatabase != "" {
		meta["source_database"] = c.Metadata.SourceDatabase
	}
	if c.Metadata.Source != "" {
		meta["source"] = c.Metadata.Source
	}
	meta["object_count"] = len(c.Objects)
	meta["dependency_count"] = len(c.TableDeps)
	if len(c.ColumnDeps) > 0 {
		meta["column_count"] = len(c.ColumnDeps)
	}
	if c.Metadata.MergedAt != "" {
		meta["merged_at"] = c.Metadata.MergedAt
	}
	out["metadata"] = meta

	if c.objShape == shapeObjectList {
		list := make([]*model.Object, 0, len(c.Objects))
		for _, obj := range c.Objects {
			list = append(list, obj)
		}
		sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
		out["objects"] = list
	} else {
		out["objects"] = c.Objects
	}

	if c.depShape == shapeDepFlat {
		out["dependencies"] = c.TableDeps
	} else {
		out["dependencies"] = wireDependencies{TableLevel: c.TableDeps, ColumnLevel: c.ColumnDeps}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
