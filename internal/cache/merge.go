package cache

import (
	"encoding/json"

	"github.com/sirupsen/logrus"

	"github.com/lineagehub/lineage/internal/model"
)

// MergeStats reports what a Merge call actually did, attached to the
// merged cache's metadata under a namespaced key.
type MergeStats struct {
	ObjectsAdded      int `json:"objects_added"`
	DependenciesAdded int `json:"dependencies_added"`
	ColumnDepsAdded   int `json:"column_deps_added"`
	TagCollisions     int `json:"numeric_tag_collisions"`
}

// Merge combines incoming into base, preserving base's on-disk container
// shapes. It never mutates either input; it returns a new *Cache.
func Merge(base, incoming *Cache, mergedAt string) (*Cache, MergeStats) {
	var stats MergeStats

	merged := &Cache{
		Metadata: base.Metadata,
		Objects:  make(map[string]*model.Object, len(base.Objects)+len(incoming.Objects)),
		objShape: base.objShape,
		depShape: base.depShape,
	}
	merged.TableDeps = append(merged.TableDeps, base.TableDeps...)
	merged.ColumnDeps = append(merged.ColumnDeps, base.ColumnDeps...)

	tagsByObject := map[int64]*model.Object{}
	for id, obj := range base.Objects {
		merged.Objects[id] = obj
		if obj.NumericTag != 0 {
			tagsByObject[obj.NumericTag] = obj
		}
	}

	for id, obj := range incoming.Objects {
		if _, exists := merged.Objects[id]; exists {
			continue // first wins, new is discarded
		}
		if prior, collide := tagsByObject[obj.NumericTag]; collide && obj.NumericTag != 0 && !objectsEqual(prior, obj) {
			stats.TagCollisions++
			logrus.WithFields(logrus.Fields{
				"numeric_tag": obj.NumericTag,
				"kept_id":     prior.ID,
				"dropped_id":  obj.ID,
			}).Warn("numeric_tag collision across merged sources; keeping first")
			continue
		}
		merged.Objects[id] = obj
		if obj.NumericTag != 0 {
			tagsByObject[obj.NumericTag] = obj
		}
		stats.ObjectsAdded++
	}

	existingTableKeys := make(map[[2]string]bool, len(merged.TableDeps))
	for _, d := range merged.TableDeps {
		existingTableKeys[d.Key()] = true
	}
	for _, d := range incoming.TableDeps {
		if existingTableKeys[d.Key()] {
			continue
		}
		existingTableKeys[d.Key()] = true
		merged.TableDeps = append(merged.TableDeps, d)
		stats.DependenciesAdded++
	}

	existingColumnKeys := make(map[model.ColumnDepKey]bool, len(merged.ColumnDeps))
	for _, d := range merged.ColumnDeps {
		existingColumnKeys[d.Key()] = true
	}
	for _, d := range incoming.ColumnDeps {
		if existingColumnKeys[d.Key()] {
			continue
		}
		existingColumnKeys[d.Key()] = true
		merged.ColumnDeps = append(merged.ColumnDeps, d)
		stats.ColumnDepsAdded++
	}

	merged.Metadata.MergedAt = mergedAt
	extra := map[string]interface{}{}
	for k, v := range base.Metadata.Extra {
		extra[k] = v
	}
	raw, _ := json.Marshal(stats)
	var statsMap map[string]interface{}
	_ = json.Unmarshal(raw, &statsMap)
	extra["merge_stats"] = statsMap
	merged.Metadata.Extra = extra

	return merged, stats
}

// objectsEqual reports whether two objects are identical for the purposes
// of a numeric_tag collision check: compared by their canonical JSON
// encoding rather than field-by-field, since Object carries variant
// payloads behind a custom marshaler.
func objectsEqual(a, b *model.Object) bool {
	ja, errA := json.Marshal(a)
	jb, errB := json.Marshal(b)
	if errA != nil || errB != nil {
		return false
	}
	return string(ja) == string(jb)
}
