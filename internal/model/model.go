package model

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Column is an ordered member of an Object's schema.
type Column struct {
	Name            string `json:"name"`
	DataType        string `json:"data_type"`
	OrdinalPosition *int   `json:"ordinal_position,omitempty"`
	Nullable        *bool  `json:"nullable,omitempty"`
	PrimaryKey      bool   `json:"primary_key,omitempty"`
	Description     string `json:"description,omitempty"`
}

// Parameter is a declared UDF input parameter.
type Parameter struct {
	Name     string `json:"name"`
	DataType string `json:"data_type"`
}

// ViewPayload holds the fields specific to ObjectKind KindView.
type ViewPayload struct {
	Definition string `json:"definition"`
}

// UDFPayload holds the fields specific to ObjectKind KindUDF (and, loosely,
// KindProcedure when the procedure body is itself a script).
type UDFPayload struct {
	UDFType         string      `json:"udf_type"`
	ScriptLanguage  string      `json:"script_language"`
	ScriptText      string      `json:"script_text"`
	InputParameters []Parameter `json:"input_parameters,omitempty"`
	OutputColumns   []Column    `json:"output_columns,omitempty"`
}

// VirtualSchemaPayload holds the fields specific to ObjectKind KindVirtualSchema.
type VirtualSchemaPayload struct {
	AdapterName    string `json:"adapter_name"`
	ConnectionName string `json:"connection_name"`
	RemoteSchema   string `json:"remote_schema"`
}

// ConnectionPayload holds the fields specific to ObjectKind KindConnection.
type ConnectionPayload struct {
	ConnectionString string `json:"connection_string"`
	User             string `json:"user"`
}

// Object is the normalized, cross-platform representation of a single
// lineage-visible entity. Kind is the discriminant; at most one of View,
// UDF, VirtualSchema, Connection is populated, selected by Kind. On-disk the
// payload fields are flattened into the same JSON object as the common
// fields via MarshalJSON/UnmarshalJSON below, so the wire format never
// exposes the Go-level variant wrapping.
type Object struct {
	ID          string     `json:"id"`
	Schema      string     `json:"schema"`
	Name        string     `json:"name"`
	Kind        ObjectKind `json:"kind"`
	Platform    string     `json:"platform,omitempty"`
	Owner       string     `json:"owner"`
	NumericTag  int64      `json:"numeric_tag"`
	CreatedAt   *time.Time `json:"created_at,omitempty"`
	ModifiedAt  *time.Time `json:"modified_at,omitempty"`
	Description string     `json:"description,omitempty"`
	Columns     []Column   `json:"columns,omitempty"`

	View          *ViewPayload          `json:"-"`
	UDF           *UDFPayload           `json:"-"`
	VirtualSchema *VirtualSchemaPayload `json:"-"`
	Connection    *ConnectionPayload    `json:"-"`
}

// objectWire is the flat on-disk shape: common fields plus every
// kind-specific field inlined at the top level.
type objectWire struct {
	ID          string     `json:"id"`
	Schema      string     `json:"schema"`
	Name        string     `json:"name"`
	Kind        ObjectKind `json:"kind"`
	Platform    string     `json:"platform,omitempty"`
	Owner       string     `json:"owner"`
	NumericTag  int64      `json:"numeric_tag"`
	CreatedAt   *time.Time `json:"created_at,omitempty"`
	ModifiedAt  *time.Time `json:"modified_at,omitempty"`
	Description string     `json:"description,omitempty"`
	Columns     []Column   `json:"columns,omitempty"`

	Definition string `json:"definition,omitempty"`

	UDFType         string      `json:"udf_type,omitempty"`
	ScriptLanguage  string      `json:"script_language,omitempty"`
	ScriptText      string      `json:"script_text,omitempty"`
	InputParameters []Parameter `json:"input_parameters,omitempty"`
	OutputColumns   []Column    `json:"output_columns,omitempty"`

	AdapterName    string `json:"adapter_name,omitempty"`
	ConnectionName string `json:"connection_name,omitempty"`
	RemoteSchema   string `json:"remote_schema,omitempty"`

	ConnectionString string `json:"connection_string,omitempty"`
	User             string `json:"user,omitempty"`
}

func (o Object) MarshalJSON() ([]byte, error) {
	w := objectWire{
		ID: o.ID, Schema: o.Schema, Name: o.Name, Kind: o.Kind,
		Platform: o.Platform, Owner: o.Owner, NumericTag: o.NumericTag,
		CreatedAt: o.CreatedAt, ModifiedAt: o.ModifiedAt,
		Description: o.Description, Columns: o.Columns,
	}
	if o.View != nil {
		w.Definition = o.View.Definition
	}
	if o.UDF != nil {
		w.UDFType = o.UDF.UDFType
		w.ScriptLanguage = o.UDF.ScriptLanguage
		w.ScriptText = o.UDF.ScriptText
		w.InputParameters = o.UDF.InputParameters
		w.OutputColumns = o.UDF.OutputColumns
	}
	if o.VirtualSchema != nil {
		w.AdapterName = o.VirtualSchema.AdapterName
		w.ConnectionName = o.VirtualSchema.ConnectionName
		w.RemoteSchema = o.VirtualSchema.RemoteSchema
	}
	if o.Connection != nil {
		w.ConnectionString = o.Connection.ConnectionString
		w.User = o.Connection.User
	}
	return json.Marshal(w)
}

func (o *Object) UnmarshalJSON(data []byte) error {
	var w objectWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*o = Object{
		ID: w.ID, Schema: w.Schema, Name: w.Name, Kind: w.Kind,
		Platform: w.Platform, Owner: w.Owner, NumericTag: w.NumericTag,
		CreatedAt: w.CreatedAt, ModifiedAt: w.ModifiedAt,
		Description: w.Description, Columns: w.Columns,
	}
	switch w.Kind {
	case KindView:
		o.View = &ViewPayload{Definition: w.Definition}
	case KindUDF, KindProcedure:
		if w.ScriptText != "" || w.ScriptLanguage != "" || w.UDFType != "" ||
			len(w.InputParameters) > 0 || len(w.OutputColumns) > 0 {
			o.UDF = &UDFPayload{
				UDFType:         w.UDFType,
				ScriptLanguage:  w.ScriptLanguage,
				ScriptText:      w.ScriptText,
				InputParameters: w.InputParameters,
				OutputColumns:   w.OutputColumns,
			}
		}
	case KindVirtualSchema:
		o.VirtualSchema = &VirtualSchemaPayload{
			AdapterName:    w.AdapterName,
			ConnectionName: w.ConnectionName,
			RemoteSchema:   w.RemoteSchema,
		}
	case KindConnection:
		o.Connection = &ConnectionPayload{
			ConnectionString: w.ConnectionString,
			User:             w.User,
		}
	}
	return nil
}

// TableDependency is a directed table-level edge, from upstream producer
// to downstream consumer.
type TableDependency struct {
	SourceID       string         `json:"source_id"`
	TargetID       string         `json:"target_id"`
	DependencyKind DependencyKind `json:"dependency_kind"`
	ReferenceKind  ReferenceKind  `json:"reference_kind"`
}

// tableDependencyWire accepts every historical alias a table-level
// dependency's endpoint fields may be encoded under: source_object_id,
// then source_id, then source, tried in that order (symmetrically for the
// target).
type tableDependencyWire struct {
	SourceID       string         `json:"source_id"`
	SourceObjectID string         `json:"source_object_id"`
	Source         string         `json:"source"`
	TargetID       string         `json:"target_id"`
	TargetObjectID string         `json:"target_object_id"`
	Target         string         `json:"target"`
	DependencyKind DependencyKind `json:"dependency_kind"`
	ReferenceKind  ReferenceKind  `json:"reference_kind"`
}

func (d TableDependency) MarshalJSON() ([]byte, error) {
	w := tableDependencyWire{
		SourceID: d.SourceID, TargetID: d.TargetID,
		DependencyKind: d.DependencyKind, ReferenceKind: d.ReferenceKind,
	}
	return json.Marshal(w)
}

func (d *TableDependency) UnmarshalJSON(data []byte) error {
	var w tableDependencyWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	d.SourceID = firstNonEmpty(w.SourceObjectID, w.SourceID, w.Source)
	d.TargetID = firstNonEmpty(w.TargetObjectID, w.TargetID, w.Target)
	d.DependencyKind = w.DependencyKind
	d.ReferenceKind = w.ReferenceKind
	return nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

// Key returns the de-duplication key for a table-level edge.
func (d TableDependency) Key() [2]string {
	return [2]string{d.SourceID, d.TargetID}
}

// ColumnDependency is a directed column-level edge carrying a
// transformation classification.
type ColumnDependency struct {
	SourceObjectID     string             `json:"source_object_id"`
	SourceColumn       string             `json:"source_column"`
	TargetObjectID     string             `json:"target_object_id"`
	TargetColumn       string             `json:"target_column"`
	Transformation     string             `json:"transformation,omitempty"`
	TransformationKind TransformationKind `json:"transformation_kind"`
}

// ColumnDepKey is the de-duplication key for a column-level edge.
type ColumnDepKey struct {
	SourceID, SourceColumn, TargetID, TargetColumn string
}

func (d ColumnDependency) Key() ColumnDepKey {
	return ColumnDepKey{d.SourceObjectID, d.SourceColumn, d.TargetObjectID, d.TargetColumn}
}

// ColumnNodeKey is the "{object_id}:{column_name}" string key used by the
// column-level graph.
func ColumnNodeKey(objectID, column string) string {
	return objectID + ":" + column
}

// Validate checks the invariants that are local to a single object (closed
// kind enumeration, non-empty id and name; schema is not checked).
// Cross-object invariants
// (uniqueness, dependency endpoint resolution) are checked by the cache and
// graph packages, which have the full object set in view.
func (o Object) Validate() error {
	if o.ID == "" {
		return fmt.Errorf("object has empty id")
	}
	if o.Name == "" {
		return fmt.Errorf("object %s has empty name", o.ID)
	}
	if !o.Kind.Valid() {
		return fmt.Errorf("object %s has unknown kind %q", o.ID, o.Kind)
	}
	return nil
}

func (d TableDependency) Validate() error {
	if d.SourceID == "" || d.TargetID == "" {
		return fmt.Errorf("table dependency has empty endpoint: %+v", d)
	}
	if d.DependencyKind != "" && !d.DependencyKind.Valid() {
		return fmt.Errorf("table dependency %s->%s has unknown dependency_kind %q", d.SourceID, d.TargetID, d.DependencyKind)
	}
	return nil
}

// CanonicalizeID applies the producing extractor's canonicalization rule:
// single-namespace ids are uppercased, platform-qualified ids (lowercase
// "platform:" prefix) are left verbatim.
func CanonicalizeID(id string) string {
	if i := strings.IndexByte(id, ':'); i > 0 {
		prefix := id[:i]
		if prefix == strings.ToLower(prefix) {
			return id // platform-qualified form, verbatim
		}
	}
	return strings.ToUpper(id)
}
