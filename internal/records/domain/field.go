package domain

// Field is a tri-state sensitive field value for partial updates.
//
// The zero value means "unset": the stored ciphertext is left untouched.
// Clear() means "explicitly cleared": the stored ciphertext is nulled out.
// Set(v) means "set to v": the value is encrypted and overwrites the column.
// The distinction keeps "don't touch" separate from "set to empty".
type Field struct {
	present bool
	value   *string
}

// SetField returns a Field carrying a new plaintext value.
func SetField(value string) Field {
	return Field{present: true, value: &value}
}

// ClearField returns a Field that clears the stored value.
func ClearField() Field {
	return Field{present: true}
}

// Present reports whether the field participates in the mutation.
func (f Field) Present() bool {
	return f.present
}

// Value returns the plaintext value, nil for unset or cleared fields.
func (f Field) Value() *string {
	return f.value
}

// PortField is the tri-state form of the non-sensitive port attribute.
type PortField struct {
	present bool
	value   *int32
}

// SetPort returns a PortField carrying a new port value.
func SetPort(value int32) PortField {
	return PortField{present: true, value: &value}
}

// ClearPort returns a PortField that clears the stored port.
func ClearPort() PortField {
	return PortField{present: true}
}

// Present reports whether the port participates in the mutation.
func (f PortField) Present() bool {
	return f.present
}

// Value returns the port value, nil for unset or cleared fields.
func (f PortField) Value() *int32 {
	return f.value
}

// MetadataField is the tri-state form of the structured metadata attribute.
// The value is serialized to JSON before encryption.
type MetadataField struct {
	present bool
	value   map[string]any
}

// SetMetadata returns a MetadataField carrying new structured metadata.
func SetMetadata(value map[string]any) MetadataField {
	return MetadataField{present: true, value: value}
}

// ClearMetadata returns a MetadataField that clears the stored metadata.
func ClearMetadata() MetadataField {
	return MetadataField{present: true}
}

// Present reports whether the metadata participates in the mutation.
func (f MetadataField) Present() bool {
	return f.present
}

// Value returns the metadata value, nil for unset or cleared fields.
func (f MetadataField) Value() map[string]any {
	return f.value
}

// FieldChanges carries the tri-state field set for a create or partial update.
// Fields left as their zero value are not touched by an update; on create,
// unset fields establish null ciphertext columns.
type FieldChanges struct {
	Username           Field
	Password           Field
	URL                Field
	HostOrIP           Field
	Notes              Field
	StructuredMetadata MetadataField
	Port               PortField
}
