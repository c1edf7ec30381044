// Package dto provides data transfer objects for the protected records HTTP API.
//
// Mutation requests carry tri-state sensitive fields: a JSON key that is
// omitted leaves the stored value unchanged, an explicit null clears it, and a
// value overwrites it. The Optional* types capture that distinction during
// unmarshalling, since encoding/json alone cannot tell "absent" from "null".
package dto

import (
	"encoding/json"

	validation "github.com/jellydator/validation"

	recordsDomain "github.com/fieldvault/fieldvault/internal/records/domain"
	customValidation "github.com/fieldvault/fieldvault/internal/validation"
)

// OptionalString is a tri-state JSON string: absent, null, or a value.
type OptionalString struct {
	Present bool
	Value   *string
}

// UnmarshalJSON marks the field present and captures null vs value.
func (o *OptionalString) UnmarshalJSON(data []byte) error {
	o.Present = true
	if string(data) == "null" {
		o.Value = nil
		return nil
	}
	var value string
	if err := json.Unmarshal(data, &value); err != nil {
		return err
	}
	o.Value = &value
	return nil
}

// OptionalInt32 is a tri-state JSON integer: absent, null, or a value.
type OptionalInt32 struct {
	Present bool
	Value   *int32
}

// UnmarshalJSON marks the field present and captures null vs value.
func (o *OptionalInt32) UnmarshalJSON(data []byte) error {
	o.Present = true
	if string(data) == "null" {
		o.Value = nil
		return nil
	}
	var value int32
	if err := json.Unmarshal(data, &value); err != nil {
		return err
	}
	o.Value = &value
	return nil
}

// OptionalMetadata is a tri-state JSON object: absent, null, or a value.
type OptionalMetadata struct {
	Present bool
	Value   map[string]any
}

// UnmarshalJSON marks the field present and captures null vs value.
func (o *OptionalMetadata) UnmarshalJSON(data []byte) error {
	o.Present = true
	if string(data) == "null" {
		o.Value = nil
		return nil
	}
	return json.Unmarshal(data, &o.Value)
}

// SensitiveFields carries the tri-state mutation fields shared by create and
// update requests.
type SensitiveFields struct {
	Username           OptionalString   `json:"username"`
	Password           OptionalString   `json:"password"`
	URL                OptionalString   `json:"url"`
	HostOrIP           OptionalString   `json:"host_or_ip"`
	Notes              OptionalString   `json:"notes"`
	Port               OptionalInt32    `json:"port"`
	StructuredMetadata OptionalMetadata `json:"structured_metadata"`
}

// FieldChanges converts the request fields into the domain tri-state form.
func (s *SensitiveFields) FieldChanges() recordsDomain.FieldChanges {
	changes := recordsDomain.FieldChanges{}

	type pair struct {
		in  OptionalString
		out *recordsDomain.Field
	}
	for _, p := range []pair{
		{s.Username, &changes.Username},
		{s.Password, &changes.Password},
		{s.URL, &changes.URL},
		{s.HostOrIP, &changes.HostOrIP},
		{s.Notes, &changes.Notes},
	} {
		if !p.in.Present {
			continue
		}
		if p.in.Value == nil {
			*p.out = recordsDomain.ClearField()
		} else {
			*p.out = recordsDomain.SetField(*p.in.Value)
		}
	}

	if s.Port.Present {
		if s.Port.Value == nil {
			changes.Port = recordsDomain.ClearPort()
		} else {
			changes.Port = recordsDomain.SetPort(*s.Port.Value)
		}
	}

	if s.StructuredMetadata.Present {
		if s.StructuredMetadata.Value == nil {
			changes.StructuredMetadata = recordsDomain.ClearMetadata()
		} else {
			changes.StructuredMetadata = recordsDomain.SetMetadata(s.StructuredMetadata.Value)
		}
	}

	return changes
}

// CreateRecordRequest contains the parameters for creating a protected record.
type CreateRecordRequest struct {
	OwnerID     int64  `json:"owner_id"`
	RecordType  string `json:"record_type"`
	DisplayName string `json:"display_name"`
	CreatedBy   string `json:"created_by"`
	SensitiveFields
}

// Validate checks if the create record request is valid.
func (r *CreateRecordRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.OwnerID, validation.Required, validation.Min(int64(1))),
		validation.Field(&r.DisplayName,
			validation.Required,
			customValidation.NotBlank,
			validation.Length(1, 255),
		),
		validation.Field(&r.RecordType, validation.Length(0, 100)),
		validation.Field(&r.CreatedBy, validation.Length(0, 255)),
	)
}

// UpdateRecordRequest contains the tri-state fields for a partial update.
type UpdateRecordRequest struct {
	SensitiveFields
}
