package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecord_Validate(t *testing.T) {
	tests := []struct {
		record  *Record
		name    string
		wantErr bool
	}{
		{
			name:   "valid record",
			record: &Record{ID: "42", PostalCode: "98052", UserDefinedID: 7},
		},
		{
			name:    "empty id",
			record:  &Record{PostalCode: "98052"},
			wantErr: true,
		},
		{
			name:    "missing partition key",
			record:  &Record{ID: "42"},
			wantErr: true,
		},
		{
			name:    "userdefinedid out of range",
			record:  &Record{ID: "42", PostalCode: "98052", UserDefinedID: 10},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.record.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestRecord_ResolutionValue(t *testing.T) {
	r := &Record{UserDefinedID: 4, Timestamp: 17}

	v, ok := r.ResolutionValue("/userdefinedid")
	assert.True(t, ok)
	assert.Equal(t, int64(4), v)

	v, ok = r.ResolutionValue("/_ts")
	assert.True(t, ok)
	assert.Equal(t, int64(17), v)

	// Пустой путь означает разрешение по timestamp
	v, ok = r.ResolutionValue("")
	assert.True(t, ok)
	assert.Equal(t, int64(17), v)

	_, ok = r.ResolutionValue("/city")
	assert.False(t, ok)
}

func TestRecord_Clone(t *testing.T) {
	original := &Record{ID: "1", Region: "West US 2", ETag: "abc"}
	clone := original.Clone()

	clone.Region = "North Europe"
	clone.ETag = "def"

	assert.Equal(t, "West US 2", original.Region, "Clone must not share state")
	assert.Equal(t, "abc", original.ETag)

	var nilRecord *Record
	assert.Nil(t, nilRecord.Clone())
}

func TestCollectionRef_Links(t *testing.T) {
	ref := CollectionRef{Database: "demo", Collection: "lww"}

	assert.Equal(t, "dbs/demo/colls/lww", ref.Link())
	assert.Equal(t, "dbs/demo/colls/lww/docs/42", ref.DocumentLink("42"))
	assert.Equal(t, "dbs/demo/colls/lww/conflicts/c1", ref.ConflictLink("c1"))
}

func TestConflictResolutionPolicy_Validate(t *testing.T) {
	assert.NoError(t, ConflictResolutionPolicy{Mode: ResolutionLastWriterWins, ResolutionPath: "/userdefinedid"}.Validate())
	assert.NoError(t, ConflictResolutionPolicy{Mode: ResolutionCustom}.Validate())
	assert.Error(t, ConflictResolutionPolicy{Mode: "Manual"}.Validate())
}
