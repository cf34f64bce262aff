package persistence

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	internalErrors "github.com/gcbaptista/gedcom-search/internal/errors"
	"github.com/gcbaptista/gedcom-search/model"
	"github.com/gcbaptista/gedcom-search/store"
)

func TestSaveAndLoadGob(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "records.gob")

	rs := store.NewRecordStore()
	require.NoError(t, rs.Put(model.Record{Type: model.Family, ID: "@F1@", Fields: model.Fields{"husb.name": {"John Smith"}}}))
	require.NoError(t, SaveGob(path, rs))

	loaded := store.NewRecordStore()
	require.NoError(t, LoadGob(path, loaded))
	fields, err := loaded.RecordFields(model.Family, "@F1@")
	require.NoError(t, err)
	assert.Equal(t, []string{"John Smith"}, fields["husb.name"])

	matches, err := filepath.Glob(filepath.Join(filepath.Dir(path), "*.tmp"))
	require.NoError(t, err)
	assert.Empty(t, matches, "temporary files are cleaned up")
}

func TestLoadGob_MissingFile(t *testing.T) {
	err := LoadGob(filepath.Join(t.TempDir(), "missing.gob"), store.NewRecordStore())
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestLoadRecordFile_JSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records.json")
	content := `[
		{"type": "indi", "id": "@I1@", "fields": {"name": {"givn": "John", "surn": "Smith"}}},
		{"type": "family", "id": "@F1@", "fields": {"event": [{"place": {"name": "Paris"}}]}}
	]`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	records, err := LoadRecordFile(path)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, model.Individual, records[0].Type)
	assert.Equal(t, []string{"Smith"}, records[0].Fields["name.surn"])
	assert.Equal(t, model.Family, records[1].Type)
	assert.Equal(t, []string{"Paris"}, records[1].Fields["event.place.name"])
}

func TestLoadRecordFile_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records.yaml")
	content := `
records:
  - type: sour
    id: "@S1@"
    fields:
      title: Parish register of Saint-Malo
      date: 1850
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	records, err := LoadRecordFile(path)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, model.Source, records[0].Type)
	assert.Equal(t, []string{"Parish register of Saint-Malo"}, records[0].Fields["title"])
	assert.Equal(t, []string{"1850"}, records[0].Fields["date"])
}

func TestParseRecords_Invalid(t *testing.T) {
	_, err := ParseRecords(".json", []byte(`{"type": "indi"}`))
	assert.Error(t, err)

	_, err = ParseRecords(".json", []byte(`[{"type": "indi"}]`))
	assert.True(t, errors.Is(err, internalErrors.ErrInvalidArgument))

	_, err = ParseRecords(".json", []byte(`[1]`))
	assert.Error(t, err)

	records, err := ParseRecords(".yaml", []byte(``))
	require.NoError(t, err)
	assert.Empty(t, records)
}
