package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cbsr/biobank/internal/domain"
)

func genderAnnotation() []any {
	return []any{map[string]any{"annotationTypeId": "at1", "selectedValues": []string{"female"}}}
}

func TestParticipantService_AddRejectsMissingRequiredAnnotation(t *testing.T) {
	api := newFake()
	svc := NewParticipantService(api)
	study := loadStudy(t, 1, "enabled")

	p, err := domain.NewParticipant(study, "P-1")
	require.NoError(t, err)

	_, err = svc.Add(context.Background(), p)
	assert.EqualError(t, err, "required annotation has no value: annotationId: at1")
	assert.Empty(t, api.calls)
}

func TestParticipantService_AddKeepsStudy(t *testing.T) {
	api := newFake()
	api.reply("POST", "/participants/s1", participantJSON(t, 0, "P-1", genderAnnotation()))
	svc := NewParticipantService(api)
	study := loadStudy(t, 1, "enabled")

	p, err := domain.NewParticipant(study, "P-1")
	require.NoError(t, err)
	a, ok := p.Annotation("at1")
	require.True(t, ok)
	a.(*domain.SingleSelectAnnotation).Value = "female"

	added, err := svc.Add(context.Background(), p)
	require.NoError(t, err)
	assert.Same(t, study, added.Study())

	body := api.last(t).body
	assert.Equal(t, "s1", body["studyId"])
	assert.Equal(t, "P-1", body["uniqueId"])
	assert.Equal(t, []any{map[string]any{"annotationTypeId": "at1", "selectedValues": []any{"female"}}}, body["annotations"])

	got, ok := added.Annotation("at1")
	require.True(t, ok)
	assert.Equal(t, "female", got.DisplayValue())
}

func TestParticipantService_UpdateUniqueID(t *testing.T) {
	api := newFake()
	api.reply("POST", "/participants/uniqueId/p1", participantJSON(t, 4, "P-2", genderAnnotation()))
	svc := NewParticipantService(api)
	study := loadStudy(t, 1, "enabled")

	p := domain.Participants.MustCreate(participantJSON(t, 3, "P-1", genderAnnotation()))
	require.NoError(t, p.SetStudy(study))

	updated, err := svc.UpdateUniqueID(context.Background(), p, "P-2")
	require.NoError(t, err)
	assert.Equal(t, "P-2", updated.UniqueID)
	assert.EqualValues(t, 4, updated.Version)
	assert.Same(t, study, updated.Study())
	assert.EqualValues(t, 3, api.last(t).body["expectedVersion"])
}

func TestParticipantService_RemoveAnnotation(t *testing.T) {
	api := newFake()
	api.reply("DELETE", "/participants/annot/p1/3/at1", participantJSON(t, 4, "P-1", nil))
	svc := NewParticipantService(api)

	p := domain.Participants.MustCreate(participantJSON(t, 3, "P-1", genderAnnotation()))

	updated, err := svc.RemoveAnnotation(context.Background(), p, "at1")
	require.NoError(t, err)
	assert.Empty(t, updated.Annotations)

	_, err = svc.RemoveAnnotation(context.Background(), p, "nope")
	assert.Equal(t, domain.KindDomain, domain.KindOf(err))
}

func TestParticipantService_GetByUniqueID(t *testing.T) {
	api := newFake()
	api.reply("GET", "/participants/uniqueId/s1/P-1", participantJSON(t, 1, "P-1", genderAnnotation()))
	study := loadStudy(t, 1, "enabled")

	p, err := NewParticipantService(api).GetByUniqueID(context.Background(), study, "P-1")
	require.NoError(t, err)
	assert.Same(t, study, p.Study())
}
