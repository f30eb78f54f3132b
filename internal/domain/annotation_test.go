package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func selectType(vt AnnotationValueType, required bool) AnnotationType {
	return AnnotationType{
		UniqueID:  "at-" + string(vt),
		Name:      string(vt),
		ValueType: vt,
		Options:   []string{"a", "b", "c"},
		Required:  required,
	}
}

func TestSingleSelectAnnotation_SelectedValues(t *testing.T) {
	at := selectType(ValueTypeSingleSelect, true)

	tests := []struct {
		name     string
		selected []string
		want     string
		wantErr  string
	}{
		{name: "none", selected: []string{}},
		{name: "one", selected: []string{"b"}, want: "b"},
		{name: "many", selected: []string{"a", "b"}, wantErr: "invalid value for selected values"},
		{name: "not an option", selected: []string{"z"}, wantErr: "invalid selected value: z"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := NewAnnotation(at, &ServerAnnotation{AnnotationTypeID: at.UniqueID, SelectedValues: tt.selected})
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Equal(t, tt.wantErr, err.Error())
				assert.Equal(t, KindDomain, KindOf(err))
				return
			}
			require.NoError(t, err)
			ss := a.(*SingleSelectAnnotation)
			assert.Equal(t, tt.want, ss.Value)
			assert.Equal(t, tt.want != "", a.IsValueValid())
			assert.Equal(t, tt.selected, a.ServerAnnotation().SelectedValues)
		})
	}
}

func TestNewAnnotation_Types(t *testing.T) {
	text := AnnotationType{UniqueID: "t", Name: "note", ValueType: ValueTypeText}
	a, err := NewAnnotation(text, &ServerAnnotation{AnnotationTypeID: "t", StringValue: "hello"})
	require.NoError(t, err)
	assert.Equal(t, "hello", a.DisplayValue())
	assert.Equal(t, ServerAnnotation{AnnotationTypeID: "t", StringValue: "hello", SelectedValues: []string{}}, a.ServerAnnotation())

	num := AnnotationType{UniqueID: "n", Name: "weight", ValueType: ValueTypeNumber}
	a, err = NewAnnotation(num, &ServerAnnotation{AnnotationTypeID: "n", NumberValue: "72.5"})
	require.NoError(t, err)
	assert.Equal(t, 72.5, *a.(*NumberAnnotation).Value)
	assert.Equal(t, "72.5", a.ServerAnnotation().NumberValue)

	_, err = NewAnnotation(num, &ServerAnnotation{AnnotationTypeID: "n", NumberValue: "heavy"})
	assert.Error(t, err)

	dt := AnnotationType{UniqueID: "d", Name: "dob", ValueType: ValueTypeDateTime}
	a, err = NewAnnotation(dt, &ServerAnnotation{AnnotationTypeID: "d", StringValue: "2001-02-03T04:05:06Z"})
	require.NoError(t, err)
	assert.True(t, a.(*DateTimeAnnotation).Value.Equal(time.Date(2001, 2, 3, 4, 5, 6, 0, time.UTC)))

	multi := selectType(ValueTypeMultipleSelect, false)
	a, err = NewAnnotation(multi, &ServerAnnotation{AnnotationTypeID: multi.UniqueID, SelectedValues: []string{"a", "c"}})
	require.NoError(t, err)
	assert.Equal(t, "a, c", a.DisplayValue())
	assert.Equal(t, []string{"a", "c"}, a.ServerAnnotation().SelectedValues)

	_, err = NewAnnotation(text, &ServerAnnotation{AnnotationTypeID: "other"})
	assert.Error(t, err)
}

func TestNewAnnotation_NoServerValue(t *testing.T) {
	at := AnnotationType{UniqueID: "t", Name: "note", ValueType: ValueTypeText, Required: true}
	a, err := NewAnnotation(at, nil)
	require.NoError(t, err)
	assert.False(t, a.HasValue())
	assert.False(t, a.IsValueValid())

	at.Required = false
	a, err = NewAnnotation(at, nil)
	require.NoError(t, err)
	assert.True(t, a.IsValueValid())
}

func TestAnnotationType_Check(t *testing.T) {
	assert.NoError(t, selectType(ValueTypeSingleSelect, false).Check())
	assert.Error(t, AnnotationType{Name: "x", ValueType: "colour"}.Check())
	assert.Error(t, AnnotationType{Name: "x", ValueType: ValueTypeMultipleSelect}.Check())
	assert.Error(t, AnnotationType{ValueType: ValueTypeText}.Check())

	single := selectType(ValueTypeSingleSelect, false)
	single.MaxValueCount = 2
	assert.Error(t, single.Check())
}

func TestAnnotationType_Command(t *testing.T) {
	at := selectType(ValueTypeSingleSelect, true)
	at.Description = "pick one"
	cmd := at.Command()
	assert.NotContains(t, cmd, "uniqueId")
	assert.Equal(t, "pick one", cmd["description"])
	assert.Equal(t, true, cmd["required"])
	assert.NotContains(t, cmd, "maxValueCount")

	assert.Equal(t, []string{}, AnnotationType{Name: "n", ValueType: ValueTypeText}.Command()["options"])
}

func TestParticipant_SetStudyAndAddCommand(t *testing.T) {
	study := Studies.MustCreate(studyPayload(t, nil))

	p, err := NewParticipant(study, "P-001")
	require.NoError(t, err)
	assert.True(t, p.IsNew())
	assert.Same(t, study, p.Study())
	require.Len(t, p.AnnotationList(), 1)

	_, err = p.AddCommand()
	require.Error(t, err)
	assert.Equal(t, "required annotation has no value: annotationId: at1", err.Error())

	a, ok := p.Annotation("at1")
	require.True(t, ok)
	a.(*SingleSelectAnnotation).Value = "female"

	cmd, err := p.AddCommand()
	require.NoError(t, err)
	assert.Equal(t, "s1", cmd["studyId"])
	assert.Equal(t, "P-001", cmd["uniqueId"])
	assert.Equal(t, []ServerAnnotation{{AnnotationTypeID: "at1", SelectedValues: []string{"female"}}}, cmd["annotations"])
}

func TestParticipant_SetStudyMismatch(t *testing.T) {
	study := Studies.MustCreate(studyPayload(t, nil))
	p := &Participant{StudyID: "other", UniqueID: "P-002"}
	assert.Equal(t, KindDomain, KindOf(p.SetStudy(study)))
}

func TestParticipant_FromServer(t *testing.T) {
	raw := []byte(`{"id":"p1","version":3,"studyId":"s1","uniqueId":"P-001",
		"annotations":[{"annotationTypeId":"at1","selectedValues":["male"]}]}`)
	p, err := Participants.Create(raw)
	require.NoError(t, err)
	assert.Nil(t, p.AnnotationList())

	require.NoError(t, p.SetStudy(Studies.MustCreate(studyPayload(t, nil))))
	a, ok := p.Annotation("at1")
	require.True(t, ok)
	assert.Equal(t, "male", a.DisplayValue())
}

func TestFindAnnotationType(t *testing.T) {
	study := Studies.MustCreate(studyPayload(t, nil))
	at, ok := FindAnnotationType(study, "at1")
	assert.True(t, ok)
	assert.Equal(t, "Gender", at.Name)

	_, ok = FindAnnotationType(study, "missing")
	assert.False(t, ok)
}
