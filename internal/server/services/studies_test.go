package services

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cbsr/biobank/internal/domain"
	"github.com/cbsr/biobank/internal/server/repositories/repomanager"
)

func newStudyService(t *testing.T) *StudyService {
	t.Helper()
	useSeams(t)
	return NewStudyService(repomanager.NewMemoryRepositoryManager(), nil, nil)
}

func TestStudyService_Add(t *testing.T) {
	s := newStudyService(t)
	ctx := context.Background()

	st, err := s.Add(ctx, "ALS", "amyotrophic lateral sclerosis")
	require.NoError(t, err)
	assert.Equal(t, domain.StudyDisabled, st.Status)
	assert.NotNil(t, st.AnnotationTypes)

	_, err = s.Add(ctx, "als", "")
	assertRule(t, err, "name already used: als")

	_, err = s.Add(ctx, " ", "")
	assertRule(t, err, "study name is required")
}

func TestStudyService_UpdateName(t *testing.T) {
	s := newStudyService(t)
	ctx := context.Background()

	a, err := s.Add(ctx, "A", "")
	require.NoError(t, err)
	_, err = s.Add(ctx, "B", "")
	require.NoError(t, err)

	_, err = s.UpdateName(ctx, a.ID, 0, "B")
	assertRule(t, err, "name already used: B")

	got, err := s.UpdateName(ctx, a.ID, 0, "A")
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.Version)

	_, err = s.UpdateName(ctx, a.ID, 0, "C")
	assert.True(t, domain.IsVersionConflict(err))
}

func TestStudyService_ChangeState(t *testing.T) {
	s := newStudyService(t)
	ctx := context.Background()

	st, err := s.Add(ctx, "ALS", "")
	require.NoError(t, err)

	steps := []struct {
		action  string
		want    domain.StudyStatus
		wantErr string
	}{
		{action: "disable", wantErr: "already disabled"},
		{action: "unretire", wantErr: "not retired"},
		{action: "enable", want: domain.StudyEnabled},
		{action: "enable", wantErr: "already enabled"},
		{action: "retire", want: domain.StudyRetired},
		{action: "enable", wantErr: "study is retired"},
		{action: "retire", wantErr: "already retired"},
		{action: "unretire", want: domain.StudyDisabled},
		{action: "bogus", wantErr: "invalid study state action: bogus"},
	}
	version := st.Version
	for _, step := range steps {
		got, err := s.ChangeState(ctx, st.ID, version, step.action)
		if step.wantErr != "" {
			assertRule(t, err, step.wantErr, step.action)
			continue
		}
		require.NoError(t, err, step.action)
		assert.Equal(t, step.want, got.Status, step.action)
		version = got.Version
	}
}

func TestStudyService_RetiredIsImmutable(t *testing.T) {
	s := newStudyService(t)
	ctx := context.Background()

	st, err := s.Add(ctx, "ALS", "")
	require.NoError(t, err)
	st, err = s.ChangeState(ctx, st.ID, st.Version, "retire")
	require.NoError(t, err)

	_, err = s.UpdateDescription(ctx, st.ID, st.Version, "x")
	require.Error(t, err)
	assert.Equal(t, domain.KindDomain, domain.KindOf(err))
}

func TestStudyService_AnnotationTypes(t *testing.T) {
	s := newStudyService(t)
	ctx := context.Background()

	st, err := s.Add(ctx, "ALS", "")
	require.NoError(t, err)

	at := domain.AnnotationType{Name: "Sex", ValueType: domain.ValueTypeSingleSelect, Options: []string{"M", "F"}, Required: true}
	st, err = s.AddAnnotationType(ctx, st.ID, st.Version, at)
	require.NoError(t, err)
	require.Len(t, st.AnnotationTypes, 1)
	added := st.AnnotationTypes[0]
	assert.NotEmpty(t, added.UniqueID)

	_, err = s.AddAnnotationType(ctx, st.ID, st.Version, at)
	assertRule(t, err, "annotation type name already used: Sex")

	_, err = s.AddAnnotationType(ctx, st.ID, st.Version, domain.AnnotationType{Name: "Colour", ValueType: domain.ValueTypeSingleSelect})
	assert.Error(t, err)

	added.Name = "Gender"
	st, err = s.UpdateAnnotationType(ctx, st.ID, st.Version, added)
	require.NoError(t, err)
	assert.Equal(t, "Gender", st.AnnotationTypes[0].Name)

	_, err = s.RemoveAnnotationType(ctx, st.ID, st.Version, "missing")
	assertRule(t, err, "annotation type with ID not present: missing")

	st, err = s.RemoveAnnotationType(ctx, st.ID, st.Version, added.UniqueID)
	require.NoError(t, err)
	assert.Empty(t, st.AnnotationTypes)
	assert.Equal(t, int64(3), st.Version)
}

func TestStudyService_List(t *testing.T) {
	s := newStudyService(t)
	ctx := context.Background()

	for _, name := range []string{"Heart", "ALS", "Kidney", "Alzheimer"} {
		_, err := s.Add(ctx, name, "")
		require.NoError(t, err)
	}
	heart, err := s.List(ctx, ListQuery{Filter: "heart"})
	require.NoError(t, err)
	require.Len(t, heart.Items, 1)
	_, err = s.ChangeState(ctx, heart.Items[0].ID, 0, "enable")
	require.NoError(t, err)

	names := func(r *domain.PagedResult[*domain.Study]) []string {
		out := []string{}
		for _, st := range r.Items {
			out = append(out, st.Name)
		}
		return out
	}

	tests := []struct {
		name      string
		q         ListQuery
		want      []string
		wantTotal int
	}{
		{name: "defaults sort by name", q: ListQuery{}, want: []string{"ALS", "Alzheimer", "Heart", "Kidney"}, wantTotal: 4},
		{name: "filter is a substring", q: ListQuery{Filter: "al"}, want: []string{"ALS", "Alzheimer"}, wantTotal: 2},
		{name: "status", q: ListQuery{Status: "enabled"}, want: []string{"Heart"}, wantTotal: 1},
		{name: "desc", q: ListQuery{Order: "desc"}, want: []string{"Kidney", "Heart", "Alzheimer", "ALS"}, wantTotal: 4},
		{name: "second page", q: ListQuery{Page: 2, PageSize: 3}, want: []string{"Kidney"}, wantTotal: 4},
		{name: "past the end", q: ListQuery{Page: 3, PageSize: 3}, want: []string{}, wantTotal: 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.List(ctx, tt.q)
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, names(got)); diff != "" {
				t.Errorf("names mismatch (-want +got):\n%s", diff)
			}
			assert.Equal(t, tt.wantTotal, got.Total)
		})
	}

	_, err = s.List(ctx, ListQuery{PageSize: 51})
	assertRule(t, err, "pageSize exceeds maximum of 50")
	_, err = s.List(ctx, ListQuery{Sort: "colour"})
	assertRule(t, err, "invalid sort field: colour")
	_, err = s.List(ctx, ListQuery{Order: "up"})
	assertRule(t, err, "invalid order: up")
}

func TestStudyService_NamesAndLocations(t *testing.T) {
	useSeams(t)
	repos := repomanager.NewMemoryRepositoryManager()
	studies := NewStudyService(repos, nil, nil)
	centres := NewCentreService(repos, nil, nil)
	ctx := context.Background()

	st, err := studies.Add(ctx, "ALS", "")
	require.NoError(t, err)
	_, err = studies.Add(ctx, "Heart", "")
	require.NoError(t, err)

	names, err := studies.Names(ctx, ListQuery{Filter: "als"})
	require.NoError(t, err)
	require.Len(t, names, 1)
	assert.Equal(t, domain.StudyName{ID: st.ID, Name: "ALS", Status: domain.StudyDisabled}, *names[0])

	c, err := centres.Add(ctx, "CBSR", "")
	require.NoError(t, err)
	c, err = centres.AddLocation(ctx, c.ID, c.Version, testLocation("Main"))
	require.NoError(t, err)
	_, err = centres.AddStudy(ctx, c.ID, c.Version, st.ID)
	require.NoError(t, err)

	locs, err := studies.AllLocations(ctx, st.ID)
	require.NoError(t, err)
	require.Len(t, locs, 1)
	assert.Equal(t, "CBSR: Main", locs[0].Name)
	assert.Equal(t, c.ID, locs[0].CentreID)
}
