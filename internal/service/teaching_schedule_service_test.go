package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raka-dev/sekolah-hr-api/internal/dto"
	"github.com/raka-dev/sekolah-hr-api/internal/models"
	appErrors "github.com/raka-dev/sekolah-hr-api/pkg/errors"
)

const testSubjectID = "6f1e1d2c-0a52-4b01-9f5f-3f9c2d7a2001"

type teachingStoreStub struct {
	schedules    map[string]*models.TeachingSchedule
	byTeacherDay []models.TeachingSchedule
	active       []models.TeachingSchedule
	created      []*models.TeachingSchedule
	substituted  []*models.TeachingSchedule
}

func (s *teachingStoreStub) Create(ctx context.Context, schedule *models.TeachingSchedule) error {
	schedule.ID = "ts-new"
	schedule.IsActive = true
	schedule.Status = models.TeachingStatusScheduled
	s.created = append(s.created, schedule)
	return nil
}

func (s *teachingStoreStub) FindByID(ctx context.Context, id string) (*models.TeachingSchedule, error) {
	if schedule, ok := s.schedules[id]; ok {
		return schedule, nil
	}
	return nil, sql.ErrNoRows
}

func (s *teachingStoreStub) List(ctx context.Context, filter models.TeachingScheduleFilter, limit, offset int) ([]models.TeachingSchedule, int, error) {
	return s.active, len(s.active), nil
}

func (s *teachingStoreStub) ListActiveByTeacher(ctx context.Context, teacherID string) ([]models.TeachingSchedule, error) {
	return s.active, nil
}

func (s *teachingStoreStub) ListByTeacherDay(ctx context.Context, teacherID string, day models.DayOfWeek) ([]models.TeachingSchedule, error) {
	return s.byTeacherDay, nil
}

func (s *teachingStoreStub) Update(ctx context.Context, schedule *models.TeachingSchedule) error {
	return nil
}

func (s *teachingStoreStub) SetSubstitution(ctx context.Context, schedule *models.TeachingSchedule) error {
	s.substituted = append(s.substituted, schedule)
	return nil
}

func (s *teachingStoreStub) Deactivate(ctx context.Context, id string) error {
	return nil
}

type teachingRowStoreStub struct {
	rows []models.EmployeeMonthlySchedule
}

func (s *teachingRowStoreStub) ListByEmployeeRange(ctx context.Context, employeeID string, from, to time.Time) ([]models.EmployeeMonthlySchedule, error) {
	return s.rows, nil
}

type overrideApplierStub struct {
	applied int
	result  bool
}

func (s *overrideApplierStub) ApplyTeachingOverride(ctx context.Context, row *models.EmployeeMonthlySchedule, teaching models.TeachingSchedule, employee models.Employee, actor Actor) (bool, error) {
	s.applied++
	return s.result, nil
}

func mathBlock(id, teacherID string) *models.TeachingSchedule {
	return &models.TeachingSchedule{
		ID:                 id,
		TeacherID:          teacherID,
		SubjectID:          testSubjectID,
		DayOfWeek:          models.Thursday,
		TeachingStartTime:  "10:00",
		TeachingEndTime:    "12:00",
		EffectiveFrom:      time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC),
		ClassName:          "7A",
		IsActive:           true,
		Status:             models.TeachingStatusScheduled,
		OverrideAttendance: true,
	}
}

func honoraryEmployee(id string) *models.Employee {
	return &models.Employee{
		ID:           id,
		EmployeeCode: "GH-001",
		FullName:     "Siti Rahma",
		EmployeeType: models.EmployeeTypeHonoraryTeacher,
		LocationID:   "loc-1",
		IsActive:     true,
	}
}

func newTeachingService(store *teachingStoreStub, rows *teachingRowStoreStub, directory directoryStub, applier *overrideApplierStub) *TeachingScheduleService {
	return NewTeachingScheduleService(
		store, rows, directory, applier,
		catalogReaderStub{subject: &models.Subject{ID: testSubjectID, Name: "Matematika"}},
		nil, 0, nil, nil)
}

func TestTeachingCreateRequiresTeachingCapability(t *testing.T) {
	directory := directoryStub{
		employees: map[string]*models.Employee{testEmployeeID: honoraryEmployee(testEmployeeID)},
		caps:      map[string]models.EmployeeCapabilities{testEmployeeID: {CanTeach: false}},
	}
	service := newTeachingService(&teachingStoreStub{}, &teachingRowStoreStub{}, directory, &overrideApplierStub{})

	_, err := service.Create(context.Background(), dto.CreateTeachingScheduleRequest{
		TeacherID:         testEmployeeID,
		SubjectID:         testSubjectID,
		DayOfWeek:         "thursday",
		TeachingStartTime: "10:00",
		TeachingEndTime:   "12:00",
		EffectiveFrom:     time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC),
	}, Actor{UserID: "admin"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErrors.FromError(err).Code)
}

func TestTeachingCreateDefaultsOverrideFlags(t *testing.T) {
	store := &teachingStoreStub{}
	directory := directoryStub{
		employees: map[string]*models.Employee{testEmployeeID: honoraryEmployee(testEmployeeID)},
		caps:      map[string]models.EmployeeCapabilities{testEmployeeID: {CanTeach: true}},
	}
	service := newTeachingService(store, &teachingRowStoreStub{}, directory, &overrideApplierStub{})

	schedule, err := service.Create(context.Background(), dto.CreateTeachingScheduleRequest{
		TeacherID:         testEmployeeID,
		SubjectID:         testSubjectID,
		DayOfWeek:         "thursday",
		TeachingStartTime: "10:00",
		TeachingEndTime:   "12:00",
		EffectiveFrom:     time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC),
	}, Actor{UserID: "admin"})
	require.NoError(t, err)
	assert.True(t, schedule.OverrideAttendance)
	assert.True(t, schedule.StrictTiming)
	require.Len(t, store.created, 1)
}

func TestTeachingCreateRejectsInvertedClockRange(t *testing.T) {
	directory := directoryStub{
		employees: map[string]*models.Employee{testEmployeeID: honoraryEmployee(testEmployeeID)},
		caps:      map[string]models.EmployeeCapabilities{testEmployeeID: {CanTeach: true}},
	}
	service := newTeachingService(&teachingStoreStub{}, &teachingRowStoreStub{}, directory, &overrideApplierStub{})

	_, err := service.Create(context.Background(), dto.CreateTeachingScheduleRequest{
		TeacherID:         testEmployeeID,
		SubjectID:         testSubjectID,
		DayOfWeek:         "thursday",
		TeachingStartTime: "12:00",
		TeachingEndTime:   "10:00",
		EffectiveFrom:     time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC),
	}, Actor{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestTeachingApplyHonoraryTeachersOnly(t *testing.T) {
	regular := honoraryEmployee(testEmployeeID)
	regular.EmployeeType = models.EmployeeTypePermanent
	store := &teachingStoreStub{schedules: map[string]*models.TeachingSchedule{"ts-1": mathBlock("ts-1", testEmployeeID)}}
	directory := directoryStub{employees: map[string]*models.Employee{testEmployeeID: regular}}
	service := newTeachingService(store, &teachingRowStoreStub{}, directory, &overrideApplierStub{})

	_, err := service.ApplyToEmployeeSchedules(context.Background(), "ts-1", Actor{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErrors.FromError(err).Code)
}

func TestTeachingApplyCountsChangedRows(t *testing.T) {
	store := &teachingStoreStub{schedules: map[string]*models.TeachingSchedule{"ts-1": mathBlock("ts-1", testEmployeeID)}}
	rows := &teachingRowStoreStub{rows: []models.EmployeeMonthlySchedule{
		{ID: "row-1", EmployeeID: testEmployeeID},
		{ID: "row-2", EmployeeID: testEmployeeID},
		{ID: "row-3", EmployeeID: testEmployeeID},
	}}
	directory := directoryStub{employees: map[string]*models.Employee{testEmployeeID: honoraryEmployee(testEmployeeID)}}
	applier := &overrideApplierStub{result: true}
	service := newTeachingService(store, rows, directory, applier)

	applied, err := service.ApplyToEmployeeSchedules(context.Background(), "ts-1", Actor{UserID: "admin"})
	require.NoError(t, err)
	assert.Equal(t, 3, applied)
	assert.Equal(t, 3, applier.applied)
}

func TestAssignSubstituteRejectsSelf(t *testing.T) {
	store := &teachingStoreStub{schedules: map[string]*models.TeachingSchedule{"ts-1": mathBlock("ts-1", testEmployeeID)}}
	service := newTeachingService(store, &teachingRowStoreStub{}, directoryStub{}, &overrideApplierStub{})

	_, err := service.AssignSubstitute(context.Background(), "ts-1", dto.AssignSubstituteRequest{
		SubstituteID: testEmployeeID,
		StartDate:    time.Date(2025, 7, 14, 0, 0, 0, 0, time.UTC),
		EndDate:      time.Date(2025, 7, 18, 0, 0, 0, 0, time.UTC),
		Reason:       "umrah leave",
	}, Actor{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestAssignSubstituteRequiresCapability(t *testing.T) {
	store := &teachingStoreStub{schedules: map[string]*models.TeachingSchedule{"ts-1": mathBlock("ts-1", testEmployeeID)}}
	directory := directoryStub{
		employees: map[string]*models.Employee{testEmployeeID2: honoraryEmployee(testEmployeeID2)},
		caps:      map[string]models.EmployeeCapabilities{testEmployeeID2: {CanTeach: true, CanSubstitute: false}},
	}
	service := newTeachingService(store, &teachingRowStoreStub{}, directory, &overrideApplierStub{})

	_, err := service.AssignSubstitute(context.Background(), "ts-1", dto.AssignSubstituteRequest{
		SubstituteID: testEmployeeID2,
		StartDate:    time.Date(2025, 7, 14, 0, 0, 0, 0, time.UTC),
		EndDate:      time.Date(2025, 7, 18, 0, 0, 0, 0, time.UTC),
		Reason:       "umrah leave",
	}, Actor{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErrors.FromError(err).Code)
}

func TestAssignSubstituteRejectsOverlappingBlock(t *testing.T) {
	store := &teachingStoreStub{
		schedules: map[string]*models.TeachingSchedule{"ts-1": mathBlock("ts-1", testEmployeeID)},
		byTeacherDay: []models.TeachingSchedule{
			{ID: "ts-busy", TeacherID: testEmployeeID2, DayOfWeek: models.Thursday, TeachingStartTime: "11:00", TeachingEndTime: "13:00"},
		},
	}
	directory := directoryStub{
		employees: map[string]*models.Employee{testEmployeeID2: honoraryEmployee(testEmployeeID2)},
		caps:      map[string]models.EmployeeCapabilities{testEmployeeID2: {CanTeach: true, CanSubstitute: true}},
	}
	service := newTeachingService(store, &teachingRowStoreStub{}, directory, &overrideApplierStub{})

	_, err := service.AssignSubstitute(context.Background(), "ts-1", dto.AssignSubstituteRequest{
		SubstituteID: testEmployeeID2,
		StartDate:    time.Date(2025, 7, 14, 0, 0, 0, 0, time.UTC),
		EndDate:      time.Date(2025, 7, 18, 0, 0, 0, 0, time.UTC),
		Reason:       "umrah leave",
	}, Actor{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestAssignSubstituteSetsWindow(t *testing.T) {
	store := &teachingStoreStub{
		schedules: map[string]*models.TeachingSchedule{"ts-1": mathBlock("ts-1", testEmployeeID)},
		byTeacherDay: []models.TeachingSchedule{
			{ID: "ts-free", TeacherID: testEmployeeID2, DayOfWeek: models.Thursday, TeachingStartTime: "07:00", TeachingEndTime: "09:00"},
		},
	}
	directory := directoryStub{
		employees: map[string]*models.Employee{testEmployeeID2: honoraryEmployee(testEmployeeID2)},
		caps:      map[string]models.EmployeeCapabilities{testEmployeeID2: {CanTeach: true, CanSubstitute: true}},
	}
	service := newTeachingService(store, &teachingRowStoreStub{}, directory, &overrideApplierStub{})

	schedule, err := service.AssignSubstitute(context.Background(), "ts-1", dto.AssignSubstituteRequest{
		SubstituteID: testEmployeeID2,
		StartDate:    time.Date(2025, 7, 14, 0, 0, 0, 0, time.UTC),
		EndDate:      time.Date(2025, 7, 18, 0, 0, 0, 0, time.UTC),
		Reason:       "umrah leave",
	}, Actor{UserID: "admin"})
	require.NoError(t, err)
	require.NotNil(t, schedule.SubstituteTeacherID)
	assert.Equal(t, testEmployeeID2, *schedule.SubstituteTeacherID)
	assert.Equal(t, models.TeachingStatusSubstituted, schedule.Status)
	assert.True(t, schedule.HasSubstituteOn(time.Date(2025, 7, 17, 0, 0, 0, 0, time.UTC)))
	assert.False(t, schedule.HasSubstituteOn(time.Date(2025, 7, 21, 0, 0, 0, 0, time.UTC)))
	require.Len(t, store.substituted, 1)
}

func TestRemoveSubstituteRestoresScheduledStatus(t *testing.T) {
	block := mathBlock("ts-1", testEmployeeID)
	substitute := testEmployeeID2
	start := time.Date(2025, 7, 14, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 7, 18, 0, 0, 0, 0, time.UTC)
	block.SubstituteTeacherID = &substitute
	block.SubstitutionStartDate = &start
	block.SubstitutionEndDate = &end
	block.Status = models.TeachingStatusSubstituted
	store := &teachingStoreStub{schedules: map[string]*models.TeachingSchedule{"ts-1": block}}
	service := newTeachingService(store, &teachingRowStoreStub{}, directoryStub{}, &overrideApplierStub{})

	schedule, err := service.RemoveSubstitute(context.Background(), "ts-1", Actor{UserID: "admin"})
	require.NoError(t, err)
	assert.Nil(t, schedule.SubstituteTeacherID)
	assert.Nil(t, schedule.SubstitutionStartDate)
	assert.Equal(t, models.TeachingStatusScheduled, schedule.Status)
}

func TestWorkloadSumsActiveBlocks(t *testing.T) {
	first := *mathBlock("ts-1", testEmployeeID)
	second := *mathBlock("ts-2", testEmployeeID)
	second.TeachingStartTime = "13:00"
	second.TeachingEndTime = "15:30"
	second.ClassName = "8B"
	store := &teachingStoreStub{active: []models.TeachingSchedule{first, second}}
	service := newTeachingService(store, &teachingRowStoreStub{}, directoryStub{}, &overrideApplierStub{})

	workload, err := service.Workload(context.Background(), testEmployeeID)
	require.NoError(t, err)
	assert.InDelta(t, 4.5, workload.TotalHoursPerWeek, 0.001)
	assert.Equal(t, 2, workload.TotalClasses)
	assert.False(t, workload.IsOverloaded)
	require.Len(t, workload.SubjectBreakdown, 1)
	assert.Equal(t, "Matematika", workload.SubjectBreakdown[0].SubjectName)
	assert.ElementsMatch(t, []string{"7A", "8B"}, workload.SubjectBreakdown[0].Classes)
}

func TestWorkloadFlagsOverload(t *testing.T) {
	blocks := make([]models.TeachingSchedule, 0, 21)
	for i := 0; i < 21; i++ {
		block := *mathBlock("ts-load", testEmployeeID)
		block.TeachingStartTime = "08:00"
		block.TeachingEndTime = "10:00"
		blocks = append(blocks, block)
	}
	store := &teachingStoreStub{active: blocks}
	service := newTeachingService(store, &teachingRowStoreStub{}, directoryStub{}, &overrideApplierStub{})

	workload, err := service.Workload(context.Background(), testEmployeeID)
	require.NoError(t, err)
	assert.InDelta(t, 42.0, workload.TotalHoursPerWeek, 0.001)
	assert.True(t, workload.IsOverloaded)
	assert.InDelta(t, 105.0, workload.WorkloadPercentage, 0.001)
}

func TestWorkloadExcludesOtherTeachersBlocks(t *testing.T) {
	mine := *mathBlock("ts-1", testEmployeeID)
	theirs := *mathBlock("ts-2", testEmployeeID2)
	store := &teachingStoreStub{active: []models.TeachingSchedule{mine, theirs}}
	service := newTeachingService(store, &teachingRowStoreStub{}, directoryStub{}, &overrideApplierStub{})

	workload, err := service.Workload(context.Background(), testEmployeeID)
	require.NoError(t, err)
	assert.Equal(t, 1, workload.TotalClasses)
	assert.InDelta(t, 2.0, workload.TotalHoursPerWeek, 0.001)
}
