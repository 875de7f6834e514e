package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"site-tracker-api/internal/domain"
	"site-tracker-api/internal/dto"
	"site-tracker-api/internal/repository"
	"site-tracker-api/internal/response"
	"site-tracker-api/internal/workflow"
)

func TestSiteService_CreateSiteSeedsPhases(t *testing.T) {
	ctx := context.Background()
	repos := repository.NewRepositories(setupTestDB(t))
	require.NoError(t, NewPhaseTemplateService(repos.PhaseTemplates, nil).SeedDefaults(ctx))
	// seeding twice keeps a single copy
	require.NoError(t, NewPhaseTemplateService(repos.PhaseTemplates, nil).SeedDefaults(ctx))

	svc := NewSiteService(repos, nil, nil)
	created, err := svc.CreateSite(ctx, &dto.CreateSiteRequest{Name: "  Hillside Villa ", SeedPhases: true})
	require.NoError(t, err)
	assert.Equal(t, "Hillside Villa", created.Name)
	assert.Equal(t, "planned", created.Status)
	require.Len(t, created.Phases, len(domain.DefaultPhaseTemplates))
	assert.Equal(t, "Site Preparation", created.Phases[0].Name)
	for _, p := range created.Phases {
		assert.Equal(t, "not_started", p.Status)
		assert.Zero(t, p.ExplicitProgress)
	}

	got, err := svc.GetSite(ctx, created.ID, workflow.ProgressModeExplicit)
	require.NoError(t, err)
	require.Len(t, got.Phases, len(domain.DefaultPhaseTemplates))
	for i := 1; i < len(got.Phases); i++ {
		assert.Less(t, got.Phases[i-1].OrderNumber, got.Phases[i].OrderNumber)
	}

	bare, err := svc.CreateSite(ctx, &dto.CreateSiteRequest{Name: "Empty Lot"})
	require.NoError(t, err)
	assert.Empty(t, bare.Phases)
}

func TestSiteService_Validation(t *testing.T) {
	ctx := context.Background()
	svc := NewSiteService(repository.NewRepositories(setupTestDB(t)), nil, nil)

	start := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, -1, 0)

	_, err := svc.CreateSite(ctx, &dto.CreateSiteRequest{Name: "Backwards", StartDate: &start, EndDate: &end})
	assert.True(t, response.HasCode(err, response.ErrCodeValidation))

	_, err = svc.CreateSite(ctx, &dto.CreateSiteRequest{Name: "Odd", Status: "demolished"})
	assert.True(t, response.HasCode(err, response.ErrCodeValidation))

	created, err := svc.CreateSite(ctx, &dto.CreateSiteRequest{Name: "Pier 4", Status: "On Hold", StartDate: &start})
	require.NoError(t, err)
	assert.Equal(t, "on_hold", created.Status)

	// only the end date is sent; the stored start date still counts
	_, err = svc.UpdateSite(ctx, created.ID, &dto.UpdateSiteRequest{EndDate: &end})
	assert.True(t, response.HasCode(err, response.ErrCodeValidation))

	_, err = svc.GetSite(ctx, uuid.New(), workflow.ProgressModeExplicit)
	assert.True(t, response.HasCode(err, response.ErrCodeNotFound))
}

func TestSiteService_UpdateListDelete(t *testing.T) {
	s := newSite(t)
	ctx := context.Background()
	svc := NewSiteService(s.repos, nil, nil)

	name := "Harbor Road Duplex (phase 2)"
	status := "completed"
	updated, err := svc.UpdateSite(ctx, s.site.ID, &dto.UpdateSiteRequest{Name: &name, Status: &status})
	require.NoError(t, err)
	assert.Equal(t, name, updated.Name)
	assert.Equal(t, "completed", updated.Status)

	completed, err := svc.ListSites(ctx, "completed")
	require.NoError(t, err)
	assert.Len(t, completed, 1)

	active, err := svc.ListSites(ctx, "active")
	require.NoError(t, err)
	assert.Empty(t, active)

	require.NoError(t, svc.DeleteSite(ctx, s.site.ID))
	_, err = s.repos.Tasks.FindByID(ctx, s.task.ID)
	assert.Error(t, err, "tasks go with their site")

	err = svc.DeleteSite(ctx, s.site.ID)
	assert.True(t, response.HasCode(err, response.ErrCodeNotFound))
}

func TestSiteService_GetSiteDerivedMode(t *testing.T) {
	s := newSite(t)
	ctx := context.Background()

	second := &domain.Task{SiteID: s.site.ID, PhaseID: s.phase.ID, Name: "Backfill", Status: domain.StatusCompleted, Progress: 100}
	require.NoError(t, s.repos.Tasks.Create(ctx, second))

	got, err := NewSiteService(s.repos, nil, nil).GetSite(ctx, s.site.ID, workflow.ProgressModeDerived)
	require.NoError(t, err)
	require.Len(t, got.Phases, 1)

	p := got.Phases[0]
	assert.Equal(t, 50, p.DerivedProgress)
	assert.Equal(t, 1, p.CompletedTaskCount)
	assert.Equal(t, 2, p.TotalTaskCount)
	assert.Equal(t, "derived", p.ProgressMode)
	assert.Equal(t, "in_progress", p.StatusBadge)
	assert.Equal(t, "not_started", p.Status, "the stored phase status is untouched")
}
