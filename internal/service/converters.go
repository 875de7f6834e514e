package service

import (
	"github.com/google/uuid"

	"site-tracker-api/internal/domain"
	"site-tracker-api/internal/dto"
	"site-tracker-api/internal/workflow"
)

func toSiteResponse(s *domain.Site) dto.SiteResponse {
	return dto.SiteResponse{
		ID:          s.ID,
		Name:        s.Name,
		Address:     s.Address,
		ClientName:  s.ClientName,
		ClientPhone: s.ClientPhone,
		ClientEmail: s.ClientEmail,
		Budget:      s.Budget,
		StartDate:   s.StartDate,
		EndDate:     s.EndDate,
		Status:      string(s.Status),
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}

func toPhaseResponse(p *domain.Phase, taskStatuses []domain.WorkStatus, mode workflow.ProgressMode) dto.PhaseResponse {
	derived := workflow.DerivePhaseProgress(taskStatuses)
	return dto.PhaseResponse{
		ID:                 p.ID,
		SiteID:             p.SiteID,
		Name:               p.Name,
		OrderNumber:        p.OrderNumber,
		AssignedTo:         p.AssignedTo,
		Status:             string(p.Status),
		ExplicitProgress:   p.Progress,
		DerivedProgress:    derived.DerivedProgress,
		CompletedTaskCount: derived.CompletedCount,
		TotalTaskCount:     derived.TotalCount,
		ProgressMode:       string(mode),
		StatusBadge:        string(workflow.BadgeStatus(mode, p.Status, taskStatuses)),
		StartDate:          p.StartDate,
		DueDate:            p.DueDate,
		Budget:             p.Budget,
		ApprovedBy:         p.ApprovedBy,
		ApprovedAt:         p.ApprovedAt,
		CreatedAt:          p.CreatedAt,
		UpdatedAt:          p.UpdatedAt,
	}
}

func toTaskResponse(t *domain.Task) dto.TaskResponse {
	assignees := make([]uuid.UUID, 0, len(t.Assignments))
	for _, a := range t.Assignments {
		assignees = append(assignees, a.EmployeeID)
	}
	return dto.TaskResponse{
		ID:          t.ID,
		SiteID:      t.SiteID,
		PhaseID:     t.PhaseID,
		Name:        t.Name,
		Status:      string(t.Status),
		Progress:    t.Progress,
		Amount:      t.Amount,
		StartDate:   t.StartDate,
		DueDate:     t.DueDate,
		CompletedBy: t.CompletedBy,
		CompletedAt: t.CompletedAt,
		AssigneeIDs: assignees,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func toEmployeeResponse(e *domain.Employee) dto.EmployeeResponse {
	return dto.EmployeeResponse{
		ID:              e.ID,
		Name:            e.Name,
		Phone:           e.Phone,
		Email:           e.Email,
		Role:            string(e.Role),
		Status:          string(e.Status),
		ProfileImageURL: e.ProfileImageURL,
		CreatedAt:       e.CreatedAt,
		UpdatedAt:       e.UpdatedAt,
	}
}

func toProgressUpdateResponse(u *domain.ProgressUpdate) dto.ProgressUpdateResponse {
	return dto.ProgressUpdateResponse{
		ID:               u.ID,
		Seq:              u.Seq,
		ScopeType:        string(u.ScopeType),
		ScopeID:          u.ScopeID,
		PreviousProgress: u.PreviousProgress,
		NewProgress:      u.NewProgress,
		Note:             u.Note,
		ImageURL:         u.ImageURL,
		AudioURL:         u.AudioURL,
		AuthorID:         u.AuthorID,
		CreatedAt:        u.CreatedAt,
	}
}

func toTodoResponse(t *domain.Todo) dto.TodoResponse {
	return dto.TodoResponse{
		ID:        t.ID,
		ScopeType: string(t.ScopeType),
		ScopeID:   t.ScopeID,
		Content:   t.Content,
		Completed: t.Completed,
		AuthorID:  t.AuthorID,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}

func toMessageResponse(m *domain.Message) dto.MessageResponse {
	return dto.MessageResponse{
		ID:        m.ID,
		ScopeType: string(m.ScopeType),
		ScopeID:   m.ScopeID,
		SenderID:  m.SenderID,
		Type:      string(m.Type),
		Content:   m.Content,
		MediaURL:  m.MediaURL,
		CreatedAt: m.CreatedAt,
	}
}

func toNotificationResponse(n *domain.Notification) dto.NotificationResponse {
	return dto.NotificationResponse{
		ID:        n.ID,
		SiteID:    n.SiteID,
		PhaseID:   n.PhaseID,
		TaskID:    n.TaskID,
		Type:      string(n.Type),
		Message:   n.Message,
		IsRead:    n.IsRead,
		ReadAt:    n.ReadAt,
		CreatedAt: n.CreatedAt,
	}
}
