package storage

import (
	"errors"

	"gamerig/internal/domain"
)

// resultToModels converts a domain.SessionResult to its GORM models
func resultToModels(r domain.SessionResult) (SessionModel, []SessionStepModel) {
	session := SessionModel{
		EndedAt:   r.EndedAt,
		GameID:    r.GameID,
		GameName:  r.GameName,
		ID:        r.SessionID,
		Phase:     string(r.Phase),
		StartedAt: r.StartedAt,
		Success:   r.OverallSuccess,
	}

	steps := make([]SessionStepModel, 0, len(r.Steps))
	for i, s := range r.Steps {
		errText := ""
		if s.Err != nil {
			errText = s.Err.Error()
		}
		steps = append(steps, SessionStepModel{
			Action:    string(s.Action),
			AppID:     s.AppID,
			Detail:    s.Detail,
			Error:     errText,
			Position:  i,
			SessionID: r.SessionID,
			Stage:     s.Stage,
		})
	}
	return session, steps
}

// modelsToResult converts GORM models back to a domain.SessionResult
func modelsToResult(m SessionModel, steps []SessionStepModel) domain.SessionResult {
	result := domain.SessionResult{
		EndedAt:        m.EndedAt,
		GameID:         m.GameID,
		GameName:       m.GameName,
		OverallSuccess: m.Success,
		Phase:          domain.SessionPhase(m.Phase),
		SessionID:      m.ID,
		StartedAt:      m.StartedAt,
	}

	for _, s := range steps {
		var stepErr error
		if s.Error != "" {
			stepErr = errors.New(s.Error)
		}
		result.Steps = append(result.Steps, domain.StepResult{
			Action: domain.ActionKind(s.Action),
			AppID:  s.AppID,
			Detail: s.Detail,
			Err:    stepErr,
			Stage:  s.Stage,
		})
	}
	return result
}
