package obsws

import (
	"context"
	"encoding/json"
	"fmt"

	"gamerig/internal/domain"
)

// The client exposes the handful of runtime states a session toggles as a
// flat parameter namespace, so save/restore works the same way here as it
// does for the mixer binding.
//
//	Scene.Current        string  current program scene
//	Profile.Current      string  current profile
//	ReplayBuffer.Active  bool    replay buffer running
//	Record.Active        bool    recording
//	Stream.Active        bool    streaming

// GetParameter reads one named parameter's current value
func (c *Client) GetParameter(ctx context.Context, name string) (domain.ParamValue, error) {
	switch name {
	case "Scene.Current":
		return c.getString(ctx, "GetCurrentProgramScene", "currentProgramSceneName")
	case "Profile.Current":
		return c.getString(ctx, "GetProfileList", "currentProfileName")
	case "ReplayBuffer.Active":
		return c.getActive(ctx, "GetReplayBufferStatus")
	case "Record.Active":
		return c.getActive(ctx, "GetRecordStatus")
	case "Stream.Active":
		return c.getActive(ctx, "GetStreamStatus")
	default:
		return domain.ParamValue{}, fmt.Errorf("%s: %w", name, domain.ErrInvalidParameter)
	}
}

// SetParameter writes one named parameter
func (c *Client) SetParameter(ctx context.Context, name string, value domain.ParamValue) error {
	switch name {
	case "Scene.Current":
		if value.Kind != domain.ParamString {
			return fmt.Errorf("%s wants a scene name: %w", name, domain.ErrInvalidParameter)
		}
		_, err := c.Call(ctx, "SetCurrentProgramScene", map[string]any{"sceneName": value.Str})
		return err
	case "Profile.Current":
		if value.Kind != domain.ParamString {
			return fmt.Errorf("%s wants a profile name: %w", name, domain.ErrInvalidParameter)
		}
		_, err := c.Call(ctx, "SetCurrentProfile", map[string]any{"profileName": value.Str})
		return err
	case "ReplayBuffer.Active":
		return c.setActive(ctx, value, "StartReplayBuffer", "StopReplayBuffer")
	case "Record.Active":
		return c.setActive(ctx, value, "StartRecord", "StopRecord")
	case "Stream.Active":
		return c.setActive(ctx, value, "StartStream", "StopStream")
	default:
		return fmt.Errorf("%s: %w", name, domain.ErrInvalidParameter)
	}
}

// ApplyProfile applies assignments best-effort and returns every failure
func (c *Client) ApplyProfile(ctx context.Context, assignments []domain.Assignment) []domain.AssignmentError {
	var failures []domain.AssignmentError
	for _, a := range assignments {
		if err := c.SetParameter(ctx, a.Name, a.Value); err != nil {
			failures = append(failures, domain.AssignmentError{Name: a.Name, Err: err})
		}
	}
	return failures
}

func (c *Client) getString(ctx context.Context, requestType, field string) (domain.ParamValue, error) {
	data, err := c.Call(ctx, requestType, nil)
	if err != nil {
		return domain.ParamValue{}, err
	}

	var out map[string]json.RawMessage
	if err := json.Unmarshal(data, &out); err != nil {
		return domain.ParamValue{}, fmt.Errorf("%s: %v: %w", requestType, err, domain.ErrProtocol)
	}

	var value string
	if raw, ok := out[field]; ok {
		if err := json.Unmarshal(raw, &value); err != nil {
			return domain.ParamValue{}, fmt.Errorf("%s.%s: %v: %w", requestType, field, err, domain.ErrProtocol)
		}
	}
	return domain.StringValue(value), nil
}

func (c *Client) getActive(ctx context.Context, requestType string) (domain.ParamValue, error) {
	data, err := c.Call(ctx, requestType, nil)
	if err != nil {
		return domain.ParamValue{}, err
	}

	var out struct {
		OutputActive bool `json:"outputActive"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return domain.ParamValue{}, fmt.Errorf("%s: %v: %w", requestType, err, domain.ErrProtocol)
	}
	return domain.BoolValue(out.OutputActive), nil
}

func (c *Client) setActive(ctx context.Context, value domain.ParamValue, start, stop string) error {
	if value.Kind != domain.ParamBool {
		return fmt.Errorf("%s/%s wants a boolean: %w", start, stop, domain.ErrInvalidParameter)
	}

	requestType := stop
	if value.Bool {
		requestType = start
	}
	_, err := c.Call(ctx, requestType, nil)
	return err
}
