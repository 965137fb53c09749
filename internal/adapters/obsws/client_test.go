package obsws

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gamerig/internal/domain"
)

// fakeServer speaks just enough of the protocol for the client: Hello with
// a challenge, Identify verification, then a request loop over an
// in-memory scene/replay-buffer state.
type fakeServer struct {
	password string

	mu     sync.Mutex
	scene  string
	replay bool

	mute bool // swallow requests instead of answering
}

func (s *fakeServer) handler(w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	const salt = "salt123"
	const challenge = "challenge456"

	hello, _ := json.Marshal(helloData{
		ObsWebSocketVersion: "5.1.0",
		RPCVersion:          1,
		Authentication:      &helloAuth{Challenge: challenge, Salt: salt},
	})
	if err := conn.WriteJSON(envelope{Op: opHello, D: hello}); err != nil {
		return
	}

	var env envelope
	if err := conn.ReadJSON(&env); err != nil || env.Op != opIdentify {
		return
	}
	var identify identifyData
	if err := json.Unmarshal(env.D, &identify); err != nil {
		return
	}
	if identify.Authentication != authResponse(s.password, salt, challenge) {
		return // close without Identified, like the real server
	}

	identified, _ := json.Marshal(identifiedData{NegotiatedRPCVersion: 1})
	if err := conn.WriteJSON(envelope{Op: opIdentified, D: identified}); err != nil {
		return
	}

	for {
		if err := conn.ReadJSON(&env); err != nil {
			return
		}
		if env.Op != opRequest {
			continue
		}
		var req requestData
		if err := json.Unmarshal(env.D, &req); err != nil {
			return
		}
		if s.mute {
			continue
		}

		resp := s.respond(req)
		payload, _ := json.Marshal(resp)
		if err := conn.WriteJSON(envelope{Op: opRequestResponse, D: payload}); err != nil {
			return
		}
	}
}

func (s *fakeServer) respond(req requestData) responseData {
	s.mu.Lock()
	defer s.mu.Unlock()

	resp := responseData{
		RequestType:   req.RequestType,
		RequestID:     req.RequestID,
		RequestStatus: requestStatus{Result: true, Code: 100},
	}

	switch req.RequestType {
	case "GetCurrentProgramScene":
		resp.ResponseData, _ = json.Marshal(map[string]string{"currentProgramSceneName": s.scene})
	case "SetCurrentProgramScene":
		var data struct {
			SceneName string `json:"sceneName"`
		}
		raw, _ := json.Marshal(req.RequestData)
		_ = json.Unmarshal(raw, &data)
		s.scene = data.SceneName
	case "GetReplayBufferStatus":
		resp.ResponseData, _ = json.Marshal(map[string]bool{"outputActive": s.replay})
	case "StartReplayBuffer":
		s.replay = true
	case "StopReplayBuffer":
		s.replay = false
	default:
		resp.RequestStatus = requestStatus{Result: false, Code: 204, Comment: "unsupported request"}
	}
	return resp
}

func startFakeServer(t *testing.T, s *fakeServer) *Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(s.handler))
	t.Cleanup(srv.Close)

	host, portStr, ok := strings.Cut(strings.TrimPrefix(srv.URL, "http://"), ":")
	require.True(t, ok)
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)

	return NewClient(domain.IntegrationSettings{
		Kind:     domain.IntegrationWebSocket,
		Host:     host,
		Port:     port,
		Password: "hunter2",
	})
}

func TestConnect_ChallengeHandshake(t *testing.T) {
	server := &fakeServer{password: "hunter2", scene: "Desktop"}
	client := startFakeServer(t, server)
	t.Cleanup(func() { client.Close() })

	require.NoError(t, client.Connect(context.Background()))

	value, err := client.GetParameter(context.Background(), "Scene.Current")
	require.NoError(t, err)
	assert.Equal(t, domain.StringValue("Desktop"), value)
}

func TestConnect_WrongPasswordIsAuthFailure(t *testing.T) {
	server := &fakeServer{password: "different"}
	client := startFakeServer(t, server)
	t.Cleanup(func() { client.Close() })

	err := client.Connect(context.Background())
	assert.ErrorIs(t, err, domain.ErrAuthFailed)
}

func TestSetParameter_RoundTrip(t *testing.T) {
	server := &fakeServer{password: "hunter2", scene: "Desktop"}
	client := startFakeServer(t, server)
	t.Cleanup(func() { client.Close() })
	require.NoError(t, client.Connect(context.Background()))

	ctx := context.Background()
	require.NoError(t, client.SetParameter(ctx, "Scene.Current", domain.StringValue("Game")))
	require.NoError(t, client.SetParameter(ctx, "ReplayBuffer.Active", domain.BoolValue(true)))

	scene, err := client.GetParameter(ctx, "Scene.Current")
	require.NoError(t, err)
	assert.Equal(t, domain.StringValue("Game"), scene)

	replay, err := client.GetParameter(ctx, "ReplayBuffer.Active")
	require.NoError(t, err)
	assert.Equal(t, domain.BoolValue(true), replay)
}

func TestGetParameter_UnknownNameDoesNotHitTheWire(t *testing.T) {
	client := NewClient(domain.IntegrationSettings{Host: "127.0.0.1", Port: 1})

	_, err := client.GetParameter(context.Background(), "Bogus.Name")
	assert.ErrorIs(t, err, domain.ErrInvalidParameter)
}

func TestCall_RemoteFailureSurfaces(t *testing.T) {
	server := &fakeServer{password: "hunter2"}
	client := startFakeServer(t, server)
	t.Cleanup(func() { client.Close() })
	require.NoError(t, client.Connect(context.Background()))

	err := client.SetParameter(context.Background(), "Profile.Current", domain.StringValue("Gaming"))
	assert.ErrorIs(t, err, domain.ErrRemote)
}

func TestCall_TimesOutWhenServerStallsForever(t *testing.T) {
	server := &fakeServer{password: "hunter2", mute: true}
	client := startFakeServer(t, server)
	t.Cleanup(func() { client.Close() })
	client.callTimeout = 50 * time.Millisecond

	require.NoError(t, client.Connect(context.Background()))

	_, err := client.GetParameter(context.Background(), "Scene.Current")
	assert.ErrorIs(t, err, domain.ErrTimeout)
}

func TestApplyProfile_CollectsEveryFailure(t *testing.T) {
	server := &fakeServer{password: "hunter2", scene: "Desktop"}
	client := startFakeServer(t, server)
	t.Cleanup(func() { client.Close() })
	require.NoError(t, client.Connect(context.Background()))

	failures := client.ApplyProfile(context.Background(), []domain.Assignment{
		{Name: "Scene.Current", Value: domain.StringValue("Game")},
		{Name: "Profile.Current", Value: domain.StringValue("Gaming")},
		{Name: "Bogus.Name", Value: domain.BoolValue(true)},
	})

	require.Len(t, failures, 2)
	assert.Equal(t, "Profile.Current", failures[0].Name)
	assert.Equal(t, "Bogus.Name", failures[1].Name)
	assert.ErrorIs(t, failures[1].Err, domain.ErrInvalidParameter)
}

func TestClose_Idempotent(t *testing.T) {
	server := &fakeServer{password: "hunter2"}
	client := startFakeServer(t, server)

	assert.NoError(t, client.Close()) // before Connect

	require.NoError(t, client.Connect(context.Background()))
	assert.NoError(t, client.Close())
	assert.NoError(t, client.Close())
}

func TestCall_NotConnected(t *testing.T) {
	client := NewClient(domain.IntegrationSettings{Host: "127.0.0.1", Port: 1})

	err := client.SetParameter(context.Background(), "Scene.Current", domain.StringValue("Game"))
	assert.ErrorIs(t, err, domain.ErrNotConnected)
}
