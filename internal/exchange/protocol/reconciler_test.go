package protocol

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"dwn-gateway/internal/agent"
	"dwn-gateway/internal/node"
	"dwn-gateway/internal/node/mocks"
)

func newTestSession(t *testing.T) *agent.Session {
	t.Helper()
	session, err := agent.NewSession("did:key:z6MkLocal", "")
	require.NoError(t, err)
	return session
}

func TestQueryPropagatesNodeFailureStatus(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mocks.NewMockClient(ctrl)
	client.EXPECT().QueryProtocols(gomock.Any(), URI).Return(&node.ProtocolsReply{
		Status: node.Status{Code: 500, Detail: "store unavailable"},
	}, nil)

	r := NewReconciler(client, newTestSession(t))
	_, err := r.Query(context.Background())

	var queryErr *node.QueryError
	require.ErrorAs(t, err, &queryErr)
	assert.Equal(t, 500, queryErr.Code)
	assert.Equal(t, "store unavailable", queryErr.Detail)
}

func TestConfigurePublishesToOwnReplica(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mocks.NewMockClient(ctrl)
	session := newTestSession(t)

	handle := node.ProtocolHandle{URI: URI}
	client.EXPECT().ConfigureProtocol(gomock.Any(), gomock.Any()).Return(&node.ConfigureReply{
		Status:   node.Status{Code: 202},
		Protocol: &handle,
	}, nil)
	client.EXPECT().PublishProtocol(gomock.Any(), handle, session.DID()).Return(node.Status{Code: 202}, nil)

	r := NewReconciler(client, session)
	def, err := r.Configure(context.Background())
	require.NoError(t, err)
	assert.Equal(t, URI, def.Protocol)
}

func TestConfigureFailureStatus(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mocks.NewMockClient(ctrl)
	client.EXPECT().ConfigureProtocol(gomock.Any(), gomock.Any()).Return(&node.ConfigureReply{
		Status: node.Status{Code: 401, Detail: "tenant not authorized"},
	}, nil)

	r := NewReconciler(client, newTestSession(t))
	_, err := r.Configure(context.Background())

	var configureErr *node.ConfigureError
	require.ErrorAs(t, err, &configureErr)
	assert.Equal(t, 401, configureErr.Code)
	assert.Equal(t, "tenant not authorized", configureErr.Detail)
}

func TestConfigureMissingHandle(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mocks.NewMockClient(ctrl)
	client.EXPECT().ConfigureProtocol(gomock.Any(), gomock.Any()).Return(&node.ConfigureReply{
		Status: node.Status{Code: 202},
	}, nil)

	r := NewReconciler(client, newTestSession(t))
	_, err := r.Configure(context.Background())
	assert.ErrorIs(t, err, node.ErrProtocolMissing)
}

func TestConfigurePublishFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mocks.NewMockClient(ctrl)
	handle := node.ProtocolHandle{URI: URI}
	client.EXPECT().ConfigureProtocol(gomock.Any(), gomock.Any()).Return(&node.ConfigureReply{
		Status:   node.Status{Code: 202},
		Protocol: &handle,
	}, nil)
	client.EXPECT().PublishProtocol(gomock.Any(), handle, gomock.Any()).Return(node.Status{Code: 503, Detail: "replica offline"}, nil)

	r := NewReconciler(client, newTestSession(t))
	_, err := r.Configure(context.Background())

	var configureErr *node.ConfigureError
	require.ErrorAs(t, err, &configureErr)
	assert.Equal(t, 503, configureErr.Code)
}

func TestReconcileConfiguresOnlyWhenAbsent(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mocks.NewMockClient(ctrl)
	session := newTestSession(t)

	// First pass: nothing installed, expect exactly one configure.
	gomock.InOrder(
		client.EXPECT().QueryProtocols(gomock.Any(), URI).Return(&node.ProtocolsReply{
			Status: node.Status{Code: 200},
		}, nil),
		client.EXPECT().ConfigureProtocol(gomock.Any(), gomock.Any()).Return(&node.ConfigureReply{
			Status:   node.Status{Code: 202},
			Protocol: &node.ProtocolHandle{URI: URI},
		}, nil),
		client.EXPECT().PublishProtocol(gomock.Any(), gomock.Any(), gomock.Any()).Return(node.Status{Code: 202}, nil),
		// Second pass: definition present, no configure.
		client.EXPECT().QueryProtocols(gomock.Any(), URI).Return(&node.ProtocolsReply{
			Status:    node.Status{Code: 200},
			Protocols: []node.ProtocolDefinition{Definition()},
		}, nil),
	)

	r := NewReconciler(client, session)

	configured, err := r.Reconcile(context.Background())
	require.NoError(t, err)
	assert.True(t, configured)

	configured, err = r.Reconcile(context.Background())
	require.NoError(t, err)
	assert.False(t, configured)
}

func TestReconcileSurfacesQueryError(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mocks.NewMockClient(ctrl)
	client.EXPECT().QueryProtocols(gomock.Any(), URI).Return(nil, errors.New("connection refused"))

	r := NewReconciler(client, newTestSession(t))
	_, err := r.Reconcile(context.Background())
	assert.ErrorContains(t, err, "connection refused")
}
