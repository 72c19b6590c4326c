package poller

import (
	"context"
	"crypto/ed25519"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dwn-gateway/contracts/application"
	"dwn-gateway/contracts/manifest"
	"dwn-gateway/internal/credential"
	"dwn-gateway/internal/exchange/pipeline"
	"dwn-gateway/internal/exchange/protocol"
	"dwn-gateway/internal/exchange/providers"
	"dwn-gateway/internal/node"
	"dwn-gateway/pkg/testutil"
)

func newPoller(t *testing.T) (*Poller, *testutil.FakeNode) {
	t.Helper()

	fake := testutil.NewFakeNode()
	session := testutil.NewSession(t)
	manifests := []manifest.CredentialManifest{testutil.NewManifest("membership").Build()}

	resolver := func(context.Context, string) (ed25519.PublicKey, error) {
		return session.PublicKey(), nil
	}
	pipe := pipeline.New(fake, session, manifests, providers.NewRegistry(),
		providers.NewInvoker(providers.InvokerConfig{}), resolver, pipeline.Config{},
		pipeline.WithOverrides(pipeline.Overrides{
			Request: func(context.Context, []credential.Verified, string) (map[string]any, error) {
				return map[string]any{"membershipTier": "gold"}, nil
			},
		}),
	)
	return New(fake, pipe, time.Minute), fake
}

func seedApplication(t *testing.T, fake *testutil.FakeNode, recordID, manifestID string) {
	t.Helper()
	payload, err := json.Marshal(application.Presentation{ManifestID: manifestID})
	require.NoError(t, err)
	fake.SeedRecord(node.Record{
		ID:     recordID,
		Author: testutil.ApplicantDID,
		Schema: protocol.ApplicationSchema,
	}, payload)
}

func TestSweepProcessesEachApplicationOnce(t *testing.T) {
	p, fake := newPoller(t)
	seedApplication(t, fake, "app-1", "membership")

	p.Sweep(context.Background())
	// One response record created next to the seeded application.
	assert.Len(t, fake.StoredRecords(), 2)
	assert.Equal(t, 1, fake.Calls("ReadRecord"))

	// An answered record is skipped on later passes.
	p.Sweep(context.Background())
	assert.Len(t, fake.StoredRecords(), 2)
	assert.Equal(t, 1, fake.Calls("ReadRecord"))
}

func TestSweepRetriesFailedRecords(t *testing.T) {
	p, fake := newPoller(t)
	seedApplication(t, fake, "app-1", "no-such-manifest")

	p.Sweep(context.Background())
	p.Sweep(context.Background())

	// The record stays unanswered and is attempted on every pass.
	assert.Equal(t, 2, fake.Calls("ReadRecord"))
	assert.Len(t, fake.StoredRecords(), 1)
}

func TestSweepFailureDoesNotMaskLaterRecords(t *testing.T) {
	p, fake := newPoller(t)
	seedApplication(t, fake, "app-bad", "no-such-manifest")
	seedApplication(t, fake, "app-good", "membership")

	p.Sweep(context.Background())

	// The good application was answered despite the earlier failure.
	assert.Len(t, fake.StoredRecords(), 3)
}

func TestSweepToleratesNodeFailures(t *testing.T) {
	p, fake := newPoller(t)
	fake.QueryRecordsFn = func(context.Context, node.RecordFilter) (*node.RecordsReply, error) {
		return &node.RecordsReply{Status: node.Status{Code: 500, Detail: "node down"}}, nil
	}

	p.Sweep(context.Background())
	assert.Zero(t, fake.Calls("ReadRecord"))
}
